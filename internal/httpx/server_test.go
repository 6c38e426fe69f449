package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoord(t *testing.T) {
	q := url.Values{"lat": {"0"}, "lng": {"-73.9857"}, "bad": {"north"}}

	// zero is a real coordinate, not a missing one
	lat, err := parseCoord(q, "lat")
	require.NoError(t, err)
	assert.Equal(t, 0.0, lat)

	lng, err := parseCoord(q, "lng")
	require.NoError(t, err)
	assert.Equal(t, -73.9857, lng)

	_, err = parseCoord(q, "absent")
	assert.Error(t, err)

	_, err = parseCoord(q, "bad")
	assert.Error(t, err)
}

func TestParsePageDefaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/parts?page=3&limit=500", nil)
	p := parsePage(req)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 20, p.Limit)

	req = httptest.NewRequest(http.MethodGet, "/parts", nil)
	p = parsePage(req)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.Limit)
}
