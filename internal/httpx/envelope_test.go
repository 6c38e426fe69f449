package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decoder-44/vehicle-service-super-app/internal/pagination"
)

func TestWriteDataShape(t *testing.T) {
	rec := httptest.NewRecorder()
	writeData(rec, http.StatusCreated, "created", map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, http.StatusCreated, body.StatusCode)
	assert.Equal(t, "created", body.Message)
}

func TestWriteErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "missing")

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, http.StatusNotFound, body.StatusCode)
	assert.Equal(t, "missing", body.Message)
	assert.Nil(t, body.Data)
}

func TestWriteListIncludesPagination(t *testing.T) {
	rec := httptest.NewRecorder()
	writeList(rec, "items", []int{1, 2}, pagination.Meta{Page: 1, Limit: 20, Total: 2, TotalPages: 1})

	var body envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	data := body.Data.(map[string]any)
	assert.Contains(t, data, "items")
	assert.Contains(t, data, "pagination")
}

func TestDecodeJSONValidates(t *testing.T) {
	type dto struct {
		Name string `json:"name" validate:"required"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	rec := httptest.NewRecorder()
	var v dto
	err := decodeJSON(rec, req, &v)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{not json`))
	rec = httptest.NewRecorder()
	err = decodeJSON(rec, req, &v)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok"}`))
	rec = httptest.NewRecorder()
	require.NoError(t, decodeJSON(rec, req, &v))
	assert.Equal(t, "ok", v.Name)
}
