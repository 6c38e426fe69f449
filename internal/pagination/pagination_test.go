package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsLimit(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 20}, Normalize(Page{}))
	assert.Equal(t, Page{Page: 1, Limit: 20}, Normalize(Page{Page: -3, Limit: 500}))
	assert.Equal(t, Page{Page: 2, Limit: 100}, Normalize(Page{Page: 2, Limit: 100}))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 1, Limit: 20}.Offset())
	assert.Equal(t, 40, Page{Page: 3, Limit: 20}.Offset())
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(Page{Page: 2, Limit: 20}, 41)
	assert.Equal(t, 3, m.TotalPages)
	assert.Equal(t, 41, m.Total)

	m = NewMeta(Page{Page: 1, Limit: 20}, 40)
	assert.Equal(t, 2, m.TotalPages)

	m = NewMeta(Page{Page: 1, Limit: 20}, 0)
	assert.Equal(t, 0, m.TotalPages)
}
