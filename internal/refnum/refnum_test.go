package refnum

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var refPattern = regexp.MustCompile(`^ORD-\d{13}-[0-9A-F]{9}$`)

func TestNewFormat(t *testing.T) {
	ref := New("ORD")
	assert.Regexp(t, refPattern, ref)
}

func TestNewIsUniqueEnough(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := New("SRV")
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}
