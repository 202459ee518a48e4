package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepeat(t *testing.T) {
	h := NewHelpers()

	assert.Equal(t, "repeatrepeatrepeat", h.Repeat("repeat", 3))
	assert.Equal(t, "", h.Repeat("repeat", 0))
	assert.Equal(t, "", h.Repeat("repeat", -1))
}

func TestCompactJSON(t *testing.T) {
	h := NewHelpers()

	assert.Equal(t, `{"name":42}`, h.CompactJSON(map[string]int{"name": 42}))
	assert.Equal(t, "null", h.CompactJSON(nil))
	assert.Equal(t, "null", h.CompactJSON(make(chan int)))
}
