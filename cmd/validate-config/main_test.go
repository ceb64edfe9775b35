package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "<not set>", maskToken(""))
	assert.Equal(t, "***", maskToken("short"))
	assert.Equal(t, "1234...cdef", maskToken("1234567890abcdef"))
}
