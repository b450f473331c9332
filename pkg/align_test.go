package pkg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlign(t *testing.T) {
	cases := []struct {
		value, alignment, want uint32
	}{
		{0, 64, 0},
		{1, 64, 64},
		{63, 64, 64},
		{64, 64, 64},
		{65, 64, 128},
		{676, 64, 704},
		{5, 16, 16},
		{5, 0, 5},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, Align(c.value, c.alignment), "Align(%d, %d)", c.value, c.alignment)
	}
}

func TestPad(t *testing.T) {
	data := bytes.Repeat([]byte{0xAA}, 10)

	padded := Pad(data, 64)
	assert.Len(t, padded, 64)
	assert.Equal(t, data, padded[:10])
	assert.Equal(t, make([]byte, 54), padded[10:])

	// already aligned input comes back unchanged
	aligned := bytes.Repeat([]byte{0xBB}, 64)
	assert.Equal(t, aligned, Pad(aligned, 64))

	assert.Empty(t, Pad(nil, 64))
}
