package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStdIOCharOut(t *testing.T) {
	var buf bytes.Buffer
	io := NewStdIO(&buf, bytes.NewReader(nil))
	io.CharOut('Q')
	assert.Equal(t, "Q", buf.String())
}

func TestStdIOIntOut(t *testing.T) {
	var buf bytes.Buffer
	io := NewStdIO(&buf, bytes.NewReader(nil))
	io.IntOut(-5)
	assert.Equal(t, "-5\n", buf.String())
}

func TestStdIOStrOut(t *testing.T) {
	var buf bytes.Buffer
	io := NewStdIO(&buf, bytes.NewReader(nil))
	mem := NewMemory(io, new(uint64))
	mem.Write(0x10, Word('H')|Word('i')<<8)
	mem.Write(0x11, 0)
	io.StrOut(mem, 0x10)
	assert.Equal(t, "Hi", buf.String())
}

func TestStdIOCharInBlocksThenReturnsByte(t *testing.T) {
	io := NewStdIO(&bytes.Buffer{}, bytes.NewReader([]byte("Z")))
	require.Equal(t, Word('Z'), io.CharIn())
}

func TestStdIOCharInEOFReturnsZero(t *testing.T) {
	io := NewStdIO(&bytes.Buffer{}, bytes.NewReader(nil))
	assert.Equal(t, Word(0), io.CharIn())
}
