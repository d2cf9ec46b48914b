package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRAMReadWrite(t *testing.T) {
	m := NewMemory(&NullIO{}, new(uint64))
	m.Write(0x100, 0xBEEF)
	assert.Equal(t, Word(0xBEEF), m.Read(0x100))
}

func TestMemoryUnrecognisedMMIOReadsZero(t *testing.T) {
	m := NewMemory(&NullIO{}, new(uint64))
	assert.Equal(t, Word(0), m.Read(0xF805))
}

func TestMemoryUnrecognisedMMIOWriteDiscarded(t *testing.T) {
	io := &NullIO{}
	m := NewMemory(io, new(uint64))
	m.Write(0xF805, 0x1234)
	assert.Empty(t, io.Written)
}

func TestMemoryCharOutDispatch(t *testing.T) {
	io := &NullIO{}
	m := NewMemory(io, new(uint64))
	m.Write(MMIOCharOut, 'A')
	require.Len(t, io.Written, 1)
	assert.Equal(t, byte('A'), io.Written[0])
}

func TestMemoryLoadAtRejectsOversizeImage(t *testing.T) {
	m := NewMemory(&NullIO{}, new(uint64))
	img := make(Image, 100)
	err := m.LoadAt(0xFFFF, img)
	assert.Error(t, err)
}

func TestMemoryLoadAtCopiesWords(t *testing.T) {
	m := NewMemory(&NullIO{}, new(uint64))
	require.NoError(t, m.LoadAt(0x10, Image{1, 2, 3}))
	assert.Equal(t, Word(1), m.Read(0x10))
	assert.Equal(t, Word(3), m.Read(0x12))
}
