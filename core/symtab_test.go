package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTableDefineLookup(t *testing.T) {
	s := NewSymbolTable()
	require.NoError(t, s.Define("start", 0x10))
	addr, ok := s.Lookup("start")
	assert.True(t, ok)
	assert.Equal(t, Word(0x10), addr)
}

func TestSymbolTableRejectsDuplicate(t *testing.T) {
	s := NewSymbolTable()
	require.NoError(t, s.Define("loop", 4))
	err := s.Define("loop", 8)
	assert.Error(t, err)

	addr, ok := s.Lookup("loop")
	assert.True(t, ok)
	assert.Equal(t, Word(4), addr, "original address must be kept on rejected redefinition")
}

func TestSymbolTableUnknownLookup(t *testing.T) {
	s := NewSymbolTable()
	_, ok := s.Lookup("nope")
	assert.False(t, ok)
}

func TestSymbolTableCapacity(t *testing.T) {
	s := NewSymbolTable()
	for i := 0; i < MaxLabels; i++ {
		require.NoError(t, s.Define(labelName(i), Word(i)))
	}
	err := s.Define("overflow", 9999)
	assert.Error(t, err)
	assert.Equal(t, MaxLabels, s.Len())
}

func labelName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i%26]) + string(letters[(i/26)%26]) + string(letters[(i/676)%26])
}
