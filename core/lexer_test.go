package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeInstruction(t *testing.T) {
	toks, err := Tokenize("loop: LDI R0, 0x10 ; init counter")
	assert.NoError(t, err)
	assert.Len(t, toks, 5)
	assert.Equal(t, TokLabel, toks[0].Kind)
	assert.Equal(t, "loop", toks[0].Text)
	assert.Equal(t, TokInstruction, toks[1].Kind)
	assert.Equal(t, "LDI", toks[1].Text)
	assert.Equal(t, TokRegister, toks[2].Kind)
	assert.Equal(t, 0, toks[2].Value)
	assert.Equal(t, TokComma, toks[3].Kind)
	assert.Equal(t, TokImmediate, toks[4].Kind)
	assert.Equal(t, 0x10, toks[4].Value)
}

func TestTokenizeBracketsAndSP(t *testing.T) {
	toks, err := Tokenize("ST [SP], R3")
	assert.NoError(t, err)
	want := []TokenKind{TokInstruction, TokLBracket, TokRegister, TokRBracket, TokComma, TokRegister}
	for i, k := range want {
		assert.Equal(t, k, toks[i].Kind, "token %d", i)
	}
	assert.Equal(t, 7, toks[2].Value) // SP == R7
}

func TestTokenizeString(t *testing.T) {
	toks, err := Tokenize(`msg: .STRING "Hi"`)
	assert.NoError(t, err)
	assert.Equal(t, TokLabel, toks[0].Kind)
	assert.Equal(t, TokDirective, toks[1].Kind)
	assert.Equal(t, ".STRING", toks[1].Text)
	assert.Equal(t, TokString, toks[2].Kind)
	assert.Equal(t, "Hi", toks[2].Text)
}

func TestTokenizeCharLiteral(t *testing.T) {
	toks, err := Tokenize("LDI R0, 'A'")
	assert.NoError(t, err)
	assert.Equal(t, TokImmediate, toks[2].Kind)
	assert.Equal(t, int('A'), toks[2].Value)
}

func TestTokenizeCommentOnly(t *testing.T) {
	toks, err := Tokenize("   ; just a comment")
	assert.NoError(t, err)
	assert.Empty(t, toks)
}

func TestTokenizeTooManyTokens(t *testing.T) {
	_, err := Tokenize(".WORD 1,2,3,4,5,6,7,8,9,10,11")
	assert.Error(t, err)
}
