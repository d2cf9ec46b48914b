package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	w := Encode(OpArith, 3, 5, byte(ArithAdd))
	inst := Decode(w)
	assert.Equal(t, OpArith, inst.Opcode)
	assert.Equal(t, byte(3), inst.Rd)
	assert.Equal(t, byte(5), inst.Rs)
	assert.Equal(t, byte(ArithAdd), inst.Mode)
}

func TestNeedsExtraWord(t *testing.T) {
	cases := []struct {
		name string
		inst Instruction
		want bool
	}{
		{"load imm", Instruction{Opcode: OpLoad, Mode: byte(LoadImm)}, true},
		{"load indirect", Instruction{Opcode: OpLoad, Mode: byte(LoadIndirect)}, false},
		{"store direct", Instruction{Opcode: OpStore, Mode: byte(StoreDirect)}, true},
		{"store indirect", Instruction{Opcode: OpStore, Mode: byte(StoreIndirect)}, false},
		{"arith addi", Instruction{Opcode: OpArith, Mode: byte(ArithAddi)}, true},
		{"arith add", Instruction{Opcode: OpArith, Mode: byte(ArithAdd)}, false},
		{"branch", Instruction{Opcode: OpBranch, Mode: byte(BranchEQ)}, true},
		{"jump", Instruction{Opcode: OpJump}, true},
		{"call", Instruction{Opcode: OpCall}, true},
		{"ret", Instruction{Opcode: OpRet}, false},
		{"halt", Instruction{Opcode: OpHalt}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.inst.NeedsExtraWord())
		})
	}
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "ARITH", OpArith.String())
	assert.Contains(t, Opcode(0xD).String(), "?op")
}
