package core

import (
	"fmt"
	"strings"
)

// Image is the flat binary image produced by the assembler and consumed by
// the emulator's loader — the exclusive contract between the two halves
// (§2).
type Image []Word

// Diagnostic is one recoverable condition the assembler noticed while still
// completing assembly (§7): a line number and a human-readable message.
type Diagnostic struct {
	Line int
	Msg  string
}

// Diagnostics accumulates Diagnostic records across a single AssembleText
// call, mirroring the teacher's debugSymbols/debugOut accumulator texture
// rather than logging directly from the core.
type Diagnostics struct {
	items []Diagnostic
}

func (d *Diagnostics) add(line int, format string, args ...any) {
	d.items = append(d.items, Diagnostic{Line: line, Msg: fmt.Sprintf(format, args...)})
}

// Items returns every diagnostic recorded during assembly: those found in
// pass 1 first, then those found in pass 2, each group in line order.
func (d *Diagnostics) Items() []Diagnostic { return d.items }

// Empty reports whether assembly produced no diagnostics at all.
func (d *Diagnostics) Empty() bool { return len(d.items) == 0 }

func (d *Diagnostics) String() string {
	var b strings.Builder
	for _, it := range d.items {
		fmt.Fprintf(&b, "line %d: %s\n", it.Line, it.Msg)
	}
	return b.String()
}

// AssembleText runs the two-pass assembler over lines and returns the
// resulting binary image together with any diagnostics collected along the
// way. Assembly always completes — undefined symbols, unknown mnemonics,
// and excess labels are reported, not fatal (§7).
func AssembleText(lines []string) (Image, *Diagnostics) {
	diags := &Diagnostics{}
	sym := NewSymbolTable()

	// Pass 1: collect labels and compute each line's size in words.
	loc := Word(0)
	for i, line := range lines {
		toks, lexErr := Tokenize(line)
		if lexErr != nil {
			diags.add(i+1, "%v", lexErr)
		}
		idx := 0
		if idx < len(toks) && toks[idx].Kind == TokLabel {
			if err := sym.Define(toks[idx].Text, loc); err != nil {
				diags.add(i+1, "%v", err)
			}
			idx++
		}
		if idx >= len(toks) {
			continue
		}
		loc = advancePass1(toks[idx:], loc)
	}

	// Pass 2: re-tokenise and emit.
	var img Image
	pos := 0
	emit := func(w Word) {
		for pos >= len(img) {
			img = append(img, 0)
		}
		img[pos] = w
		pos++
	}

	for i, line := range lines {
		toks, _ := Tokenize(line)
		idx := 0
		if idx < len(toks) && toks[idx].Kind == TokLabel {
			idx++
		}
		if idx >= len(toks) {
			continue
		}
		tok := toks[idx]
		switch {
		case tok.Kind == TokDirective:
			assembleDirective(tok, toks[idx+1:], sym, &pos, emit, diags, i+1)
		case tok.Kind == TokInstruction:
			assembleInstruction(tok.Text, toks[idx+1:], sym, emit, diags, i+1)
		}
	}

	return img, diags
}

// advancePass1 returns the location counter after accounting for one line's
// directive or instruction, per §4.4.
func advancePass1(toks []Token, loc Word) Word {
	if len(toks) == 0 {
		return loc
	}
	tok := toks[0]
	switch tok.Kind {
	case TokDirective:
		switch tok.Text {
		case ".ORG":
			if len(toks) > 1 {
				return Word(toks[1].Value)
			}
			return loc
		case ".WORD":
			n := Word(0)
			for _, t := range toks[1:] {
				if t.Kind != TokComma {
					n++
				}
			}
			return loc + n
		case ".STRING", ".ASCIIZ":
			if len(toks) > 1 {
				s := toks[1].Text
				return loc + Word((len(s)+1)/2+1)
			}
			return loc + 1
		default:
			return loc
		}
	case TokInstruction:
		return loc + Word(instructionSize(tok.Text, toks[1:]))
	default:
		return loc
	}
}

// instructionSize returns 1 or 2 depending on mnemonic and, for LD/ST,
// whether the bracketed operand is a register, per §4.4's sizing rule.
func instructionSize(mnemonic string, operands []Token) int {
	m := strings.ToUpper(mnemonic)
	switch m {
	case "LDI", "ADDI", "SUBI", "JMP", "CALL",
		"BEQ", "BNE", "BGT", "BLT", "BGE", "BLE", "BCS", "BCC":
		return 2
	case "LD":
		if len(operands) > 3 && operands[3].Kind == TokRegister {
			return 1
		}
		return 2
	case "ST":
		if len(operands) > 1 && operands[1].Kind == TokRegister {
			return 1
		}
		return 2
	default:
		return 1
	}
}

func assembleDirective(tok Token, rest []Token, sym *SymbolTable, pos *int, emit func(Word), diags *Diagnostics, lineNo int) {
	switch tok.Text {
	case ".ORG":
		if len(rest) == 0 {
			diags.add(lineNo, ".ORG missing operand")
			return
		}
		*pos = rest[0].Value
	case ".WORD":
		for _, t := range rest {
			if t.Kind == TokComma {
				continue
			}
			emit(resolveValue(t, sym, diags, lineNo))
		}
	case ".STRING", ".ASCIIZ":
		if len(rest) == 0 {
			diags.add(lineNo, "%s missing operand", tok.Text)
			return
		}
		s := rest[0].Text
		for i := 0; i < len(s); i += 2 {
			w := Word(s[i])
			if i+1 < len(s) {
				w |= Word(s[i+1]) << 8
			}
			emit(w)
		}
		emit(0)
	default:
		diags.add(lineNo, "unknown directive %q", tok.Text)
	}
}

// resolveValue turns an Immediate or bare-identifier (label) token into its
// numeric word value, reporting an undefined symbol per §7.
func resolveValue(t Token, sym *SymbolTable, diags *Diagnostics, lineNo int) Word {
	switch t.Kind {
	case TokImmediate:
		return Word(t.Value)
	case TokRegister:
		return Word(t.Value)
	default:
		if addr, ok := sym.Lookup(t.Text); ok {
			return addr
		}
		diags.add(lineNo, "undefined label %q", t.Text)
		return 0
	}
}

// assembleInstruction encodes one mnemonic + operand list and emits its
// control word (plus extra word where applicable), per §4.1's per-mnemonic
// token layout.
func assembleInstruction(mnemonic string, ops []Token, sym *SymbolTable, emit func(Word), diags *Diagnostics, lineNo int) {
	m := strings.ToUpper(mnemonic)
	reg := func(i int) byte {
		if i < len(ops) && ops[i].Kind == TokRegister {
			return byte(ops[i].Value)
		}
		return 0
	}

	switch m {
	case "NOP":
		emit(Encode(OpNop, 0, 0, 0))
	case "HALT":
		emit(Encode(OpHalt, 0, 0, 0))
	case "MOV", "MOVE":
		emit(Encode(OpMove, reg(0), reg(2), 0))
	case "LDI":
		emit(Encode(OpLoad, reg(0), 0, byte(LoadImm)))
		emit(resolveValue(opAt(ops, 2), sym, diags, lineNo))
	case "LD":
		if len(ops) > 3 && ops[3].Kind == TokRegister {
			emit(Encode(OpLoad, reg(0), reg(3), byte(LoadIndirect)))
		} else {
			emit(Encode(OpLoad, reg(0), 0, byte(LoadDirect)))
			emit(resolveValue(opAt(ops, 3), sym, diags, lineNo))
		}
	case "ST":
		if len(ops) > 1 && ops[1].Kind == TokRegister {
			emit(Encode(OpStore, reg(1), reg(4), byte(StoreIndirect)))
		} else {
			emit(Encode(OpStore, 0, reg(4), byte(StoreDirect)))
			emit(resolveValue(opAt(ops, 1), sym, diags, lineNo))
		}
	case "ADD":
		emit(Encode(OpArith, reg(0), reg(2), byte(ArithAdd)))
	case "SUB":
		emit(Encode(OpArith, reg(0), reg(2), byte(ArithSub)))
	case "MUL":
		emit(Encode(OpArith, reg(0), reg(2), byte(ArithMul)))
	case "DIV":
		emit(Encode(OpArith, reg(0), reg(2), byte(ArithDiv)))
	case "INC":
		emit(Encode(OpArith, reg(0), 0, byte(ArithInc)))
	case "DEC":
		emit(Encode(OpArith, reg(0), 0, byte(ArithDec)))
	case "ADDI":
		emit(Encode(OpArith, reg(0), 0, byte(ArithAddi)))
		emit(resolveValue(opAt(ops, 2), sym, diags, lineNo))
	case "SUBI":
		emit(Encode(OpArith, reg(0), 0, byte(ArithSubi)))
		emit(resolveValue(opAt(ops, 2), sym, diags, lineNo))
	case "AND":
		emit(Encode(OpLogic, reg(0), reg(2), byte(LogicAnd)))
	case "OR":
		emit(Encode(OpLogic, reg(0), reg(2), byte(LogicOr)))
	case "XOR":
		emit(Encode(OpLogic, reg(0), reg(2), byte(LogicXor)))
	case "NOT":
		emit(Encode(OpLogic, reg(0), 0, byte(LogicNot)))
	case "SHL":
		emit(Encode(OpShift, reg(0), reg(2), byte(ShiftShl)))
	case "SHR":
		emit(Encode(OpShift, reg(0), reg(2), byte(ShiftShr)))
	case "SAR":
		emit(Encode(OpShift, reg(0), reg(2), byte(ShiftSar)))
	case "CMP":
		emit(Encode(OpCmp, reg(0), reg(2), 0))
	case "PUSH":
		emit(Encode(OpStack, 0, reg(0), byte(StackPush)))
	case "POP":
		emit(Encode(OpStack, reg(0), 0, byte(StackPop)))
	case "BEQ":
		emitBranch(BranchEQ, ops, sym, emit, diags, lineNo)
	case "BNE":
		emitBranch(BranchNE, ops, sym, emit, diags, lineNo)
	case "BGT":
		emitBranch(BranchGT, ops, sym, emit, diags, lineNo)
	case "BLT":
		emitBranch(BranchLT, ops, sym, emit, diags, lineNo)
	case "BGE":
		emitBranch(BranchGE, ops, sym, emit, diags, lineNo)
	case "BLE":
		emitBranch(BranchLE, ops, sym, emit, diags, lineNo)
	case "BCS":
		emitBranch(BranchCS, ops, sym, emit, diags, lineNo)
	case "BCC":
		emitBranch(BranchCC, ops, sym, emit, diags, lineNo)
	case "JMP":
		emit(Encode(OpJump, 0, 0, 0))
		emit(resolveValue(opAt(ops, 0), sym, diags, lineNo))
	case "CALL":
		emit(Encode(OpCall, 0, 0, 0))
		emit(resolveValue(opAt(ops, 0), sym, diags, lineNo))
	case "RET":
		emit(Encode(OpRet, 0, 0, 0))
	default:
		diags.add(lineNo, "unknown mnemonic %q", mnemonic)
		emit(0)
	}
}

func emitBranch(cond BranchCond, ops []Token, sym *SymbolTable, emit func(Word), diags *Diagnostics, lineNo int) {
	emit(Encode(OpBranch, 0, 0, byte(cond)))
	emit(resolveValue(opAt(ops, 0), sym, diags, lineNo))
}

// opAt returns ops[i], or a zero-value Instruction token if out of range
// (an operand-count mismatch is reported as an undefined-symbol-shaped
// diagnostic rather than a panic).
func opAt(ops []Token, i int) Token {
	if i < len(ops) {
		return ops[i]
	}
	return Token{Kind: TokInstruction, Text: ""}
}
