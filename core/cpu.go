package core

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// DefaultInstructionLimit is the watchdog ceiling on executed instructions,
// matching the reference cpu_run's hard-coded 1,000,000.
const DefaultInstructionLimit = 1_000_000

// DefaultLoadBase is where a binary image lands absent an explicit base.
const DefaultLoadBase Word = 0x0000

// InitialSP is the stack pointer's reset value (§3).
const InitialSP Word = 0xE000

// Flags holds the four status booleans updated by arithmetic/logic/shift/
// compare instructions (§3). V is carried for bit-exact shape but is never
// set, per the Open Question resolution in SPEC_FULL.md.
type Flags struct {
	Z, N, C, V bool
}

var (
	traceOpStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	traceRegStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	traceAddrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("221"))
)

// Machine is the CPU core's full mutable state (C6): registers, flags, PC,
// IR, cycle counter, halted flag, and the memory bank it executes against.
// It owns its registers/flags/PC/memory exclusively for its lifetime; there
// is no process-wide mutable state (§9).
type Machine struct {
	regs   [8]Word
	flags  Flags
	pc     Word
	ir     Word
	cycle  uint64
	halted bool

	mem *Memory
	io  HostIO

	loadBase   Word
	instrLimit uint64
	trace      io.Writer
	divByZero  int
	limitHit   bool
	lastErr    error
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithHostIO wires a non-default HostIO (a NullIO is used otherwise).
func WithHostIO(hostIO HostIO) Option {
	return func(m *Machine) { m.io = hostIO }
}

// WithInstructionLimit overrides DefaultInstructionLimit; 0 disables the
// watchdog entirely.
func WithInstructionLimit(n uint64) Option {
	return func(m *Machine) { m.instrLimit = n }
}

// WithLoadBase overrides DefaultLoadBase.
func WithLoadBase(base Word) Option {
	return func(m *Machine) { m.loadBase = base }
}

// WithTrace enables the per-instruction "[EXECUTE] ..." trace, written to w.
func WithTrace(w io.Writer) Option {
	return func(m *Machine) { m.trace = w }
}

// NewMachine builds a fresh Machine: zeroed registers except SP=InitialSP,
// zeroed flags, PC at the (possibly overridden) load base.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		loadBase:   DefaultLoadBase,
		instrLimit: DefaultInstructionLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.io == nil {
		m.io = &NullIO{}
	}
	m.mem = NewMemory(m.io, &m.cycle)
	m.reset()
	return m
}

func (m *Machine) reset() {
	for i := range m.regs {
		m.regs[i] = 0
	}
	m.regs[7] = InitialSP
	m.flags = Flags{}
	m.pc = m.loadBase
	m.ir = 0
	m.cycle = 0
	m.halted = false
	m.divByZero = 0
	m.limitHit = false
	m.lastErr = nil
}

// Report summarizes a completed Run for caller inspection (§1's "final
// machine state for inspection").
type Report struct {
	Cycles         uint64
	Halted         bool
	LimitReached   bool
	DivByZeroCount int
	Registers      [8]Word
	SP             Word
	Flags          Flags
	Err            error
}

// Run loads image at the machine's load base and executes until halted or
// the instruction limit is reached.
func (m *Machine) Run(image Image) (Report, error) {
	m.reset()
	if err := m.mem.LoadAt(m.loadBase, image); err != nil {
		return Report{Err: err}, err
	}
	for !m.halted {
		if m.instrLimit != 0 && m.cycle >= m.instrLimit {
			m.limitHit = true
			m.lastErr = errInstructionLimit
			break
		}
		if err := m.Step(); err != nil {
			m.lastErr = err
		}
	}
	return m.report(), nil
}

func (m *Machine) report() Report {
	return Report{
		Cycles:         m.cycle,
		Halted:         m.halted,
		LimitReached:   m.limitHit,
		DivByZeroCount: m.divByZero,
		Registers:      m.regs,
		SP:             m.regs[7],
		Flags:          m.flags,
		Err:            m.lastErr,
	}
}

// Step fetches, decodes, and executes exactly one instruction (§4.6).
func (m *Machine) Step() error {
	if m.halted {
		return nil
	}
	ctrl := m.mem.Read(m.pc)
	m.pc++
	m.ir = ctrl
	inst := Decode(ctrl)

	var extra Word
	if inst.NeedsExtraWord() {
		extra = m.mem.Read(m.pc)
		m.pc++
	}

	if m.trace != nil {
		m.traceStep(inst, extra)
	}

	err := m.execute(inst, extra)
	m.cycle++
	return err
}

func (m *Machine) traceStep(inst Instruction, extra Word) {
	fmt.Fprintf(m.trace, "  [EXECUTE] PC=%s, IR=%s, OP=%s, Rd=%s, Rs=%s, Mode=%02X\n",
		traceAddrStyle.Render(fmt.Sprintf("0x%04X", m.pc)),
		traceAddrStyle.Render(fmt.Sprintf("0x%04X", m.ir)),
		traceOpStyle.Render(fmt.Sprintf("%X", byte(inst.Opcode))),
		traceRegStyle.Render(fmt.Sprintf("R%d", inst.Rd)),
		traceRegStyle.Render(fmt.Sprintf("R%d", inst.Rs)),
		inst.Mode)
	if inst.NeedsExtraWord() {
		fmt.Fprintf(m.trace, "    extra=0x%04X\n", extra)
	}
}

func (m *Machine) execute(inst Instruction, extra Word) error {
	switch inst.Opcode {
	case OpNop:
		// no effect

	case OpLoad:
		switch LoadMode(inst.Mode) {
		case LoadImm:
			m.regs[inst.Rd] = extra
		case LoadDirect:
			m.regs[inst.Rd] = m.mem.Read(extra)
		case LoadIndirect:
			m.regs[inst.Rd] = m.mem.Read(m.regs[inst.Rs])
		}

	case OpStore:
		switch StoreMode(inst.Mode) {
		case StoreDirect:
			m.mem.Write(extra, m.regs[inst.Rs])
		case StoreIndirect:
			m.mem.Write(m.regs[inst.Rd], m.regs[inst.Rs])
		}

	case OpMove:
		m.regs[inst.Rd] = m.regs[inst.Rs]

	case OpArith:
		m.execArith(inst, extra)

	case OpLogic:
		m.execLogic(inst)

	case OpShift:
		m.execShift(inst)

	case OpBranch:
		if m.branchTaken(BranchCond(inst.Mode)) {
			m.pc = extra
		}

	case OpJump:
		m.pc = extra

	case OpStack:
		switch StackMode(inst.Mode) {
		case StackPush:
			m.regs[7]--
			m.mem.Write(m.regs[7], m.regs[inst.Rs])
		case StackPop:
			m.regs[inst.Rd] = m.mem.Read(m.regs[7])
			m.regs[7]++
		}

	case OpCall:
		m.regs[7]--
		m.mem.Write(m.regs[7], m.pc) // PC already points past the target word
		m.pc = extra

	case OpRet:
		m.pc = m.mem.Read(m.regs[7])
		m.regs[7]++

	case OpCmp:
		diff := uint32(m.regs[inst.Rd]) - uint32(m.regs[inst.Rs])
		m.setFlagsFrom32(diff, true)

	case OpHalt:
		m.halted = true

	default:
		m.halted = true
		m.lastErr = errUnknownOpcode
		return errUnknownOpcode
	}
	return nil
}

func (m *Machine) execArith(inst Instruction, extra Word) {
	switch ArithMode(inst.Mode) {
	case ArithAdd:
		r := uint32(m.regs[inst.Rd]) + uint32(m.regs[inst.Rs])
		m.regs[inst.Rd] = Word(r)
		m.setFlagsFrom32(r, true)
	case ArithSub:
		r := uint32(m.regs[inst.Rd]) - uint32(m.regs[inst.Rs])
		m.regs[inst.Rd] = Word(r)
		m.setFlagsFrom32(r, true)
	case ArithMul:
		r := uint32(m.regs[inst.Rd]) * uint32(m.regs[inst.Rs])
		m.regs[inst.Rd] = Word(r)
		m.setFlagsFrom32(r, true)
	case ArithDiv:
		if m.regs[inst.Rs] == 0 {
			m.divByZero++
			return
		}
		m.regs[inst.Rd] = m.regs[inst.Rd] / m.regs[inst.Rs]
		m.setFlagsFrom16(m.regs[inst.Rd], false)
	case ArithInc:
		m.regs[inst.Rd]++
		m.setFlagsFrom16(m.regs[inst.Rd], false)
	case ArithDec:
		m.regs[inst.Rd]--
		m.setFlagsFrom16(m.regs[inst.Rd], false)
	case ArithAddi:
		r := uint32(m.regs[inst.Rd]) + uint32(extra)
		m.regs[inst.Rd] = Word(r)
		m.setFlagsFrom32(r, true)
	case ArithSubi:
		r := uint32(m.regs[inst.Rd]) - uint32(extra)
		m.regs[inst.Rd] = Word(r)
		m.setFlagsFrom32(r, true)
	}
}

func (m *Machine) execLogic(inst Instruction) {
	switch LogicMode(inst.Mode) {
	case LogicAnd:
		m.regs[inst.Rd] &= m.regs[inst.Rs]
	case LogicOr:
		m.regs[inst.Rd] |= m.regs[inst.Rs]
	case LogicXor:
		m.regs[inst.Rd] ^= m.regs[inst.Rs]
	case LogicNot:
		m.regs[inst.Rd] = ^m.regs[inst.Rd]
	}
	m.setFlagsFrom16(m.regs[inst.Rd], false)
}

func (m *Machine) execShift(inst Instruction) {
	amount := m.regs[inst.Rs] & 0xF
	switch ShiftMode(inst.Mode) {
	case ShiftShl:
		m.regs[inst.Rd] <<= amount
	case ShiftShr:
		m.regs[inst.Rd] >>= amount
	case ShiftSar:
		signed := int16(m.regs[inst.Rd])
		m.regs[inst.Rd] = Word(signed >> amount)
	}
	m.setFlagsFrom16(m.regs[inst.Rd], false)
}

func (m *Machine) branchTaken(cond BranchCond) bool {
	f := m.flags
	switch cond {
	case BranchEQ:
		return f.Z
	case BranchNE:
		return !f.Z
	case BranchGT:
		return !f.N && !f.Z
	case BranchLT:
		return f.N
	case BranchGE:
		return !f.N
	case BranchLE:
		return f.N || f.Z
	case BranchCS:
		return f.C
	case BranchCC:
		return !f.C
	default:
		return false
	}
}

// setFlagsFrom32 updates Z/N from the low 16 bits of result and, if
// updateCarry, C from whether the 32-bit result overflowed 16 bits.
func (m *Machine) setFlagsFrom32(result uint32, updateCarry bool) {
	r16 := Word(result)
	m.flags.Z = r16 == 0
	m.flags.N = r16&0x8000 != 0
	if updateCarry {
		m.flags.C = result > 0xFFFF
	}
}

func (m *Machine) setFlagsFrom16(result Word, updateCarry bool) {
	m.flags.Z = result == 0
	m.flags.N = result&0x8000 != 0
	if updateCarry {
		m.flags.C = false
	}
}

// Registers returns a copy of the current register file.
func (m *Machine) Registers() [8]Word { return m.regs }

// FlagsSnapshot returns the current flag values.
func (m *Machine) FlagsSnapshot() Flags { return m.flags }

// PC returns the current program counter.
func (m *Machine) PC() Word { return m.pc }

// Halted reports whether the machine has executed a HALT or unknown opcode.
func (m *Machine) Halted() bool { return m.halted }

// Memory exposes the machine's memory bank for inspection (e.g. --memdump).
func (m *Machine) Memory() *Memory { return m.mem }
