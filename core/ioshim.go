package core

import (
	"bufio"
	"fmt"
	"io"
)

// HostIO is the final sink/source for MMIO traffic (C7): a character-out
// sink, a decimal-integer-out sink, a packed-string-out sink, and a blocking
// character-in source. The cycle-counter MMIO port is read directly off the
// Machine's own counter by Memory.Read, so it needs no HostIO method. The
// emulator core never talks to the terminal directly; it only ever calls
// through this interface.
type HostIO interface {
	CharOut(b byte)
	IntOut(v int16)
	StrOut(mem *Memory, addr Word)
	CharIn() Word
}

// StdIO is the default HostIO, backed by buffered stdio, matching the
// teacher's own bufio-based console device.
type StdIO struct {
	out *bufio.Writer
	in  *bufio.Reader
}

// NewStdIO wraps w/r (typically os.Stdout/os.Stdin) as a HostIO.
func NewStdIO(w io.Writer, r io.Reader) *StdIO {
	return &StdIO{out: bufio.NewWriter(w), in: bufio.NewReader(r)}
}

func (s *StdIO) CharOut(b byte) {
	s.out.WriteByte(b)
	s.out.Flush()
}

func (s *StdIO) IntOut(v int16) {
	fmt.Fprintf(s.out, "%d\n", v)
	s.out.Flush()
}

// StrOut walks mem starting at addr, printing packed ASCII bytes (low byte
// of each word first, then high byte) until a zero byte is observed, per §6.
func (s *StdIO) StrOut(mem *Memory, addr Word) {
	for {
		w := mem.Read(addr)
		lo := byte(w & 0xFF)
		hi := byte(w >> 8)
		if lo == 0 {
			break
		}
		s.out.WriteByte(lo)
		if hi == 0 {
			break
		}
		s.out.WriteByte(hi)
		addr++
	}
	s.out.Flush()
}

// CharIn blocks for a single byte of input and returns its code, or 0 on
// EOF/error.
func (s *StdIO) CharIn() Word {
	b, err := s.in.ReadByte()
	if err != nil {
		return 0
	}
	return Word(b)
}

// NullIO records all output in memory (Written, Ints, Strings) instead of
// printing it, and returns 0 for every input, useful for headless tests that
// inspect host-visible side effects.
type NullIO struct {
	Written []byte
	Ints    []int16
	Strings []string
}

func (n *NullIO) CharOut(b byte) { n.Written = append(n.Written, b) }
func (n *NullIO) IntOut(v int16) { n.Ints = append(n.Ints, v) }
func (n *NullIO) StrOut(mem *Memory, addr Word) {
	var b []byte
	for {
		w := mem.Read(addr)
		lo := byte(w & 0xFF)
		hi := byte(w >> 8)
		if lo == 0 {
			break
		}
		b = append(b, lo)
		if hi == 0 {
			break
		}
		b = append(b, hi)
		addr++
	}
	n.Strings = append(n.Strings, string(b))
}
func (n *NullIO) CharIn() Word { return 0 }
