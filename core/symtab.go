package core

import "fmt"

// MaxLabels bounds the symbol table, matching the reference assembler's
// MAX_LABELS cap.
const MaxLabels = 256

// MaxLabelLen bounds label name length (§3).
const MaxLabelLen = 63

// SymbolTable maps label names to word addresses, populated in pass 1 and
// consulted in pass 2 (C3).
type SymbolTable struct {
	order []string
	addrs map[string]Word
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{addrs: make(map[string]Word)}
}

// Define records name -> addr. Per the Open Question resolution in
// SPEC_FULL.md, a duplicate definition of an existing name is rejected: the
// original address is kept and an error is returned for the caller to
// report as a Diagnostic. Exceeding MaxLabels is likewise rejected.
func (s *SymbolTable) Define(name string, addr Word) error {
	if len(name) > MaxLabelLen {
		name = name[:MaxLabelLen]
	}
	if _, exists := s.addrs[name]; exists {
		return fmt.Errorf("duplicate label definition: %q", name)
	}
	if len(s.order) >= MaxLabels {
		return fmt.Errorf("too many labels: %q rejected, limit is %d", name, MaxLabels)
	}
	s.addrs[name] = addr
	s.order = append(s.order, name)
	return nil
}

// Lookup returns the address bound to name, and whether it was found.
func (s *SymbolTable) Lookup(name string) (Word, bool) {
	addr, ok := s.addrs[name]
	return addr, ok
}

// Len reports how many labels are currently defined.
func (s *SymbolTable) Len() int { return len(s.order) }
