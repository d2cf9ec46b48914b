package core

import "errors"

// Sentinel errors for the emulator and loader, grounded on the teacher's own
// errProgramFinished/errSegmentationFault/errUnknownInstruction set.
var (
	errProgramTooLarge  = errors.New("simplecpu16: program does not fit in memory at load base")
	errUnknownOpcode    = errors.New("simplecpu16: unknown opcode")
	errInstructionLimit = errors.New("simplecpu16: instruction limit reached (possible infinite loop)")
)
