// Package errors carries the error taxonomy for every stage of the
// pipeline described in spec §7: IR-unsupported aborts, normalizer
// invariant failures, and interpreter runtime faults.
package errors

// Error codes, grouped by stage (mirrors the teacher's grouped-by-range
// convention).
//
// Code ranges:
// IR001-IR099: unsupported IR shape (fatal, non-recoverable abort)
// N001-N099:   normalizer invariant violations (compiler bug)
// F001-F099:   interpreter runtime faults
const (
	// Unsupported instruction kind, type, or operand shape.
	ErrUnsupportedInstruction = "IR001"
	// Unsupported Alloca type (only 8-bit int is supported).
	ErrUnsupportedAllocaType = "IR002"
	// Store address is a constant rather than a pointer value.
	ErrUnsupportedStoreSource = "IR003"
	// putchar called with a non-constant argument.
	ErrNonConstantPutchar = "IR004"
	// Unsupported intrinsic / unknown callee.
	ErrUnknownCallee = "IR005"
	// Function with a non-empty parameter list (no calling convention).
	ErrUnsupportedParameters = "IR006"
	// ICmp predicate not implemented.
	ErrUnsupportedPredicate = "IR007"
	// Add operand shape not supported.
	ErrUnsupportedAddOperands = "IR008"
	// A call instruction is not the final non-terminator of its block
	// after normalization — a compiler bug, not a user-facing IR error.
	ErrCallNotBlockFinal = "N001"
	// The terminator following a call is not an unconditional branch.
	ErrCallTerminatorNotBr = "N002"
	// The entry block of a function still contains a call after
	// normalization.
	ErrEntryBlockHasCall = "N003"

	// Interpreter faults (spec §4.6, §7).
	FaultIntOverflow    = "F001"
	FaultIntUnderflow   = "F002"
	FaultMemOverflow    = "F003"
	FaultMemUnderflow   = "F004"
	FaultUnbalancedLoop = "F005"
	FaultTapeNotZero    = "F006"
	FaultUnimplemented  = "F007" // getchar
)
