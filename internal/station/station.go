// Package station is the closed library of CTL idioms described in spec
// §4.5: "train-station" primitives that the code emitter composes to
// implement every instruction lowering. Every primitive here takes cell
// offsets measured from the emitter's current head position (its
// "origin") and returns CTL text that leaves the head back at that same
// origin when it finishes, so calls compose freely in sequence.
//
// The character-level templates for ClearImm, StoreImm, Move, Move2,
// Add, Sub, AddImm, SubImm, Not and Bitcast mirror
// original_source/bfcc.rs's Op::print() match arms exactly (see
// DESIGN.md); LoadInd/StoreInd (indirect.go) are re-derived rather than
// transcribed, since their reference implementation's hand-optimized
// shuttle could not be verified without running a CTL interpreter.
package station

import "strings"

// MoveHead returns the CTL motion required to go from offset `from` to
// offset `to`, both measured from a shared origin. Exported for callers
// that must track a head position explicitly across a sequence of
// primitives instead of relying on each primitive's own self-returning
// convention — internal/codegen's dispatch-loop scaffolding, which
// parks the head at a function- or block-mask cell for the lifetime of
// a loop rather than returning to offset 0 after every step.
func MoveHead(from, to int) string {
	return moveTo(from, to)
}

// moveTo returns the CTL motion required to go from cell `from` to cell
// `to`, both measured as offsets from a shared origin.
func moveTo(from, to int) string {
	if from == to {
		return ""
	}
	if from > to {
		return strings.Repeat("<", from-to)
	}
	return strings.Repeat(">", to-from)
}

// ClearImm sets cell d to 0. Temps untouched.
func ClearImm(d int) string {
	var b strings.Builder
	b.WriteString(moveTo(0, d))
	b.WriteString("[-]")
	b.WriteString(moveTo(d, 0))
	return b.String()
}

// StoreImm sets cell d to the constant v (0..255).
func StoreImm(v uint8, d int) string {
	var b strings.Builder
	b.WriteString(moveTo(0, d))
	b.WriteString("[-]")
	b.WriteString(strings.Repeat("+", int(v)))
	b.WriteString(moveTo(d, 0))
	return b.String()
}

// StoreAddr sets cell d to the constant address v. Bit-for-bit identical
// to StoreImm; kept as a distinct name so emitted traces can distinguish
// "materializing a pointer constant" from "materializing a data
// constant" (spec SPEC_FULL.md, supplemented feature #1).
func StoreAddr(v uint8, d int) string {
	return StoreImm(v, d)
}

// Move adds s into d and zeroes s, first clearing d. d ends at s's prior
// value; s ends at 0.
func Move(s, d int) string {
	var b strings.Builder
	b.WriteString(moveTo(0, d))
	b.WriteString("[-]")
	b.WriteString(moveTo(d, s))
	b.WriteString("[-")
	b.WriteString(moveTo(s, d))
	b.WriteString("+")
	b.WriteString(moveTo(d, s))
	b.WriteString("]")
	b.WriteString(moveTo(s, 0))
	return b.String()
}

// Move2 is Move but fans the value out to two destinations, both
// cleared first.
func Move2(s, d1, d2 int) string {
	var b strings.Builder
	b.WriteString(moveTo(0, d1))
	b.WriteString("[-]")
	b.WriteString(moveTo(d1, d2))
	b.WriteString("[-]")
	b.WriteString(moveTo(d2, s))
	b.WriteString("[-")
	b.WriteString(moveTo(s, d1))
	b.WriteString("+")
	b.WriteString(moveTo(d1, d2))
	b.WriteString("+")
	b.WriteString(moveTo(d2, s))
	b.WriteString("]")
	b.WriteString(moveTo(s, 0))
	return b.String()
}

// Copy duplicates s into d (cleared first) while leaving s unchanged,
// using t as a scratch cell distinct from both.
func Copy(s, d, t int) string {
	return Move2(s, d, t) + Move(t, s)
}

// Add accumulates s into d (NOT pre-cleared) and zeroes s.
func Add(s, d int) string {
	var b strings.Builder
	b.WriteString(moveTo(0, s))
	b.WriteString("[-")
	b.WriteString(moveTo(s, d))
	b.WriteString("+")
	b.WriteString(moveTo(d, s))
	b.WriteString("]")
	b.WriteString(moveTo(s, 0))
	return b.String()
}

// Sub subtracts s from d (NOT pre-cleared) and zeroes s.
func Sub(s, d int) string {
	var b strings.Builder
	b.WriteString(moveTo(0, s))
	b.WriteString("[-")
	b.WriteString(moveTo(s, d))
	b.WriteString("-")
	b.WriteString(moveTo(d, s))
	b.WriteString("]")
	b.WriteString(moveTo(s, 0))
	return b.String()
}

// AddImm adds the constant v to d in place.
func AddImm(v uint8, d int) string {
	return moveTo(0, d) + strings.Repeat("+", int(v)) + moveTo(d, 0)
}

// SubImm subtracts the constant v from d in place.
func SubImm(v uint8, d int) string {
	return moveTo(0, d) + strings.Repeat("-", int(v)) + moveTo(d, 0)
}

// Not sets d to 1 if s == 0, else 0, and zeroes s. Precondition: d starts
// at 0 (a fresh register); Not does not clear it itself.
func Not(s, d int) string {
	var b strings.Builder
	b.WriteString(moveTo(0, d))
	b.WriteString("+")
	b.WriteString(moveTo(d, s))
	b.WriteString("[")
	b.WriteString(moveTo(s, d))
	b.WriteString("-")
	b.WriteString(moveTo(d, s))
	b.WriteString("[-]")
	b.WriteString("]")
	b.WriteString(moveTo(s, 0))
	return b.String()
}

// Bitcast sets d to 1 if s != 0, else 0, and zeroes s. Unlike Not,
// Bitcast clears d itself, so it has no precondition on d's prior value.
func Bitcast(s, d int) string {
	var b strings.Builder
	b.WriteString(moveTo(0, d))
	b.WriteString("[-]")
	b.WriteString(moveTo(d, s))
	b.WriteString("[")
	b.WriteString(moveTo(s, d))
	b.WriteString("+")
	b.WriteString(moveTo(d, s))
	b.WriteString("[-]")
	b.WriteString("]")
	b.WriteString(moveTo(s, 0))
	return b.String()
}

// IfOnce is the exported form of ifOnce, for callers outside this
// package (internal/codegen's CondBr lowering) composing the "if/else
// via two loops" pattern described in spec §4.4.
func IfOnce(flag int, body string) string {
	return ifOnce(flag, body)
}

// ifOnce wraps body so it executes at most once: body runs iff flag was
// 1 when entered, and flag is always 0 on exit. body must itself be
// written assuming an origin of 0 and must return the head to 0.
func ifOnce(flag int, body string) string {
	var b strings.Builder
	b.WriteString(moveTo(0, flag))
	b.WriteString("[-")
	b.WriteString(moveTo(flag, 0))
	b.WriteString(body)
	b.WriteString(moveTo(0, flag))
	b.WriteString("]")
	b.WriteString(moveTo(flag, 0))
	return b.String()
}
