// Package ctl compiles CTL source text into a fused op stream and
// executes it against a fixed tape, per spec §4.6. It is the only
// consumer-side verification the rest of this module has: the code
// emitter never runs its own output, so every behavioral guarantee
// about emitted CTL (§8's testable properties) is checked here.
package ctl

import (
	"strings"

	cerr "ctlc/internal/errors"
)

// TapeSize is the fixed tape length spec §4.6 mandates.
const TapeSize = 10000

// opKind tags the eight (well, six distinct after fusion) CTL op shapes.
type opKind int

const (
	opAdd opKind = iota
	opMov
	opPutchar
	opGetchar
	opJmpIfZ
	opJmpIfNZ
)

// op is one fused, resolved instruction in a compiled program.
type op struct {
	kind opKind
	n    int // Add's delta or Mov's delta
	dest int // JmpIfZ/JmpIfNZ's resolved target index
}

// Program is a compiled, fused, bracket-resolved CTL op stream, ready
// for Execute.
type Program struct {
	ops []op
}

// Compile lowers CTL source text into a Program: map characters to
// typed ops (dropping anything not one of the eight CTL characters),
// fuse adjacent Add/Add and Mov/Mov runs into single counted ops, then
// resolve every bracket target in one pass. An unbalanced program is a
// compile-time fault (spec §4.6: "An unbalanced program is a
// compile-time fault").
func Compile(src string) (*Program, error) {
	ops := scan(src)
	ops = fuse(ops)
	if err := resolveBrackets(ops); err != nil {
		return nil, err
	}
	return &Program{ops: ops}, nil
}

// scan maps each CTL character to its raw (unfused, unresolved) op.
func scan(src string) []op {
	var out []op
	for _, c := range src {
		switch c {
		case '+':
			out = append(out, op{kind: opAdd, n: 1})
		case '-':
			out = append(out, op{kind: opAdd, n: -1})
		case '>':
			out = append(out, op{kind: opMov, n: 1})
		case '<':
			out = append(out, op{kind: opMov, n: -1})
		case '[':
			out = append(out, op{kind: opJmpIfZ})
		case ']':
			out = append(out, op{kind: opJmpIfNZ})
		case '.':
			out = append(out, op{kind: opPutchar})
		case ',':
			out = append(out, op{kind: opGetchar})
		default:
			continue
		}
	}
	return out
}

// fuse combines adjacent Add/Add and Mov/Mov runs into one counted op,
// per spec §4.6 and §8 property 5 (fusion must not change observable
// behavior vs. a naive one-op-per-character interpreter). A run that
// cancels out, e.g. "+-", still contributes an Add(0) rather than
// vanishing, since later ops are addressed by their position in the
// fused stream.
func fuse(ops []op) []op {
	if len(ops) == 0 {
		return ops
	}

	out := make([]op, 0, len(ops))
	out = append(out, ops[0])

	for _, o := range ops[1:] {
		last := &out[len(out)-1]
		switch {
		case last.kind == opAdd && o.kind == opAdd:
			last.n += o.n
		case last.kind == opMov && o.kind == opMov:
			last.n += o.n
		default:
			out = append(out, o)
		}
	}
	return out
}

// resolveBrackets matches every JmpIfZ to its JmpIfNZ (and vice versa)
// by scanning for the first same-depth partner, then stamps the
// resolved index into both ops' dest field.
func resolveBrackets(ops []op) error {
	var stack []int
	for i, o := range ops {
		switch o.kind {
		case opJmpIfZ:
			stack = append(stack, i)
		case opJmpIfNZ:
			if len(stack) == 0 {
				return cerr.New(cerr.FaultUnbalancedLoop, "unmatched ']'")
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			ops[open].dest = i
			ops[i].dest = open
		}
	}
	if len(stack) != 0 {
		return cerr.New(cerr.FaultUnbalancedLoop, "unmatched '['")
	}
	return nil
}

// Result is the outcome of a successful Execute.
type Result struct {
	Output string
	Steps  int
}

// Execute runs p against a fresh, zeroed TapeSize-byte tape. Semantics
// match spec §4.6 exactly: Add over/underflowing a cell and Mov
// stepping the head out of bounds are typed faults; Getchar is always
// an unimplemented fault (the design accommodates `,` syntactically
// but never wires real input, per spec §9's open question). On normal
// termination the tape is asserted fully zero (spec §8 property 1);
// a non-zero cell is reported as FaultTapeNotZero rather than panicking,
// so a caller can report it the same way as any other interpreter fault.
func Execute(p *Program) (*Result, error) {
	var tape [TapeSize]byte
	pc, mp, steps := 0, 0, 0

	var out strings.Builder

	for pc < len(p.ops) {
		o := p.ops[pc]
		switch o.kind {
		case opAdd:
			v := int(tape[mp]) + o.n
			if v > 255 {
				return nil, cerr.NewFault(cerr.FaultIntOverflow, "cell value exceeds 255", pc, mp)
			}
			if v < 0 {
				return nil, cerr.NewFault(cerr.FaultIntUnderflow, "cell value below 0", pc, mp)
			}
			tape[mp] = byte(v)

		case opMov:
			to := mp + o.n
			if to >= TapeSize {
				return nil, cerr.NewFault(cerr.FaultMemOverflow, "head moved past the end of the tape", pc, mp)
			}
			if to < 0 {
				return nil, cerr.NewFault(cerr.FaultMemUnderflow, "head moved before the start of the tape", pc, mp)
			}
			mp = to

		case opPutchar:
			out.WriteByte(tape[mp])

		case opGetchar:
			return nil, cerr.NewFault(cerr.FaultUnimplemented, "getchar is not implemented", pc, mp)

		case opJmpIfZ:
			if tape[mp] == 0 {
				pc = o.dest
			}

		case opJmpIfNZ:
			if tape[mp] != 0 {
				pc = o.dest
			}
		}

		pc++
		steps++
	}

	for _, b := range tape {
		if b != 0 {
			return nil, cerr.NewFault(cerr.FaultTapeNotZero, "tape is not fully zero at termination", pc, mp)
		}
	}

	return &Result{Output: out.String(), Steps: steps}, nil
}
