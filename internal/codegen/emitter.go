// Package codegen lowers a normalized, laid-out module into CTL source,
// per spec §4.3 (dispatch loop) and §4.4 (instruction lowering).
package codegen

import (
	"fmt"
	"strings"

	cerr "ctlc/internal/errors"
	"ctlc/internal/ir"
	"ctlc/internal/layout"
	"ctlc/internal/station"
)

// Emitter walks the dispatch-loop scaffolding described in spec §4.3,
// tracking the head's current offset from whatever frame's entry flag
// is under it. Every station call below is addressed relative to that
// offset (cursor), not to the frame origin directly, because the
// dispatch loop parks the head at a function- or block-mask cell for
// the lifetime of its loop rather than returning to the entry flag
// after each step.
//
// A Call's one-way frame-width head shift and Ret's one-way retreat
// both preserve cursor's numeric value: since every frame has the same
// width, whatever offset the head sat at within the old frame is
// exactly the offset it lands on within the new one. No explicit reset
// is needed at a call boundary — only the change of *which* frame
// cursor measures against, which the emitted CTL text itself encodes
// implicitly by being shared across all frames.
type Emitter struct {
	l         *layout.Layout
	cursor    int
	funcIndex map[string]int
	verbose   bool
}

// Emit lowers m into CTL source.
func Emit(m *ir.Module) (string, error) {
	return emit(m, false)
}

// EmitVerbose lowers m into CTL source the same way Emit does, but
// precedes each instruction and terminator's emitted text with a
// `// `-prefixed mnemonic line (spec SPEC_FULL.md supplemented feature
// #2, mirroring bfcc.rs's Op::pretty_print). The comment is inert: the
// interpreter (internal/ctl) drops any character outside +-><.,[], so
// this output still executes identically to Emit's.
func EmitVerbose(m *ir.Module) (string, error) {
	return emit(m, true)
}

func emit(m *ir.Module, verbose bool) (string, error) {
	l := layout.Plan(m)
	e := &Emitter{l: l, funcIndex: make(map[string]int, len(m.Functions)), verbose: verbose}
	for i, f := range m.Functions {
		e.funcIndex[f.Name] = i
		if len(f.Params) != 0 {
			return "", cerr.NewAt(cerr.ErrUnsupportedParameters, "functions with parameters are not supported", f.Name, -1)
		}
	}

	var b strings.Builder
	// spec §4.3's dispatch-loop pseudocode opens with "(advance to frame
	// 0)" before any initialization, matching bfcc.rs's compile(), which
	// writes a `">".repeat(16)` "first frame" motion ahead of its
	// __FRAME__ENTRY__ init. Frame 0 therefore lives one frame-width into
	// the tape, not at absolute 0: the leading cell is reserved pad, so
	// main's own Ret (a bare frameShift(false) like any other function's)
	// retreats into that pad instead of underflowing the tape. frameShift
	// doesn't change cursor's numeric value by design (every frame has
	// the same width), so cursor is still 0 — now meaning "frame 0's
	// entry flag" rather than "absolute cell 0" — after this motion.
	b.WriteString(e.frameShift(true))
	b.WriteString(e.prologue())

	body, err := e.dispatchLoop(m)
	if err != nil {
		return "", err
	}
	b.WriteString(body)
	return b.String(), nil
}

// describe renders s's mnemonic as an inert comment line, for verbose
// output. ir String() forms separate operands with commas, and ',' is a
// CTL opcode, so every CTL opcode character is dropped from the text
// before it is emitted; TestMnemonicsContainNoCTLChars checks that the
// resulting line carries none of them.
func describe(s fmt.Stringer) string {
	text := strings.Map(func(c rune) rune {
		if strings.ContainsRune("+-><.,[]", c) {
			return -1
		}
		return c
	}, s.String())
	return "// " + text + "\n"
}

// rel converts an absolute (frame-relative) offset into one relative to
// the current cursor, for handing to a self-returning station call.
func (e *Emitter) rel(abs int) int {
	return abs - e.cursor
}

// move shifts cursor to an arbitrary new frame-relative offset, for the
// dispatch loop's own goto_func/goto_block navigation. Unlike the
// station primitives, this motion is not self-returning by design: the
// bracket loops it opens need the head parked on the mask cell they
// test.
func (e *Emitter) move(target int) string {
	s := station.MoveHead(e.cursor, target)
	e.cursor = target
	return s
}

// frameShift emits the one-way `>`/`<` run that pushes or pops an
// activation frame. Because every frame has identical width, this does
// not change cursor's numeric value: it still measures the same offset
// into whichever frame the head now occupies.
func (e *Emitter) frameShift(forward bool) string {
	w := e.l.FrameWidth()
	if forward {
		return strings.Repeat(">", w)
	}
	return strings.Repeat("<", w)
}

// prologue initializes frame 0: entry flag set, main's function mask
// set, its entry block's mask set.
func (e *Emitter) prologue() string {
	var b strings.Builder
	b.WriteString(station.StoreImm(1, e.rel(0)))
	b.WriteString(station.StoreImm(1, e.rel(e.l.FuncOffset(e.l.MainIndex))))
	b.WriteString(station.StoreImm(1, e.rel(e.l.BlockOffset(0))))
	return b.String()
}

// dispatchLoop emits the shared outer/function/block nested loop
// structure described in spec §4.3. It is written once; every frame on
// the tape, of whatever function, is driven by this single piece of
// text as the head moves between frames via Call/Ret.
func (e *Emitter) dispatchLoop(m *ir.Module) (string, error) {
	var b strings.Builder

	b.WriteString(e.move(0))
	b.WriteString("[")

	for i, f := range m.Functions {
		fl := e.l.Funcs[i]

		b.WriteString(e.move(e.l.FuncOffset(i)))
		b.WriteString("[")

		for bi, blk := range f.Blocks {
			b.WriteString(e.move(e.l.BlockOffset(bi)))
			b.WriteString("[-")

			body, err := e.lowerBlock(i, fl, f, blk)
			if err != nil {
				return "", err
			}
			b.WriteString(body)

			b.WriteString(e.move(e.l.BlockOffset(bi)))
			b.WriteString("]")
		}

		b.WriteString(e.move(e.l.FuncOffset(i)))
		b.WriteString("]")
	}

	b.WriteString(e.move(0))
	b.WriteString("]")
	return b.String(), nil
}

// scratch returns the absolute (frame-relative) offset of scratch cell
// k (0-based) for the function described by fl.
func (e *Emitter) scratch(fl *layout.FuncLayout, k int) int {
	return e.l.RegOffset(fl.ScratchBase + k)
}

// reg returns the absolute offset of SSA register r.
func (e *Emitter) reg(r int) int {
	return e.l.RegOffset(r)
}

// blockOffset returns the absolute offset of the block-mask cell for
// the block named name within fl's function. Br/CondBr/Call carry a
// block *name* (unique within the function but not necessarily its
// position in source order, since normalization can prepend or insert
// blocks), so every branch target must be translated through fl's
// name-to-index table before reaching layout.Layout.BlockOffset, which
// expects a positional index.
func (e *Emitter) blockOffset(fl *layout.FuncLayout, name int) int {
	return e.l.BlockOffset(fl.BlockIndex[name])
}

// materialize returns CTL that leaves op's runtime value in scratch
// cell dst (cleared first, if constant) or copied there via tmp
// (preserving the source register), whether op is a constant or local.
func (e *Emitter) materialize(op ir.Operand, dst, tmp int) string {
	if op.IsConst() {
		return station.StoreImm(op.ConstValue(), e.rel(dst))
	}
	return station.Copy(e.rel(e.reg(op.Name())), e.rel(dst), e.rel(tmp))
}

// allocaReg finds the register number that op.Addr's Alloca instruction
// reserved within f, i.e. resolves a Store/Load address operand to a
// concrete cell at compile time. Every address in the required
// instruction subset (spec §4.4) traces to a same-function Alloca, so
// this always succeeds for well-formed input; ok is false only for a
// pointer this compiler cannot resolve statically (e.g. one returned
// from a Call), which the caller then lowers through the dynamic
// LoadInd/StoreInd scan.
func allocaReg(f *ir.Function, addr ir.Operand) (int, bool) {
	if addr.IsConst() {
		return 0, false
	}
	for _, blk := range f.Blocks {
		for _, inst := range blk.Instructions {
			if a, ok := inst.(*ir.Alloca); ok && a.Dest == addr.Name() {
				return a.Dest, true
			}
		}
	}
	return 0, false
}

// allocaRegs lists the register numbers of every Alloca in f, in source
// order — the candidate set for dynamic (LoadInd/StoreInd) indirection
// when an address cannot be resolved to a single Alloca at compile
// time.
func allocaRegs(f *ir.Function) []int {
	var out []int
	for _, blk := range f.Blocks {
		for _, inst := range blk.Instructions {
			if a, ok := inst.(*ir.Alloca); ok {
				out = append(out, a.Dest)
			}
		}
	}
	return out
}
