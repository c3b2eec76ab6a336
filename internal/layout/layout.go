// Package layout computes the per-module, per-function tape layout
// described in spec §4.2: the function count F, each function's block
// count B_f and register count R_f, and the head-motion offsets that let
// the code emitter address any virtual register, block-mask cell, or
// function-mask cell from the frame's entry flag.
//
// Per spec §9 ("Keep the frame width uniform across functions") every
// frame on the tape has the same width, computed from the *maximum*
// block and register counts across all functions, so `>^W`/`<^W` are
// fixed constants usable by both Call (pushing a new frame) and Ret
// (popping one) regardless of which function owns which frame.
package layout

import (
	"ctlc/internal/ir"
)

// scratchMargin is the number of extra cells reserved past the highest
// SSA register number for instruction lowering's working cells. The
// largest consumer is ICmp (station.CmpScratch's eight cells plus the
// two materialized operand copies and their shared Copy scratch),
// which needs eleven simultaneously-live cells; twelve leaves one
// spare without meaningfully widening every frame on the tape.
const scratchMargin = 12

// FuncLayout is the per-function slice of the module-wide layout.
type FuncLayout struct {
	Name       string
	Index      int
	BlockIndex map[int]int // block name -> 0-based index within the function
	BlockNames []int       // index -> block name, inverse of BlockIndex
	MaxReg     int         // highest SSA value number used by this function
	ScratchBase int        // first scratch cell (relative to register base)
}

// RegCount returns how many register cells this function alone needs
// (before uniform widening across the module).
func (fl *FuncLayout) RegCount() int {
	return fl.ScratchBase + scratchMargin
}

// Layout is the complete module-wide tape plan.
type Layout struct {
	FuncCount int
	MainIndex int
	Funcs     []*FuncLayout

	maxBlocks int
	maxRegs   int
}

// FrameWidth is the fixed width, in cells, of every activation frame:
// 1 (entry flag) + FuncCount (function mask) + maxBlocks (block mask) +
// maxRegs (registers + scratch).
func (l *Layout) FrameWidth() int {
	return 1 + l.FuncCount + l.maxBlocks + l.maxRegs
}

// FuncOffset returns the head motion (in cells, from a frame's entry
// flag) to reach the function-mask cell for function index i.
func (l *Layout) FuncOffset(i int) int {
	return 1 + i
}

// BlockOffset returns the head motion to reach the block-mask cell for
// block index b (within whichever function is active).
func (l *Layout) BlockOffset(b int) int {
	return 1 + l.FuncCount + b
}

// RegOffset returns the head motion to reach register cell r (within
// whichever function is active).
func (l *Layout) RegOffset(r int) int {
	return 1 + l.FuncCount + l.maxBlocks + r
}

// Plan computes the layout for an entire (already normalized) module.
func Plan(m *ir.Module) *Layout {
	l := &Layout{FuncCount: len(m.Functions)}

	for i, f := range m.Functions {
		fl := &FuncLayout{
			Name:       f.Name,
			Index:      i,
			BlockIndex: make(map[int]int, len(f.Blocks)),
			BlockNames: make([]int, len(f.Blocks)),
		}
		if f.Name == "main" {
			l.MainIndex = i
		}

		for bi, b := range f.Blocks {
			fl.BlockIndex[b.Name] = bi
			fl.BlockNames[bi] = b.Name
		}

		fl.MaxReg = maxRegister(f)
		fl.ScratchBase = fl.MaxReg + 1

		l.Funcs = append(l.Funcs, fl)

		if len(f.Blocks) > l.maxBlocks {
			l.maxBlocks = len(f.Blocks)
		}
		if fl.RegCount() > l.maxRegs {
			l.maxRegs = fl.RegCount()
		}
	}

	return l
}

// maxRegister finds the highest SSA value number produced by any
// instruction in f (Alloca, Load, Add, ICmp; Call's Dest when non-void).
// Returns -1 if the function produces no values.
func maxRegister(f *ir.Function) int {
	max := -1
	track := func(n int) {
		if n > max {
			max = n
		}
	}
	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			switch i := inst.(type) {
			case *ir.Alloca:
				track(i.Dest)
			case *ir.Load:
				track(i.Dest)
			case *ir.Add:
				track(i.Dest)
			case *ir.ICmp:
				track(i.Dest)
			case *ir.Call:
				if i.Dest >= 0 {
					track(i.Dest)
				}
			}
		}
	}
	return max
}
