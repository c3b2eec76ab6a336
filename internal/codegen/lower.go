package codegen

import (
	"strings"

	cerr "ctlc/internal/errors"
	"ctlc/internal/ir"
	"ctlc/internal/layout"
	"ctlc/internal/station"
)

// lowerBlock lowers a block's body in source order, then its terminator
// — unless a Call already consumed that responsibility, per spec
// §4.3/§4.4: a non-intrinsic Call arms the post-call destination's
// block mask itself, using the immediately-following Br's Dest, so that
// Br is never separately lowered (normalization guarantees every
// call-terminated block's terminator is exactly that Br).
func (e *Emitter) lowerBlock(fnIdx int, fl *layout.FuncLayout, f *ir.Function, blk *ir.BasicBlock) (string, error) {
	var b strings.Builder
	callConsumedTerm := false

	for _, inst := range blk.Instructions {
		if e.verbose {
			b.WriteString(describe(inst))
		}
		switch in := inst.(type) {
		case *ir.Alloca:
			if in.Type != ir.TypeInt {
				return "", cerr.NewAt(cerr.ErrUnsupportedAllocaType, "alloca of non-i8 type", f.Name, blk.Name)
			}
			// No code: the cell is simply reserved by the layout planner.

		case *ir.Store:
			s, err := e.lowerStore(fl, f, in, blk.Name)
			if err != nil {
				return "", err
			}
			b.WriteString(s)

		case *ir.Load:
			s, err := e.lowerLoad(fl, f, in, blk.Name)
			if err != nil {
				return "", err
			}
			b.WriteString(s)

		case *ir.Add:
			b.WriteString(e.lowerAdd(fl, in))

		case *ir.ICmp:
			s, err := e.lowerICmp(fl, in, f.Name, blk.Name)
			if err != nil {
				return "", err
			}
			b.WriteString(s)

		case *ir.Call:
			s, err := e.lowerCall(fl, f, in, blk)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			if in.Callee != "putchar" {
				callConsumedTerm = true
			}

		default:
			return "", cerr.NewAt(cerr.ErrUnsupportedInstruction, "unsupported instruction kind", f.Name, blk.Name)
		}
	}

	if !callConsumedTerm {
		if e.verbose {
			b.WriteString(describe(blk.Terminator))
		}
		s, err := e.lowerTerminator(fnIdx, fl, f, blk, blk.Terminator)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}

	return b.String(), nil
}

// lowerStore implements spec §4.4's Store rule: if value is constant,
// clear addr and write the constant; if value is local, clear addr
// then destructively move the source register in (acceptable because
// store operands are SSA-unique). addr resolving to a same-function
// Alloca is the required fast path; a pointer this compiler cannot
// trace statically falls back to the dynamic StoreInd scan.
func (e *Emitter) lowerStore(fl *layout.FuncLayout, f *ir.Function, s *ir.Store, blockName int) (string, error) {
	destReg, ok := allocaReg(f, s.Addr)
	if !ok {
		return e.lowerStoreIndirect(fl, f, s, blockName)
	}

	dest := e.reg(destReg)
	if s.Value.IsConst() {
		return station.StoreImm(s.Value.ConstValue(), e.rel(dest)), nil
	}
	return station.Move(e.rel(e.reg(s.Value.Name())), e.rel(dest)), nil
}

// lowerStoreIndirect handles a Store whose address was not resolved to
// a single Alloca at compile time (spec §9 supplemented feature: full
// pointer generality via the §4.5 train-station primitive), scanning
// every Alloca in f as a candidate target.
func (e *Emitter) lowerStoreIndirect(fl *layout.FuncLayout, f *ir.Function, s *ir.Store, blockName int) (string, error) {
	if s.Addr.IsConst() {
		return "", cerr.NewAt(cerr.ErrUnsupportedStoreSource, "store address must be a pointer value, not a constant", f.Name, blockName)
	}
	allocas := allocaRegs(f)
	if len(allocas) == 0 {
		return "", cerr.NewAt(cerr.ErrUnsupportedInstruction, "store address does not resolve to any alloca", f.Name, blockName)
	}

	p := e.reg(s.Addr.Name())
	v := e.scratch(fl, 7)
	tmp := e.scratch(fl, 8)

	var b strings.Builder
	b.WriteString(e.materialize(s.Value, v, tmp))
	reg := func(i int) int { return e.rel(e.reg(allocas[i])) }
	b.WriteString(station.StoreInd(len(allocas), reg, e.rel(v), e.rel(p), e.indirectScratch(fl)))
	return b.String(), nil
}

// lowerLoad implements spec §4.4's Load rule literally: duplicate addr
// into dest and a scratch cell, then restore addr from scratch — which
// is exactly station.Copy's contract.
func (e *Emitter) lowerLoad(fl *layout.FuncLayout, f *ir.Function, l *ir.Load, blockName int) (string, error) {
	srcReg, ok := allocaReg(f, l.Addr)
	if !ok {
		return e.lowerLoadIndirect(fl, f, l, blockName)
	}

	src := e.reg(srcReg)
	dest := e.reg(l.Dest)
	tmp := e.scratch(fl, 0)
	return station.Copy(e.rel(src), e.rel(dest), e.rel(tmp)), nil
}

func (e *Emitter) lowerLoadIndirect(fl *layout.FuncLayout, f *ir.Function, l *ir.Load, blockName int) (string, error) {
	if l.Addr.IsConst() {
		return "", cerr.NewAt(cerr.ErrUnsupportedInstruction, "load address must be a pointer value, not a constant", f.Name, blockName)
	}
	allocas := allocaRegs(f)
	if len(allocas) == 0 {
		return "", cerr.NewAt(cerr.ErrUnsupportedInstruction, "load address does not resolve to any alloca", f.Name, blockName)
	}

	p := e.reg(l.Addr.Name())
	dest := e.reg(l.Dest)
	reg := func(i int) int { return e.rel(e.reg(allocas[i])) }
	return station.LoadInd(len(allocas), reg, e.rel(p), e.rel(dest), e.indirectScratch(fl)), nil
}

// indirectScratch lays out the seven working cells LoadInd/StoreInd
// need within the function's scratch margin.
func (e *Emitter) indirectScratch(fl *layout.FuncLayout) station.Scratch {
	return station.Scratch{
		Remaining: e.rel(e.scratch(fl, 0)),
		Found:     e.rel(e.scratch(fl, 1)),
		TempA:     e.rel(e.scratch(fl, 2)),
		FlagA:     e.rel(e.scratch(fl, 3)),
		TempB:     e.rel(e.scratch(fl, 4)),
		FlagB:     e.rel(e.scratch(fl, 5)),
		VCopy:     e.rel(e.scratch(fl, 6)),
	}
}

// lowerAdd implements spec §4.4's Add rule, generalized to either
// operand being constant or local (the required suite only exercises
// "at least one constant", which this subsumes): copy/store op0 into
// dest, then accumulate op1 into it.
func (e *Emitter) lowerAdd(fl *layout.FuncLayout, a *ir.Add) string {
	dest := e.reg(a.Dest)
	var b strings.Builder

	if a.Op0.IsConst() {
		b.WriteString(station.StoreImm(a.Op0.ConstValue(), e.rel(dest)))
	} else {
		tmp := e.scratch(fl, 0)
		b.WriteString(station.Copy(e.rel(e.reg(a.Op0.Name())), e.rel(dest), e.rel(tmp)))
	}

	if a.Op1.IsConst() {
		b.WriteString(station.AddImm(a.Op1.ConstValue(), e.rel(dest)))
	} else {
		// Add consumes its source, so accumulate a throwaway copy rather
		// than op1's own register: unlike Store, an Add operand is not
		// necessarily at its last use.
		op1Copy := e.scratch(fl, 1)
		tmp1 := e.scratch(fl, 2)
		b.WriteString(station.Copy(e.rel(e.reg(a.Op1.Name())), e.rel(op1Copy), e.rel(tmp1)))
		b.WriteString(station.Add(e.rel(op1Copy), e.rel(dest)))
	}

	return b.String()
}

// lowerICmp materializes both operands into dedicated scratch cells
// (preserving the source registers, which SSA may still need later),
// dispatches to the matching station predicate, then force-clears the
// materialized cells: SLT consumes both of its operands, but EQ/NE
// preserve both inputs entirely, so after EQ/NE the materialized cells
// would otherwise break the scratch-rests-at-zero invariant every other
// primitive in this package upholds.
func (e *Emitter) lowerICmp(fl *layout.FuncLayout, c *ir.ICmp, fnName string, blockName int) (string, error) {
	dest := e.reg(c.Dest)
	a := e.scratch(fl, 8)
	bCell := e.scratch(fl, 9)
	tmp := e.scratch(fl, 10)

	var buf strings.Builder
	buf.WriteString(e.materialize(c.Op0, a, tmp))
	buf.WriteString(e.materialize(c.Op1, bCell, tmp))

	cs := e.cmpScratch(fl)

	switch c.Pred {
	case ir.SLT:
		buf.WriteString(station.SLT(e.rel(a), e.rel(bCell), e.rel(dest), cs))
	case ir.EQ:
		buf.WriteString(station.EQ(e.rel(a), e.rel(bCell), e.rel(dest), cs))
	case ir.NE:
		buf.WriteString(station.NE(e.rel(a), e.rel(bCell), e.rel(dest), cs))
	default:
		return "", cerr.NewAt(cerr.ErrUnsupportedPredicate, "unsupported icmp predicate", fnName, blockName)
	}

	buf.WriteString(station.ClearImm(e.rel(a)))
	buf.WriteString(station.ClearImm(e.rel(bCell)))
	return buf.String(), nil
}

// cmpScratch lays out the eight working cells ICmp's SLT/EQ/NE
// templates share.
func (e *Emitter) cmpScratch(fl *layout.FuncLayout) station.CmpScratch {
	return station.CmpScratch{
		Temp:   e.rel(e.scratch(fl, 0)),
		Flag:   e.rel(e.scratch(fl, 1)),
		CopyA1: e.rel(e.scratch(fl, 2)),
		CopyB1: e.rel(e.scratch(fl, 3)),
		CopyA2: e.rel(e.scratch(fl, 4)),
		CopyB2: e.rel(e.scratch(fl, 5)),
		Sum:    e.rel(e.scratch(fl, 6)),
		Or:     e.rel(e.scratch(fl, 7)),
	}
}

// lowerCall implements spec §4.4's Call rule. putchar is the one
// intrinsic: its constant argument is materialized into scratch and
// `.` emitted, with no frame change. Every other call must name a
// known, argument-less function and be immediately followed by an
// unconditional Br (normalization's call-terminates-block invariant);
// that Br's Dest is armed in the caller's frame before the one-way
// frame-width advance, and the callee's frame is then initialized.
func (e *Emitter) lowerCall(fl *layout.FuncLayout, f *ir.Function, c *ir.Call, blk *ir.BasicBlock) (string, error) {
	if c.Callee == "putchar" {
		return e.lowerPutchar(fl, c, f.Name, blk.Name)
	}

	calleeIdx, ok := e.funcIndex[c.Callee]
	if !ok {
		return "", cerr.NewAt(cerr.ErrUnknownCallee, "call to undefined function "+c.Callee, f.Name, blk.Name)
	}
	if len(c.Args) != 0 {
		return "", cerr.NewAt(cerr.ErrUnsupportedParameters, "calls to user functions do not support arguments", f.Name, blk.Name)
	}

	br, ok := blk.Terminator.(*ir.Br)
	if !ok {
		return "", cerr.NewAt(cerr.ErrCallTerminatorNotBr, "call is not followed by an unconditional branch", f.Name, blk.Name)
	}

	var b strings.Builder
	b.WriteString(station.AddImm(1, e.rel(e.blockOffset(fl, br.Dest))))
	b.WriteString(e.frameShift(true))
	b.WriteString(station.StoreImm(1, e.rel(0)))
	b.WriteString(station.StoreImm(1, e.rel(e.l.FuncOffset(calleeIdx))))
	b.WriteString(station.StoreImm(1, e.rel(e.l.BlockOffset(0))))
	return b.String(), nil
}

func (e *Emitter) lowerPutchar(fl *layout.FuncLayout, c *ir.Call, fnName string, blockName int) (string, error) {
	if len(c.Args) != 1 {
		return "", cerr.NewAt(cerr.ErrUnsupportedInstruction, "putchar requires exactly one argument", fnName, blockName)
	}
	arg := c.Args[0]
	if !arg.IsConst() {
		return "", cerr.NewAt(cerr.ErrNonConstantPutchar, "putchar argument must be a compile-time constant", fnName, blockName)
	}

	origin := e.cursor
	tmp := e.scratch(fl, 0)

	var b strings.Builder
	b.WriteString(e.move(tmp))
	b.WriteString("[-]")
	b.WriteString(strings.Repeat("+", int(arg.ConstValue())))
	b.WriteString(".")
	b.WriteString("[-]")
	b.WriteString(e.move(origin))
	return b.String(), nil
}

// lowerTerminator dispatches to the Br/CondBr/Ret rules of spec §4.4.
func (e *Emitter) lowerTerminator(fnIdx int, fl *layout.FuncLayout, f *ir.Function, blk *ir.BasicBlock, term ir.Terminator) (string, error) {
	switch t := term.(type) {
	case *ir.Br:
		return e.lowerBr(fl, t), nil
	case *ir.CondBr:
		return e.lowerCondBr(fl, t), nil
	case *ir.Ret:
		return e.lowerRet(fnIdx), nil
	default:
		return "", cerr.NewAt(cerr.ErrUnsupportedInstruction, "unsupported terminator kind", f.Name, blk.Name)
	}
}

// lowerBr arms dest's block mask in the current frame.
func (e *Emitter) lowerBr(fl *layout.FuncLayout, br *ir.Br) string {
	return station.AddImm(1, e.rel(e.blockOffset(fl, br.Dest)))
}

// lowerCondBr implements the "if/else via two loops" pattern: cond is
// materialized into two independent copies (Bitcast consumes its
// source, so a single shared copy could not feed both arms), reduced
// to a "truthy" guard and its complement, and each guard conditionally
// arms its destination's block mask via station.IfOnce.
func (e *Emitter) lowerCondBr(fl *layout.FuncLayout, c *ir.CondBr) string {
	condA := e.scratch(fl, 0)
	condB := e.scratch(fl, 1)
	bit := e.scratch(fl, 2)
	notBit := e.scratch(fl, 3)
	tmp := e.scratch(fl, 4)

	var b strings.Builder
	b.WriteString(e.materialize(c.Cond, condA, tmp))
	b.WriteString(e.materialize(c.Cond, condB, tmp))
	b.WriteString(station.Bitcast(e.rel(condA), e.rel(bit)))
	b.WriteString(station.Not(e.rel(condB), e.rel(notBit)))

	armTrue := station.AddImm(1, e.rel(e.blockOffset(fl, c.TrueDest)))
	armFalse := station.AddImm(1, e.rel(e.blockOffset(fl, c.FalseDest)))

	b.WriteString(station.IfOnce(e.rel(bit), armTrue))
	b.WriteString(station.IfOnce(e.rel(notBit), armFalse))
	return b.String()
}

// lowerRet clears the entry flag and the current function's mask cell,
// then retreats one frame width. The current block's own mask cell is
// already 0 (the dispatch loop's `[-` cleared it on entry), and live
// registers are the calling function's responsibility to have already
// consumed by the time it returns (spec §4.2: "register cells ...
// must be zero again before frame destruction").
func (e *Emitter) lowerRet(fnIdx int) string {
	var b strings.Builder
	b.WriteString(station.ClearImm(e.rel(0)))
	b.WriteString(station.ClearImm(e.rel(e.l.FuncOffset(fnIdx))))
	b.WriteString(e.frameShift(false))
	return b.String()
}
