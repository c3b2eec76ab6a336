package ir

import (
	"fmt"
	"strings"
)

// Instruction is any non-terminator operation appearing in a BasicBlock's
// body. Implementations are tagged variants matched exhaustively at the
// lowering site (internal/codegen); an unrecognized variant is a fatal,
// non-recoverable abort (spec §7).
type Instruction interface {
	fmt.Stringer
	isInstruction()
}

// Alloca reserves a register cell of the given type and produces a pointer
// to it. Only 8-bit integer allocations are supported.
type Alloca struct {
	Dest int
	Type Type
}

func (*Alloca) isInstruction() {}
func (a *Alloca) String() string {
	return fmt.Sprintf("%%%d = alloca %s", a.Dest, a.Type)
}

// Store writes Value into the cell addressed by Addr.
type Store struct {
	Value Operand
	Addr  Operand
}

func (*Store) isInstruction() {}
func (s *Store) String() string {
	return fmt.Sprintf("store %s, %s", s.Value, s.Addr)
}

// Load reads the cell addressed by Addr into Dest.
type Load struct {
	Dest int
	Addr Operand
}

func (*Load) isInstruction() {}
func (l *Load) String() string {
	return fmt.Sprintf("%%%d = load %s", l.Dest, l.Addr)
}

// Add computes Op0 + Op1 and stores the result in Dest. The lowered CTL
// does not wrap: a sum above 255 makes internal/ctl fault with
// FaultIntOverflow.
type Add struct {
	Dest     int
	Op0, Op1 Operand
}

func (*Add) isInstruction() {}
func (a *Add) String() string {
	return fmt.Sprintf("%%%d = add %s, %s", a.Dest, a.Op0, a.Op1)
}

// ICmp compares Op0 against Op1 under Pred and stores a 0/1 result in Dest.
type ICmp struct {
	Dest     int
	Pred     Predicate
	Op0, Op1 Operand
}

func (*ICmp) isInstruction() {}
func (c *ICmp) String() string {
	return fmt.Sprintf("%%%d = icmp %s %s, %s", c.Dest, c.Pred, c.Op0, c.Op1)
}

// Call invokes Callee with Args. Dest is -1 when the call produces no
// value. A Call must be the last non-terminator instruction of its block
// after normalization (spec §4.1); it is special-cased for the "putchar"
// intrinsic.
type Call struct {
	Dest   int // -1 if void
	Callee string
	Args   []Operand
}

func (*Call) isInstruction() {}
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	if c.Dest < 0 {
		return fmt.Sprintf("call %s(%s)", c.Callee, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%%%d = call %s(%s)", c.Dest, c.Callee, strings.Join(args, ", "))
}

// Terminator ends a BasicBlock. Every block has exactly one.
type Terminator interface {
	fmt.Stringer
	isTerminator()
}

// Br is an unconditional branch to Dest.
type Br struct {
	Dest int
}

func (*Br) isTerminator() {}
func (b *Br) String() string { return fmt.Sprintf("br b%d", b.Dest) }

// CondBr branches to TrueDest if Cond is non-zero, else to FalseDest.
type CondBr struct {
	Cond               Operand
	TrueDest, FalseDest int
}

func (*CondBr) isTerminator() {}
func (c *CondBr) String() string {
	return fmt.Sprintf("br %s, b%d, b%d", c.Cond, c.TrueDest, c.FalseDest)
}

// Ret returns from the enclosing function, optionally with a value.
// Return values are otherwise unused by this compiler (only main, which
// takes no arguments and whose return value is unobserved, is a
// meaningful entry point) but are retained for IR fidelity.
type Ret struct {
	Value *Operand // nil if void
}

func (*Ret) isTerminator() {}
func (r *Ret) String() string {
	if r.Value == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", *r.Value)
}
