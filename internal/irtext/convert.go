package irtext

import (
	"fmt"
	"strconv"
	"strings"

	"ctlc/internal/ir"
)

// ToModule converts a parsed File into an ir.Module.
func ToModule(f *File) (*ir.Module, error) {
	m := &ir.Module{}
	for _, fn := range f.Functions {
		conv, err := convertFunction(fn)
		if err != nil {
			return nil, err
		}
		m.Functions = append(m.Functions, conv)
	}
	return m, nil
}

func convertFunction(fn *FunctionDecl) (*ir.Function, error) {
	f := &ir.Function{Name: fn.Name, ReturnType: parseType(fn.Return)}
	for _, p := range fn.Params {
		f.Params = append(f.Params, ir.Parameter{Name: p.Name, Type: parseType(p.Type)})
	}
	for _, b := range fn.Blocks {
		blk, err := convertBlock(b)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		f.Blocks = append(f.Blocks, blk)
	}
	return f, nil
}

func parseType(s string) ir.Type {
	switch s {
	case "ptr":
		return ir.TypePointer
	case "i1":
		return ir.TypeBool
	default:
		return ir.TypeInt
	}
}

func convertBlock(b *BlockDecl) (*ir.BasicBlock, error) {
	blk := &ir.BasicBlock{Name: b.Name}
	for _, inst := range b.Instructions {
		ins, err := convertInstr(inst)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", b.Name, err)
		}
		blk.Instructions = append(blk.Instructions, ins)
	}
	term, err := convertTerm(b.Terminator)
	if err != nil {
		return nil, fmt.Errorf("block %d: %w", b.Name, err)
	}
	blk.Terminator = term
	return blk, nil
}

func convertInstr(in *InstrDecl) (ir.Instruction, error) {
	switch {
	case in.Alloca != nil:
		dest, err := register(in.Alloca.Dest)
		if err != nil {
			return nil, err
		}
		return &ir.Alloca{Dest: dest, Type: parseType(in.Alloca.Type)}, nil

	case in.Store != nil:
		v, err := operand(in.Store.Value)
		if err != nil {
			return nil, err
		}
		a, err := operand(in.Store.Addr)
		if err != nil {
			return nil, err
		}
		return &ir.Store{Value: v, Addr: a}, nil

	case in.Load != nil:
		dest, err := register(in.Load.Dest)
		if err != nil {
			return nil, err
		}
		a, err := operand(in.Load.Addr)
		if err != nil {
			return nil, err
		}
		return &ir.Load{Dest: dest, Addr: a}, nil

	case in.Add != nil:
		dest, err := register(in.Add.Dest)
		if err != nil {
			return nil, err
		}
		op0, err := operand(in.Add.Op0)
		if err != nil {
			return nil, err
		}
		op1, err := operand(in.Add.Op1)
		if err != nil {
			return nil, err
		}
		return &ir.Add{Dest: dest, Op0: op0, Op1: op1}, nil

	case in.ICmp != nil:
		dest, err := register(in.ICmp.Dest)
		if err != nil {
			return nil, err
		}
		pred, err := predicate(in.ICmp.Pred)
		if err != nil {
			return nil, err
		}
		op0, err := operand(in.ICmp.Op0)
		if err != nil {
			return nil, err
		}
		op1, err := operand(in.ICmp.Op1)
		if err != nil {
			return nil, err
		}
		return &ir.ICmp{Dest: dest, Pred: pred, Op0: op0, Op1: op1}, nil

	case in.Call != nil:
		dest := -1
		if in.Call.Dest != "" {
			d, err := register(in.Call.Dest)
			if err != nil {
				return nil, err
			}
			dest = d
		}
		var args []ir.Operand
		for _, a := range in.Call.Args {
			op, err := operand(a)
			if err != nil {
				return nil, err
			}
			args = append(args, op)
		}
		return &ir.Call{Dest: dest, Callee: in.Call.Callee, Args: args}, nil

	default:
		return nil, fmt.Errorf("empty instruction")
	}
}

func convertTerm(t *TermDecl) (ir.Terminator, error) {
	switch {
	case t.Br != nil:
		dest, err := blockRef(t.Br.Dest)
		if err != nil {
			return nil, err
		}
		return &ir.Br{Dest: dest}, nil

	case t.CondBr != nil:
		cond, err := operand(t.CondBr.Cond)
		if err != nil {
			return nil, err
		}
		tDest, err := blockRef(t.CondBr.TrueDest)
		if err != nil {
			return nil, err
		}
		fDest, err := blockRef(t.CondBr.FalseDest)
		if err != nil {
			return nil, err
		}
		return &ir.CondBr{Cond: cond, TrueDest: tDest, FalseDest: fDest}, nil

	case t.Ret != nil:
		if t.Ret.Value == nil {
			return &ir.Ret{}, nil
		}
		v, err := operand(t.Ret.Value)
		if err != nil {
			return nil, err
		}
		return &ir.Ret{Value: &v}, nil

	default:
		return nil, fmt.Errorf("empty terminator")
	}
}

func operand(o *OperandDecl) (ir.Operand, error) {
	if o.Register != nil {
		n, err := register(*o.Register)
		if err != nil {
			return ir.Operand{}, err
		}
		return ir.Local(n), nil
	}
	if o.Const != nil {
		if *o.Const < 0 || *o.Const > 255 {
			return ir.Operand{}, fmt.Errorf("constant %d out of 8-bit range", *o.Const)
		}
		return ir.Const(uint8(*o.Const)), nil
	}
	return ir.Operand{}, fmt.Errorf("empty operand")
}

func register(s string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(s, "%"))
}

func blockRef(s string) (int, error) {
	return strconv.Atoi(strings.TrimPrefix(s, "b"))
}

func predicate(s string) (ir.Predicate, error) {
	switch s {
	case "slt":
		return ir.SLT, nil
	case "eq":
		return ir.EQ, nil
	case "ne":
		return ir.NE, nil
	default:
		return 0, fmt.Errorf("unknown predicate %q", s)
	}
}
