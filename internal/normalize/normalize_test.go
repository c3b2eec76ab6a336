package normalize

import (
	"testing"

	"ctlc/internal/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callModule() *ir.Module {
	// b0: alloca; call putchar(65); store; call putchar(66); ret
	// A deliberately messy block with two calls, neither block-final.
	b0 := &ir.BasicBlock{
		Name: 0,
		Instructions: []ir.Instruction{
			&ir.Alloca{Dest: 0, Type: ir.TypeInt},
			&ir.Call{Dest: -1, Callee: "putchar", Args: []ir.Operand{ir.Const(65)}},
			&ir.Store{Value: ir.Const(1), Addr: ir.Local(0)},
			&ir.Call{Dest: -1, Callee: "putchar", Args: []ir.Operand{ir.Const(66)}},
		},
		Terminator: &ir.Ret{},
	}
	f := &ir.Function{Name: "main", ReturnType: ir.TypeInt, Blocks: []*ir.BasicBlock{b0}}
	return &ir.Module{Functions: []*ir.Function{f}}
}

func TestSplitCallBlocks(t *testing.T) {
	m := callModule()
	Run(m)

	require.NoError(t, Validate(m))

	f := m.FuncByName("main")
	// Original block splits into three: up to+incl first call, up to+incl
	// second call, and the trailing ret. Plus the entry-exclusion block
	// since the (new) entry contains a call.
	require.GreaterOrEqual(t, len(f.Blocks), 3)

	entry := f.Entry()
	assert.False(t, entry.HasCall(), "entry block must never contain a call")

	for _, b := range f.Blocks {
		idx := b.CallIndex()
		if idx < 0 {
			continue
		}
		assert.Equal(t, len(b.Instructions)-1, idx, "call must be block-final")
		_, isBr := b.Terminator.(*ir.Br)
		assert.True(t, isBr, "block ending in call must terminate with Br")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	m := callModule()
	Run(m)
	first := ir.Print(m)

	Run(m) // second application should change nothing
	second := ir.Print(m)

	assert.Equal(t, first, second)
}

func TestNormalizeNoCallsUnchanged(t *testing.T) {
	b0 := &ir.BasicBlock{
		Name:         0,
		Instructions: []ir.Instruction{&ir.Alloca{Dest: 0, Type: ir.TypeInt}},
		Terminator:   &ir.Ret{},
	}
	f := &ir.Function{Name: "main", Blocks: []*ir.BasicBlock{b0}}
	m := &ir.Module{Functions: []*ir.Function{f}}

	Run(m)
	require.NoError(t, Validate(m))
	assert.Len(t, f.Blocks, 1)
}
