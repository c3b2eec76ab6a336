package layout

import (
	"testing"

	"ctlc/internal/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoFuncModule() *ir.Module {
	helper := &ir.Function{
		Name: "helper",
		Blocks: []*ir.BasicBlock{
			{Name: 0, Instructions: []ir.Instruction{&ir.Call{Dest: -1, Callee: "putchar", Args: []ir.Operand{ir.Const(66)}}}, Terminator: &ir.Ret{}},
		},
	}
	main := &ir.Function{
		Name: "main",
		Blocks: []*ir.BasicBlock{
			{
				Name: 0,
				Instructions: []ir.Instruction{
					&ir.Alloca{Dest: 0, Type: ir.TypeInt},
					&ir.Load{Dest: 1, Addr: ir.Local(0)},
				},
				Terminator: &ir.Ret{},
			},
		},
	}
	return &ir.Module{Functions: []*ir.Function{helper, main}}
}

func TestPlanBasics(t *testing.T) {
	m := twoFuncModule()
	l := Plan(m)

	assert.Equal(t, 2, l.FuncCount)
	assert.Equal(t, 1, l.MainIndex)

	mainFL := l.Funcs[1]
	assert.Equal(t, 1, mainFL.MaxReg)
	assert.Equal(t, 2, mainFL.ScratchBase)
	assert.Equal(t, 2+scratchMargin, mainFL.RegCount())

	helperFL := l.Funcs[0]
	assert.Equal(t, -1, helperFL.MaxReg)
	assert.Equal(t, 0, helperFL.ScratchBase)
}

func TestFrameWidthUniform(t *testing.T) {
	m := twoFuncModule()
	l := Plan(m)

	want := 1 + l.FuncCount + l.maxBlocks + l.maxRegs
	require.Equal(t, want, l.FrameWidth())
	assert.Greater(t, l.FrameWidth(), 0)
}

func TestOffsetsAreBalancedMotionBasis(t *testing.T) {
	m := twoFuncModule()
	l := Plan(m)

	// func offsets strictly increase with index, starting at 1
	assert.Equal(t, 1, l.FuncOffset(0))
	assert.Equal(t, 2, l.FuncOffset(1))

	// block offsets start right after the function mask
	assert.Equal(t, 1+l.FuncCount, l.BlockOffset(0))

	// register offsets start right after the block mask
	assert.Equal(t, 1+l.FuncCount+l.maxBlocks, l.RegOffset(0))
}
