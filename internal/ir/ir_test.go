package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionNextBlockName(t *testing.T) {
	f := &Function{Blocks: []*BasicBlock{{Name: 0}, {Name: 3}, {Name: 1}}}
	assert.Equal(t, 4, f.NextBlockName())
}

func TestFunctionNextBlockNameEmpty(t *testing.T) {
	f := &Function{}
	assert.Equal(t, 0, f.NextBlockName())
}

func TestBasicBlockCallIndex(t *testing.T) {
	b := &BasicBlock{Instructions: []Instruction{
		&Alloca{Dest: 0, Type: TypeInt},
		&Call{Dest: -1, Callee: "putchar", Args: []Operand{Const(65)}},
		&Store{Value: Const(1), Addr: Local(0)},
	}}
	require.True(t, b.HasCall())
	assert.Equal(t, 1, b.CallIndex())
}

func TestBasicBlockNoCall(t *testing.T) {
	b := &BasicBlock{Instructions: []Instruction{&Alloca{Dest: 0, Type: TypeInt}}}
	assert.False(t, b.HasCall())
	assert.Equal(t, -1, b.CallIndex())
}

func TestOperandString(t *testing.T) {
	assert.Equal(t, "42", Const(42).String())
	assert.Equal(t, "%7", Local(7).String())
}

func TestModuleFuncByName(t *testing.T) {
	main := &Function{Name: "main"}
	m := &Module{Functions: []*Function{main}}
	require.Same(t, main, m.FuncByName("main"))
	assert.Nil(t, m.FuncByName("missing"))
}

func TestPrintModule(t *testing.T) {
	m := &Module{Functions: []*Function{
		{
			Name:       "main",
			ReturnType: TypeInt,
			Blocks: []*BasicBlock{
				{
					Name: 0,
					Instructions: []Instruction{
						&Call{Dest: -1, Callee: "putchar", Args: []Operand{Const(72)}},
					},
					Terminator: &Ret{},
				},
			},
		},
	}}

	out := Print(m)
	assert.Contains(t, out, "func main()")
	assert.Contains(t, out, "b0:")
	assert.Contains(t, out, "call putchar")
	assert.Contains(t, out, "ret")
}
