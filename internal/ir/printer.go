package ir

import (
	"fmt"
	"strings"
)

// Printer provides indented pretty-printing of a Module for debugging
// and tests.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a fresh Printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print returns the textual representation of an entire module.
func Print(m *Module) string {
	p := NewPrinter()
	p.printModule(m)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printModule(m *Module) {
	for _, f := range m.Functions {
		p.printFunction(f)
		p.writeLine("")
	}
}

func (p *Printer) printFunction(f *Function) {
	params := make([]string, len(f.Params))
	for i, param := range f.Params {
		params[i] = fmt.Sprintf("%s: %s", param.Name, param.Type)
	}
	p.writeLine("func %s(%s) -> %s {", f.Name, strings.Join(params, ", "), f.ReturnType)
	p.indent++
	for _, b := range f.Blocks {
		p.printBlock(b)
	}
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printBlock(b *BasicBlock) {
	p.writeLine("b%d:", b.Name)
	p.indent++
	for _, inst := range b.Instructions {
		p.writeLine("%s", inst.String())
	}
	if b.Terminator != nil {
		p.writeLine("%s", b.Terminator.String())
	}
	p.indent--
}
