package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// CompileError is a structured, code-carrying abort raised by any stage
// of the pipeline (normalizer, layout planner, emitter). It implements
// the standard error interface so callers can use errors.As/errors.Is,
// and carries the function and block it was raised in; it holds no
// source position.
type CompileError struct {
	Code    string
	Message string
	Func    string // function name, if known
	Block   int    // block name, -1 if not applicable
}

func (e *CompileError) Error() string {
	loc := ""
	if e.Func != "" {
		if e.Block >= 0 {
			loc = fmt.Sprintf(" (in %s/b%d)", e.Func, e.Block)
		} else {
			loc = fmt.Sprintf(" (in %s)", e.Func)
		}
	}
	return fmt.Sprintf("[%s] %s%s", e.Code, e.Message, loc)
}

// New builds a CompileError with no location context.
func New(code, message string) *CompileError {
	return &CompileError{Code: code, Message: message, Block: -1}
}

// NewAt builds a CompileError scoped to a function and block.
func NewAt(code, message, function string, block int) *CompileError {
	return &CompileError{Code: code, Message: message, Func: function, Block: block}
}

// RuntimeFault is a typed interpreter failure (spec §4.6/§7). Unlike
// CompileError it carries no source location, since it is raised while
// executing already-emitted CTL against the tape.
type RuntimeFault struct {
	Code    string
	Message string
	PC, MP  int
}

func (f *RuntimeFault) Error() string {
	return fmt.Sprintf("[%s] %s (pc=%d, mp=%d)", f.Code, f.Message, f.PC, f.MP)
}

// NewFault builds a RuntimeFault.
func NewFault(code, message string, pc, mp int) *RuntimeFault {
	return &RuntimeFault{Code: code, Message: message, PC: pc, MP: mp}
}

// Reporter formats errors for terminal output, colored in the same style
// as the rest of this codebase's CLIs.
type Reporter struct {
	out strings.Builder
}

// NewReporter creates an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report appends a formatted, colored line for err and returns the full
// accumulated report so far.
func (r *Reporter) Report(err error) string {
	var line string
	switch e := err.(type) {
	case *CompileError:
		line = color.RedString("error[%s]: %s", e.Code, e.Error())
	case *RuntimeFault:
		line = color.RedString("fault[%s]: %s", e.Code, e.Error())
	default:
		line = color.RedString("error: %s", err.Error())
	}
	r.out.WriteString(line)
	r.out.WriteString("\n")
	return r.out.String()
}

// String returns everything reported so far.
func (r *Reporter) String() string {
	return r.out.String()
}
