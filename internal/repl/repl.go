// Package repl is an interactive loop over the same pipeline cmd/ctlc
// and internal/verifier drive: read a textual IR module, compile it,
// run it, print what it produced. Adapted from the teacher's
// single-line prompt loop to accumulate input across lines, since an
// IR module (one or more `function ... { ... }` declarations) rarely
// fits on one.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"ctlc/internal/codegen"
	"ctlc/internal/ctl"
	"ctlc/internal/irtext"
	"ctlc/internal/normalize"

	"github.com/fatih/color"
)

const Prompt = ">> "

// Start reads from in until EOF, echoing prompts and results to out.
// Input accumulates across lines until braces balance, at which point
// the buffered text is parsed as one module, compiled, and executed;
// the buffer then resets for the next module. A line consisting only
// of ":q" exits the loop early.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder
	depth := 0

	fmt.Fprint(out, Prompt)
	for scanner.Scan() {
		line := scanner.Text()
		if depth == 0 && strings.TrimSpace(line) == ":q" {
			return
		}

		buf.WriteString(line)
		buf.WriteByte('\n')
		depth += strings.Count(line, "{") - strings.Count(line, "}")

		if depth > 0 {
			fmt.Fprint(out, ".. ")
			continue
		}

		text := buf.String()
		buf.Reset()
		depth = 0
		if strings.TrimSpace(text) != "" {
			run(text, out)
		}
		fmt.Fprint(out, Prompt)
	}
}

func run(source string, out io.Writer) {
	f, err := irtext.ParseString("repl", source)
	if err != nil {
		// irtext.ParseString has already printed a caret-pointed diagnostic.
		return
	}

	m, err := irtext.ToModule(f)
	if err != nil {
		color.Red("%s", err)
		return
	}
	normalize.Run(m)

	src, err := codegen.Emit(m)
	if err != nil {
		color.Red("%s", err)
		return
	}

	prog, err := ctl.Compile(src)
	if err != nil {
		color.Red("%s", err)
		return
	}
	result, err := ctl.Execute(prog)
	if err != nil {
		color.Red("%s", err)
		return
	}

	fmt.Fprintf(out, "%s", result.Output)
	color.New(color.FgGreen).Fprintf(out, "\n(%d steps)\n", result.Steps)
}
