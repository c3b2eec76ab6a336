package main

import (
	"flag"
	"fmt"
	"os"

	"ctlc/internal/codegen"
	"ctlc/internal/irtext"
	"ctlc/internal/normalize"
	"ctlc/internal/repl"

	"github.com/fatih/color"
)

func main() {
	verbose := flag.Bool("v", false, "annotate emitted CTL with mnemonic comments")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: ctlc [-v] <file.ir>")
		fmt.Fprintln(os.Stderr, "       ctlc        (starts an interactive session)")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		repl.Start(os.Stdin, os.Stdout)
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	path := flag.Arg(0)

	f, err := irtext.ParseFile(path)
	if err != nil {
		// irtext.ParseFile has already printed a caret-pointed diagnostic.
		os.Exit(1)
	}

	m, err := irtext.ToModule(f)
	if err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}
	normalize.Run(m)

	emit := codegen.Emit
	if *verbose {
		emit = codegen.EmitVerbose
	}

	out, err := emit(m)
	if err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}

	fmt.Print(out)
}
