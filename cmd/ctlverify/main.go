package main

import (
	"fmt"
	"os"

	"ctlc/internal/verifier"

	"github.com/fatih/color"
)

func main() {
	names := os.Args[1:]

	r := verifier.NewRunner(names)
	reports, err := r.RunAll()
	if err != nil {
		color.Red("%s", err)
		os.Exit(1)
	}

	color.New(color.FgBlue, color.ReverseVideo).Println(" test -O0 no opt ")
	printSuite(reports, "o0")

	color.New(color.FgBlue, color.ReverseVideo).Println(" test -O1 opt level 1 ")
	printSuite(reports, "o1")

	var failed int
	for _, rep := range reports {
		if rep.Outcome == verifier.Fail {
			failed++
		}
	}
	fmt.Printf("%d/%d checks failed\n", failed, len(reports))
}

func printSuite(reports []verifier.Report, suite string) {
	var subset []verifier.Report
	for _, rep := range reports {
		if rep.Suite == suite {
			subset = append(subset, rep)
		}
	}
	verifier.Print(subset)
}
