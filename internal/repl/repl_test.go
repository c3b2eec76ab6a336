package repl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartRunsACompleteModule(t *testing.T) {
	in := strings.NewReader("function main() {\nblock 0:\n  call putchar(72)\n  ret\n}\n")
	var out strings.Builder

	Start(in, &out)

	assert.Contains(t, out.String(), "H")
	assert.Contains(t, out.String(), "steps")
}

func TestStartQuitsOnQCommand(t *testing.T) {
	in := strings.NewReader(":q\n")
	var out strings.Builder

	Start(in, &out)

	assert.Contains(t, out.String(), Prompt)
}

func TestStartRecoversFromParseErrorAndKeepsGoing(t *testing.T) {
	in := strings.NewReader("not valid ir\nfunction main() {\nblock 0:\n  call putchar(65)\n  ret\n}\n")
	var out strings.Builder

	Start(in, &out)

	assert.Contains(t, out.String(), "A")
}
