package ctl

import (
	"testing"

	cerr "ctlc/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (*Result, error) {
	t.Helper()
	p, err := Compile(src)
	require.NoError(t, err)
	return Execute(p)
}

func TestPutcharLiteral(t *testing.T) {
	// 72 '+'s then '.', then clear back to zero so the tape-zero
	// assertion passes.
	src := repeatRune('+', 72) + "." + repeatRune('-', 72)
	res, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "H", res.Output)
}

func TestLoopZerosACell(t *testing.T) {
	res, err := run(t, "+++[-].")
	require.NoError(t, err)
	assert.Equal(t, "\x00", res.Output)
}

func TestFusionMatchesNaiveOutput(t *testing.T) {
	src := "+++++.-----"
	p, err := Compile(src)
	require.NoError(t, err)
	require.Len(t, p.ops, 3, "adjacent +/+ and -/- runs must fuse into single ops")

	res, err := Execute(p)
	require.NoError(t, err)
	assert.Equal(t, "\x05", res.Output)
}

func TestUnbalancedOpenFails(t *testing.T) {
	_, err := Compile("[+")
	require.Error(t, err)
	ce, ok := err.(*cerr.CompileError)
	require.True(t, ok)
	assert.Equal(t, cerr.FaultUnbalancedLoop, ce.Code)
}

func TestUnbalancedCloseFails(t *testing.T) {
	_, err := Compile("+]")
	require.Error(t, err)
	ce, ok := err.(*cerr.CompileError)
	require.True(t, ok)
	assert.Equal(t, cerr.FaultUnbalancedLoop, ce.Code)
}

func TestMemUnderflowBeforeAnyAdvance(t *testing.T) {
	_, err := run(t, "<")
	require.Error(t, err)
	rf, ok := err.(*cerr.RuntimeFault)
	require.True(t, ok)
	assert.Equal(t, cerr.FaultMemUnderflow, rf.Code)
}

func TestMemOverflowPastTapeEnd(t *testing.T) {
	_, err := run(t, repeatRune('>', TapeSize))
	require.Error(t, err)
	rf, ok := err.(*cerr.RuntimeFault)
	require.True(t, ok)
	assert.Equal(t, cerr.FaultMemOverflow, rf.Code)
}

func TestIntOverflowAt256Increments(t *testing.T) {
	_, err := run(t, repeatRune('+', 256))
	require.Error(t, err)
	rf, ok := err.(*cerr.RuntimeFault)
	require.True(t, ok)
	assert.Equal(t, cerr.FaultIntOverflow, rf.Code)
}

func TestIntUnderflowBelowZero(t *testing.T) {
	_, err := run(t, "-")
	require.Error(t, err)
	rf, ok := err.(*cerr.RuntimeFault)
	require.True(t, ok)
	assert.Equal(t, cerr.FaultIntUnderflow, rf.Code)
}

func TestGetcharUnimplemented(t *testing.T) {
	_, err := run(t, ",")
	require.Error(t, err)
	rf, ok := err.(*cerr.RuntimeFault)
	require.True(t, ok)
	assert.Equal(t, cerr.FaultUnimplemented, rf.Code)
}

func TestTapeNotZeroAtTermination(t *testing.T) {
	_, err := run(t, "+")
	require.Error(t, err)
	rf, ok := err.(*cerr.RuntimeFault)
	require.True(t, ok)
	assert.Equal(t, cerr.FaultTapeNotZero, rf.Code)
}

func TestIgnoresNonCTLCharacters(t *testing.T) {
	src := "this is a comment " + repeatRune('+', 65) + ". " + repeatRune('-', 65)
	res, err := run(t, src)
	require.NoError(t, err)
	assert.Equal(t, "A", res.Output)
}

func TestStepCounterCountsFusedOps(t *testing.T) {
	p, err := Compile("+++.---")
	require.NoError(t, err)
	res, err := Execute(p)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Steps, "fused Add(3), Putchar, Add(-3) is 3 steps")
}

func repeatRune(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}
