package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileErrorMessage(t *testing.T) {
	err := NewAt(ErrUnsupportedInstruction, "unsupported instruction kind", "main", 2)
	assert.Contains(t, err.Error(), "IR001")
	assert.Contains(t, err.Error(), "main/b2")
}

func TestCompileErrorNoLocation(t *testing.T) {
	err := New(ErrEntryBlockHasCall, "entry block must not contain a call")
	assert.NotContains(t, err.Error(), "(in")
}

func TestRuntimeFaultMessage(t *testing.T) {
	f := NewFault(FaultIntOverflow, "cell overflow", 12, 34)
	assert.Contains(t, f.Error(), "F001")
	assert.Contains(t, f.Error(), "pc=12")
	assert.Contains(t, f.Error(), "mp=34")
}

func TestReporterAccumulates(t *testing.T) {
	r := NewReporter()
	r.Report(New(ErrUnsupportedInstruction, "bad op"))
	r.Report(NewFault(FaultMemUnderflow, "head ran off the left edge", 1, 0))
	out := r.String()
	assert.Contains(t, out, "IR001")
	assert.Contains(t, out, "F004")
}
