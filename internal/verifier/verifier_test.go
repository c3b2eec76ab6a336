package verifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allCasesDir points at the real fixture set checked into the repo;
// the tests below exercise the harness against it read-only, writing
// artefacts into a scratch directory instead of ./tests/{ir,bf,stats}.
const allCasesDir = "../../tests/cases"

func newScratchRunner(t *testing.T) *Runner {
	t.Helper()
	root := t.TempDir()
	r := NewRunner(nil)
	r.CasesDir = allCasesDir
	r.IRDir = filepath.Join(root, "ir")
	r.BFDir = filepath.Join(root, "bf")
	r.StatsDir = filepath.Join(root, "stats")
	return r
}

func TestRunAllPassesEveryCheckedInFixture(t *testing.T) {
	r := newScratchRunner(t)
	reports, err := r.RunAll()
	require.NoError(t, err)
	require.NotEmpty(t, reports)

	for _, rep := range reports {
		assert.Equal(t, Pass, rep.Outcome, "case %s suite %s: %s", rep.Case, rep.Suite, rep.Detail)
	}

	// both suites must have actually run for each fixture stem, since
	// every checked-in case ships both a .ir and a .opt.ir variant.
	bySuite := map[string]int{}
	for _, rep := range reports {
		bySuite[rep.Suite]++
	}
	assert.Equal(t, bySuite["o0"], bySuite["o1"])
	assert.NotZero(t, bySuite["o0"])
}

func TestRunAllWritesArtefacts(t *testing.T) {
	r := newScratchRunner(t)
	reports, err := r.RunAll()
	require.NoError(t, err)
	require.NotEmpty(t, reports)

	irBytes, err := os.ReadFile(filepath.Join(r.IRDir, "hello_const.o0.ir"))
	require.NoError(t, err)
	assert.Contains(t, string(irBytes), "function main")

	bfBytes, err := os.ReadFile(filepath.Join(r.BFDir, "hello_const.o0.bf"))
	require.NoError(t, err)
	assertOnlyCTLBytes(t, bfBytes)

	statsBytes, err := os.ReadFile(filepath.Join(r.StatsDir, "hello_const.o0.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(statsBytes), "steps: ")
}

func assertOnlyCTLBytes(t *testing.T, b []byte) {
	t.Helper()
	for _, c := range string(b) {
		assert.Contains(t, "+-><.,[]", string(c))
	}
}

func TestRunAllHonorsFilter(t *testing.T) {
	r := newScratchRunner(t)
	r.Filter = map[string]bool{"hello_const": true}

	reports, err := r.RunAll()
	require.NoError(t, err)

	var ran, skipped int
	for _, rep := range reports {
		if rep.Case == "hello_const" {
			assert.Equal(t, Pass, rep.Outcome)
			ran++
		} else {
			assert.Equal(t, Skip, rep.Outcome)
			skipped++
		}
	}
	assert.NotZero(t, ran)
	assert.NotZero(t, skipped)
}

func TestExtractCaseParsesMarker(t *testing.T) {
	c, err := extractCase("// TEST: {\"name\": \"foo\", \"output\": \"Z\"}\nfunction main() {}\n")
	require.NoError(t, err)
	assert.Equal(t, "foo", c.Name)
	assert.Equal(t, "Z", c.Output)
	assert.False(t, c.Skip)
}

func TestExtractCaseHonorsSkipField(t *testing.T) {
	c, err := extractCase("TEST: {\"name\": \"foo\", \"output\": \"Z\", \"skip\": true}\n")
	require.NoError(t, err)
	assert.True(t, c.Skip)
}

func TestExtractCaseMissingMarkerFails(t *testing.T) {
	_, err := extractCase("function main() {}\n")
	assert.Error(t, err)
}

func TestExtractCaseMalformedJSONFails(t *testing.T) {
	_, err := extractCase("TEST: {not json}\n")
	assert.Error(t, err)
}

func TestRunOneReportsMismatchAsFail(t *testing.T) {
	dir := t.TempDir()
	casesDir := filepath.Join(dir, "cases")
	require.NoError(t, os.MkdirAll(casesDir, 0o755))
	fixture := "// TEST: {\"name\": \"wrong\", \"output\": \"Z\"}\n" +
		"function main() {\nblock 0:\n  call putchar(65)\n  ret\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(casesDir, "wrong.ir"), []byte(fixture), 0o644))

	r := NewRunner(nil)
	r.CasesDir = casesDir
	r.IRDir = filepath.Join(dir, "ir")
	r.BFDir = filepath.Join(dir, "bf")
	r.StatsDir = filepath.Join(dir, "stats")

	reports, err := r.RunAll()
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, Fail, reports[0].Outcome)
	assert.Contains(t, reports[0].Detail, "expected")
}
