package station

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// assertBalanced checks that every '[' in s has a matching ']' and that
// the nesting never goes negative — the minimum bar any CTL primitive
// must clear, since an imbalanced primitive would desync every loop
// after it in the emitted program.
func assertBalanced(t *testing.T, s string) {
	t.Helper()
	depth := 0
	for _, c := range s {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		}
		assert.GreaterOrEqual(t, depth, 0, "unbalanced bracket in %q", s)
	}
	assert.Equal(t, 0, depth, "unbalanced bracket in %q", s)
}

// assertOnlyCTL checks the primitive emits only the eight legal CTL
// characters.
func assertOnlyCTL(t *testing.T, s string) {
	t.Helper()
	for _, c := range s {
		assert.True(t, strings.ContainsRune("+-><.,[]", c), "illegal character %q in %q", c, s)
	}
}

func TestPrimitivesEmitBalancedLegalCTL(t *testing.T) {
	cases := map[string]string{
		"ClearImm":  ClearImm(3),
		"StoreImm":  StoreImm(42, 3),
		"StoreAddr": StoreAddr(7, 2),
		"Move":      Move(1, 4),
		"Move2":     Move2(1, 4, 6),
		"Copy":      Copy(1, 4, 6),
		"Add":       Add(1, 4),
		"Sub":       Sub(1, 4),
		"AddImm":    AddImm(5, 2),
		"SubImm":    SubImm(5, 2),
		"Not":       Not(1, 2),
		"Bitcast":   Bitcast(1, 2),
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			assertOnlyCTL(t, s)
			assertBalanced(t, s)
		})
	}
}

func TestMoveToReturnsEmptyForSameCell(t *testing.T) {
	assert.Equal(t, "", moveTo(5, 5))
}

func TestStoreAddrMatchesStoreImmBits(t *testing.T) {
	assert.Equal(t, StoreImm(9, 3), StoreAddr(9, 3))
}

func TestClearImmNoOpConstant(t *testing.T) {
	assert.Equal(t, "[-]", ClearImm(0))
}

func TestLoadIndStoreIndEmitBalancedLegalCTL(t *testing.T) {
	reg := func(i int) int { return 10 + i }
	s := Scratch{Remaining: 1, Found: 2, TempA: 3, FlagA: 4, TempB: 5, FlagB: 6, VCopy: 7}

	load := LoadInd(4, reg, 0, 8, s)
	assertOnlyCTL(t, load)
	assertBalanced(t, load)

	store := StoreInd(4, reg, 8, 0, s)
	assertOnlyCTL(t, store)
	assertBalanced(t, store)
}

func TestIfOnceRunsBodyAtMostOnceStructurally(t *testing.T) {
	body := "+++"
	out := ifOnce(5, body)
	assertBalanced(t, out)
	assert.Contains(t, out, body)
	assert.True(t, strings.HasPrefix(out, moveTo(0, 5)))
}
