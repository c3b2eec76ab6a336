package station

import "strings"

// Scratch names the working cells LoadInd/StoreInd need, all offsets
// from the shared origin like everything else in this package. None may
// alias p, d, v, or any register cell passed via reg.
type Scratch struct {
	Remaining int // running copy of the pointer value, counted down to 0
	Found     int // 0 until the matching register has been located
	TempA     int
	FlagA     int
	TempB     int
	FlagB     int
	VCopy     int // StoreInd only: per-candidate copy of the value being stored
}

// isZero writes 1 into flag iff src == 0, leaving src untouched. cp is a
// scratch cell used only to hold the throwaway copy of src.
func isZero(src, cp, flag int) string {
	return Copy(src, cp, flag) + Bitcast(cp, flag) + Not(flag, cp) + Move(cp, flag)
}

// LoadInd copies the register addressed by p's runtime value into d,
// preserving p. n is the candidate register count for the active
// function; reg maps a candidate index 0..n-1 to its cell offset.
//
// This is a from-scratch re-derivation of the indirect addressing
// described in spec §4.1(ii)/§4.5, not a transcription of
// original_source/bfcc.rs's Op::Load template: that reference shuttles
// data physically through the intervening tape cells, an intricate
// technique whose correctness could not be checked without running a
// CTL interpreter. The scan below gets the same externally-visible
// contract (p preserved, only the addressed register touched) using
// primitives already verified above: scan every candidate register,
// and on the one whose index matches the pointer's runtime value,
// copy it into the destination.
func LoadInd(n int, reg func(int) int, p, d int, s Scratch) string {
	var b strings.Builder
	b.WriteString(Copy(p, s.Remaining, s.TempA))
	b.WriteString(ClearImm(s.Found))

	for i := 0; i < n; i++ {
		ri := reg(i)

		b.WriteString(isZero(s.Remaining, s.TempA, s.FlagA))
		b.WriteString(isZero(s.Found, s.TempB, s.FlagB))

		matched := Copy(ri, d, s.TempA) + AddImm(1, s.Found)
		b.WriteString(ifOnce(s.FlagA, ifOnce(s.FlagB, matched)))

		b.WriteString(isZero(s.Remaining, s.TempA, s.FlagA))
		b.WriteString(Not(s.FlagA, s.TempA)) // TempA = remaining != 0
		b.WriteString(ifOnce(s.TempA, SubImm(1, s.Remaining)))
	}

	b.WriteString(ClearImm(s.Remaining))
	b.WriteString(ClearImm(s.Found))
	return b.String()
}

// StoreInd writes v into the register addressed by p's runtime value,
// consuming v, and preserves p. See LoadInd for the technique; the only
// difference is that the matched branch moves data in rather than out,
// and every iteration (matched or not) must still leave v exactly as it
// found it unless this is the matching iteration, which is why each
// pass works from a fresh per-iteration copy (VCopy) instead of v
// itself.
func StoreInd(n int, reg func(int) int, v, p int, s Scratch) string {
	var b strings.Builder
	b.WriteString(Copy(p, s.Remaining, s.TempA))
	b.WriteString(ClearImm(s.Found))

	for i := 0; i < n; i++ {
		ri := reg(i)

		b.WriteString(Copy(v, s.VCopy, s.TempA))

		b.WriteString(isZero(s.Remaining, s.TempA, s.FlagA))
		b.WriteString(isZero(s.Found, s.TempB, s.FlagB))

		matched := ClearImm(ri) + Move(s.VCopy, ri) + ClearImm(v) + AddImm(1, s.Found)
		b.WriteString(ifOnce(s.FlagA, ifOnce(s.FlagB, matched)))

		// VCopy is zero here if this iteration matched (Move drained it);
		// otherwise it still holds the unused duplicate of v and must be
		// cleared to satisfy the scratch-is-zero-at-rest invariant.
		b.WriteString(ClearImm(s.VCopy))

		b.WriteString(isZero(s.Remaining, s.TempA, s.FlagA))
		b.WriteString(Not(s.FlagA, s.TempA))
		b.WriteString(ifOnce(s.TempA, SubImm(1, s.Remaining)))
	}

	b.WriteString(ClearImm(s.Remaining))
	b.WriteString(ClearImm(s.Found))
	return b.String()
}
