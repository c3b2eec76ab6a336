package station

import "strings"

// CmpScratch names the working cells ICmp lowering needs. Temp/Flag are
// a shared pair reused sequentially by every comparison; CopyA*/CopyB*/
// Sum/Or are only touched by EQ and NE. None may alias the operands or
// destination passed alongside them.
type CmpScratch struct {
	Temp, Flag             int
	CopyA1, CopyB1         int
	CopyA2, CopyB2         int
	Sum, Or                int
}

// SLT implements the spec's "classical CTL five-cell less-than idiom":
// race a and b down together, one decrement each per iteration, guarding
// b's decrement so it never underflows once it reaches 0 first. When the
// loop (controlled by a) ends, a is always 0; b is left at
// max(0, b_original - a_original), which is nonzero exactly when
// a_original < b_original. dest ends at 0 or 1; a and b are consumed.
func SLT(a, b, dest int, s CmpScratch) string {
	var buf strings.Builder
	buf.WriteString(moveTo(0, a))
	buf.WriteString("[")
	buf.WriteString(moveTo(a, 0))
	buf.WriteString(Copy(b, s.Temp, s.Flag))
	buf.WriteString(Bitcast(s.Temp, s.Flag))
	buf.WriteString(ifOnce(s.Flag, SubImm(1, b)))
	buf.WriteString(moveTo(0, a))
	buf.WriteString("-")
	buf.WriteString("]")
	buf.WriteString(moveTo(a, 0))
	buf.WriteString(Bitcast(b, dest))
	return buf.String()
}

// EQ sets dest to 1 iff a == b, via SLT(a,b) OR SLT(b,a) on preserved
// copies of a and b, negated. a and b themselves are left untouched;
// only the copies are consumed. Not part of the reference's templates
// (bfcc.rs never implements EQ/NE — its gen_inst_icmp is commented out);
// built from the already-verified SLT/Bitcast/Not/Add primitives per
// spec §4.4's suggested formula ("EQ = Not(a - b)"), restructured to
// avoid the underflow a direct subtraction would risk when a < b.
func EQ(a, b, dest int, s CmpScratch) string {
	var buf strings.Builder
	buf.WriteString(Copy(a, s.CopyA1, s.Temp))
	buf.WriteString(Copy(b, s.CopyB1, s.Temp))
	buf.WriteString(Copy(a, s.CopyA2, s.Temp))
	buf.WriteString(Copy(b, s.CopyB2, s.Temp))
	buf.WriteString(SLT(s.CopyA1, s.CopyB1, s.Sum, s)) // Sum = a<b
	buf.WriteString(SLT(s.CopyB2, s.CopyA2, s.Or, s))  // Or = b<a
	buf.WriteString(Add(s.Or, s.Sum))                  // Sum in {0,1,2}; Or -> 0
	buf.WriteString(Bitcast(s.Sum, s.Or))              // Or = a != b
	buf.WriteString(Not(s.Or, dest))                   // dest = a == b
	return buf.String()
}

// NE sets dest to 1 iff a != b; a and b are left untouched.
func NE(a, b, dest int, s CmpScratch) string {
	var buf strings.Builder
	buf.WriteString(EQ(a, b, s.Sum, s))
	buf.WriteString(Not(s.Sum, dest))
	return buf.String()
}
