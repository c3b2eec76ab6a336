package normalize

import (
	"ctlc/internal/ir"

	cerr "ctlc/internal/errors"
)

// Validate checks the post-normalization invariants listed in spec §3 and
// returns the first violation found, or nil if the module is clean. A
// violation here indicates a compiler bug (spec §7: "would indicate a
// compiler bug; aborts with a diagnostic"), not a user-facing IR error.
func Validate(m *ir.Module) error {
	for _, f := range m.Functions {
		for _, b := range f.Blocks {
			idx := b.CallIndex()
			if idx >= 0 && idx != len(b.Instructions)-1 {
				return cerr.NewAt(cerr.ErrCallNotBlockFinal, "call is not the final instruction of its block", f.Name, b.Name)
			}
			if idx >= 0 {
				if _, ok := b.Terminator.(*ir.Br); !ok {
					return cerr.NewAt(cerr.ErrCallTerminatorNotBr, "block ending in a call must terminate with an unconditional branch", f.Name, b.Name)
				}
			}
		}
		if entry := f.Entry(); entry != nil && entry.HasCall() {
			return cerr.NewAt(cerr.ErrEntryBlockHasCall, "entry block must not contain a call", f.Name, entry.Name)
		}
	}
	return nil
}
