// Package normalize applies the two IR rewrites that make the dispatch
// scheme in internal/codegen correct (spec §4.1):
//
//  1. call-terminates-block: split every block at each call so the call
//     is always the last non-terminator instruction, followed by an
//     unconditional branch.
//  2. entry-block-has-no-call: if a function's entry block contains a
//     call (even after splitting it would still be the function's first
//     block), prepend an empty entry block that branches to it.
//
// Both rewrites are run to a fixpoint; Run is idempotent (spec §8,
// property 4).
package normalize

import "ctlc/internal/ir"

// Run applies both rewrites to every function in m, in place.
func Run(m *ir.Module) {
	for _, f := range m.Functions {
		splitCallBlocks(f)
		excludeCallFromEntry(f)
	}
}

// splitCallBlocks repeatedly splits any block whose call instruction is
// not already its last non-terminator instruction followed by an
// unconditional Br, until none remain.
func splitCallBlocks(f *ir.Function) {
	for {
		changed := false
		for bi := 0; bi < len(f.Blocks); bi++ {
			b := f.Blocks[bi]
			idx := b.CallIndex()
			if idx < 0 {
				continue
			}
			if idx == len(b.Instructions)-1 {
				if _, ok := b.Terminator.(*ir.Br); ok {
					// Already block-final and followed by Br; nothing to do.
					continue
				}
			}

			suffix := append([]ir.Instruction(nil), b.Instructions[idx+1:]...)
			newBlock := &ir.BasicBlock{
				Name:         f.NextBlockName(),
				Instructions: suffix,
				Terminator:   b.Terminator,
			}

			b.Instructions = b.Instructions[:idx+1]
			b.Terminator = &ir.Br{Dest: newBlock.Name}

			// Insert newBlock immediately after b.
			f.Blocks = append(f.Blocks, nil)
			copy(f.Blocks[bi+2:], f.Blocks[bi+1:])
			f.Blocks[bi+1] = newBlock

			changed = true
		}
		if !changed {
			return
		}
	}
}

// excludeCallFromEntry prepends a fresh empty entry block whenever the
// current entry block contains a call, so the dispatch loop never has to
// reconcile the caller and callee both wanting to run "block 0" of their
// respective functions.
func excludeCallFromEntry(f *ir.Function) {
	for {
		entry := f.Entry()
		if entry == nil || !entry.HasCall() {
			return
		}

		newEntry := &ir.BasicBlock{
			Name:       f.NextBlockName(),
			Terminator: &ir.Br{Dest: entry.Name},
		}
		f.Blocks = append([]*ir.BasicBlock{newEntry}, f.Blocks...)
	}
}
