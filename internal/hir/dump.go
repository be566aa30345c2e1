package hir

import (
	"fmt"
	"io"
)

// Dump writes proc's textual HIR, matching spec.md §6 exactly: block header
// `bb_<tid>:`, per-node `  %<tid> = <mnemonic> [operands]`, `$N` for ints,
// `%N` for node refs, `bb_N` for block refs. It assigns fresh tids by
// traversal order first (original_source/hir.c's hir_print numbers blocks
// and nodes before printing), then implements every op's mnemonic — unlike
// the source, whose hir_print only handled 6 of its 12 ops behind a stale
// static_assert.
func Dump(w io.Writer, proc *Proc, name string) {
	fmt.Fprintf(w, "-- proc %s --\n", name)

	nb, nn := 0, 0
	for b := proc.ControlFlowHead; b != nil; b = b.Next {
		b.Tid = nb
		nb++
		for n := b.Start; n != nil; n = n.Next {
			n.Tid = nn
			nn++
		}
	}

	for b := proc.ControlFlowHead; b != nil; b = b.Next {
		fmt.Fprintf(w, "bb_%d:\n", b.Tid)
		for n := b.Start; n != nil; n = n.Next {
			fmt.Fprintf(w, "  %%%d = %s\n", n.Tid, mnemonic(n))
		}
	}
}

func mnemonic(n *Node) string {
	switch n.Op {
	case OpIntConst:
		return fmt.Sprintf("$%s", n.IntConst.String())
	case OpAdd:
		return fmt.Sprintf("add %%%d, %%%d", n.Binary[0].Tid, n.Binary[1].Tid)
	case OpSub:
		return fmt.Sprintf("sub %%%d, %%%d", n.Binary[0].Tid, n.Binary[1].Tid)
	case OpMul:
		return fmt.Sprintf("mul %%%d, %%%d", n.Binary[0].Tid, n.Binary[1].Tid)
	case OpDiv:
		return fmt.Sprintf("div %%%d, %%%d", n.Binary[0].Tid, n.Binary[1].Tid)
	case OpLoad:
		return fmt.Sprintf("load %%%d", n.Addr.Tid)
	case OpAssign:
		return fmt.Sprintf("assign %%%d, %%%d", n.Addr.Tid, n.Value.Tid)
	case OpLocal:
		return "local"
	case OpJump:
		return fmt.Sprintf("jump bb_%d", n.Target.Tid)
	case OpBranch:
		return fmt.Sprintf("branch %%%d, bb_%d, bb_%d", n.Pred.Tid, n.Then.Tid, n.Else.Tid)
	case OpRet:
		if n.Value == nil {
			return "ret"
		}
		return fmt.Sprintf("ret %%%d", n.Value.Tid)
	default:
		return "?"
	}
}
