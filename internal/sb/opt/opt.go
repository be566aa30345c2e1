package opt

import "bsc/internal/sb"

// Run applies the worklist-driven peephole optimizer to proc until
// fixpoint, per spec.md §4.7.
func Run(proc *sb.Proc) {
	wl := newWorklist()
	sb.WalkGraph(proc.End, func(n *sb.Node) { wl.push(n) })

	for !wl.empty() {
		n := wl.pop()

		ideal, ok := idealize(n, wl)
		if !ok || ideal == n {
			continue
		}

		replace(wl, n, ideal)

		for u := ideal.Users; u != nil; u = u.Next {
			wl.push(u.Node)
		}
	}
}

// idealize dispatches to the per-op idealization rule, matching opt.c's
// idealize_table. Only PHI and REGION have rules; everything else reports
// ok=false (no rule registered).
func idealize(n *sb.Node, wl *worklist) (*sb.Node, bool) {
	switch n.Op {
	case sb.OpPhi:
		return idealizePhi(n, wl), true
	case sb.OpRegion:
		return idealizeRegion(n), true
	default:
		return nil, false
	}
}

// idealizePhi implements opt.c's idealize_phi: a phi whose inputs (after
// position 0, the region) are all equal to a single value `same` (ignoring
// self-references, which occur when a loop-carried phi feeds itself)
// collapses to `same`. Collapsing re-queues the region, which may now lose
// its last phi user and become eligible for idealizeRegion.
func idealizePhi(n *sb.Node, wl *worklist) *sb.Node {
	var same *sb.Node
	for i := 1; i < len(n.Ins); i++ {
		in := n.Ins[i]
		if in == n {
			continue
		}
		if same == nil {
			same = in
		}
		if same != in {
			return n
		}
	}
	if same == nil {
		return n
	}
	wl.push(n.Ins[0])
	return same
}

// idealizeRegion implements opt.c's idealize_region: a region with no PHI
// still consuming it at input index 0 (i.e. no live phi needs to
// distinguish its predecessors), and whose control inputs are all the same
// single node, collapses to that node.
func idealizeRegion(n *sb.Node) *sb.Node {
	for u := n.Users; u != nil; u = u.Next {
		if u.Node.Op == sb.OpPhi && u.Index == 0 {
			return n
		}
	}

	var same *sb.Node
	for _, in := range n.Ins {
		if same == nil {
			same = in
		}
		if same != in {
			return n
		}
	}
	if same == nil {
		return n
	}
	return same
}

// replace rewrites every user of dest to point at src instead, then
// deletes dest (which by construction now has no users).
func replace(wl *worklist, dest, src *sb.Node) {
	for dest.Users != nil {
		u := dest.Users
		dest.Users = u.Next

		u.Node.Ins[u.Index] = src

		u.Next = src.Users
		src.Users = u
	}
	deleteNode(wl, dest)
}

// deleteNode removes node from the worklist and, for each of its inputs,
// drops the corresponding user edge; an input left with no remaining users
// is itself recursively deleted (spec.md §4.7's "recursively deletes
// newly-dead inputs").
func deleteNode(wl *worklist, node *sb.Node) {
	if node.Users != nil {
		panic("opt: deleting a node that still has users")
	}
	wl.remove(node)

	for i, in := range node.Ins {
		if in == nil {
			continue
		}
		removeUser(in, node, i)
		if in.Users == nil {
			deleteNode(wl, in)
		}
	}
}

// removeUser unlinks the {node, index} user record from def's user list.
func removeUser(def, node *sb.Node, index int) {
	u := def.Users
	if u == nil {
		panic("opt: user not found in list")
	}
	if u.Node == node && u.Index == index {
		def.Users = u.Next
		return
	}
	for u.Next != nil {
		if u.Next.Node == node && u.Next.Index == index {
			u.Next = u.Next.Next
			return
		}
		u = u.Next
	}
	panic("opt: user not found in list")
}
