package sb

import "bsc/internal/errors"

// Proc is the finished SB graph for one `bs` procedure: its single entry
// and single exit node, per spec.md §3's "END is the single exit; START is
// the single entry".
type Proc struct {
	Start *Node
	End   *Node
}

// BuildProc finalizes a graph once End has been supplied, implementing
// spec.md §4.6 / original_source/sb/sb.c's sb_proc: it computes the useful
// (end-reachable) node set, asserts start is among it, then prunes every
// stale user edge left behind by construction paths that were never chosen.
func (c *Context) BuildProc(start, end *Node) (*Proc, error) {
	useful := WalkGraph(end, nil)

	if !useful.Contains(start) {
		return nil, errors.Malformed("sb: procedure never reaches the end node from start")
	}

	WalkGraph(end, func(n *Node) {
		trimUselessUsers(n, useful)
	})

	return &Proc{Start: start, End: end}, nil
}

// trimUselessUsers removes every User edge on node whose consumer fell
// outside the useful set — these are stale references left by
// not-chosen construction paths (spec.md §4.6 step 3).
func trimUselessUsers(node *Node, useful *nodeSet) {
	var head, tail *User
	u := node.Users
	for u != nil {
		next := u.Next
		if useful.Contains(u.Node) {
			if head == nil {
				head = u
			} else {
				tail.Next = u
			}
			tail = u
		}
		u = next
	}
	if tail != nil {
		tail.Next = nil
	}
	node.Users = head
}
