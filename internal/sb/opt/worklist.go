// Package opt implements the SB peephole/idealization optimizer: a
// worklist of candidate nodes, per-op idealize rules (phi/region
// collapse), and safe node replacement that rewrites users and recursively
// deletes newly-dead inputs, per spec.md §4.7 and
// original_source/sb/opt.c.
package opt

import (
	"bsc/internal/container"
	"bsc/internal/sb"
)

// worklist is a sequence plus a node->index map, giving O(1) arbitrary
// removal via swap-with-tail, exactly as spec.md §9 ("Worklist as indexed
// set") and opt.c's Worklist require.
type worklist struct {
	stack   []*sb.Node
	indices *container.Map[*sb.Node, int]
}

func newWorklist() *worklist {
	return &worklist{indices: container.NewMap[*sb.Node, int](container.PointerHash64[sb.Node])}
}

func (w *worklist) push(n *sb.Node) {
	if _, ok := w.indices.Get(n); ok {
		return
	}
	i := len(w.stack)
	w.stack = append(w.stack, n)
	w.indices.Insert(n, i)
}

func (w *worklist) pop() *sb.Node {
	n := len(w.stack) - 1
	node := w.stack[n]
	w.stack = w.stack[:n]
	w.indices.Remove(node)
	return node
}

func (w *worklist) empty() bool { return len(w.stack) == 0 }

// remove deletes node from the worklist in O(1): swap its slot with the
// tail element, fix the moved element's recorded index, shrink by one.
func (w *worklist) remove(node *sb.Node) {
	idx, ok := w.indices.Get(node)
	if !ok {
		return
	}
	last := len(w.stack) - 1
	moved := w.stack[last]
	w.stack[idx] = moved
	w.stack = w.stack[:last]
	w.indices.Insert(moved, idx)
	w.indices.Remove(node)
}
