package sb

import "bsc/internal/container"

// nodeSet is the pointer-keyed container.Set specialization used throughout
// this package, grounded on original_source/sb/internal.h's NodeSet
// (a HashSet of SB_Node* keyed by pointer_hash/pointer_cmp).
type nodeSet = container.Set[*Node]

func newNodeSet() *nodeSet {
	return container.NewSet[*Node](container.PointerHash64[Node])
}

// WalkGraph performs the reverse (def) DFS from end over Ins edges that
// original_source/sb/internal.h's walk_graph implements, optionally
// visiting each node once via visit.
func WalkGraph(end *Node, visit func(*Node)) *nodeSet {
	visited := newNodeSet()
	stack := container.NewSeq[*Node]()
	stack.Push(end)

	for stack.Len() > 0 {
		n := stack.Pop()
		if visited.Contains(n) {
			continue
		}
		visited.Add(n)
		if visit != nil {
			visit(n)
		}
		for _, in := range n.Ins {
			if in != nil {
				stack.Push(in)
			}
		}
	}
	return visited
}
