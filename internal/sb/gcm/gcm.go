// Package gcm implements the scheduler skeleton from spec.md §4.8: it
// builds a control-flow graph by a depth-first walk over the control
// subgraph, forming a new Block whenever a node carries
// STARTS_BASIC_BLOCK. Full global code motion (early/late schedule) is a
// planned extension, not implemented here — matching
// original_source/sb/gcm.c, whose own `schedule` returns nil after just
// building the CFG.
package gcm

import (
	"bsc/internal/container"
	"bsc/internal/sb"
)

// Block is one basic block of the post-schedule CFG: a list of nodes
// assigned to it in walk order, linked to the next block so that walking
// Head -> Next visits blocks in the order the depth-first walk reached
// their first node. Head is therefore START's block. This is discovery
// order, not a reverse postorder: a merge REGION can come before one of its
// predecessor blocks.
type Block struct {
	Next  *Block
	Nodes []*sb.Node
}

// CFG is the result of building a control-flow graph from an SB proc's
// control subgraph.
type CFG struct {
	Head     *Block
	BlockOf  *container.Map[*sb.Node, *Block]
}

// getPostorder walks from start following only users flagged
// TRANSFERS_CONTROL. Despite its name, the list it returns is in
// depth-first preorder: each node comes before the control users reached
// from it. Named for and
// grounded on original_source/sb/gcm.c's get_postorder — whose C source has
// a stray reference to an undefined `postorder` variable at its return
// statement (a transcription artifact, not one of spec.md §9's documented
// ambiguities); this port returns the correctly-computed `result` slice.
func getPostorder(start *sb.Node) []*sb.Node {
	visited := container.NewSet[*sb.Node](container.PointerHash64[sb.Node])
	stack := container.NewSeq[*sb.Node]()
	stack.Push(start)

	var result []*sb.Node

	for stack.Len() > 0 {
		n := stack.Pop()
		if visited.Contains(n) {
			continue
		}
		visited.Add(n)

		for u := n.Users; u != nil; u = u.Next {
			if !u.Node.Flags.TransfersControl() {
				continue
			}
			stack.Push(u.Node)
		}

		result = append(result, n)
	}

	return result
}

// BuildCFG constructs the CFG for proc, per spec.md §4.8.
func BuildCFG(proc *sb.Proc) *CFG {
	postorder := getPostorder(proc.Start)

	var head, tail *Block
	blockOf := container.NewMap[*sb.Node, *Block](container.PointerHash64[sb.Node])

	for _, n := range postorder {
		if n.Flags.StartsBasicBlock() {
			block := &Block{}
			if tail == nil {
				head = block
			} else {
				tail.Next = block
			}
			tail = block
		}

		blockOf.Insert(n, tail)
		tail.Nodes = append(tail.Nodes, n)
	}

	return &CFG{Head: head, BlockOf: blockOf}
}

// Schedule builds the CFG skeleton and returns nil, matching
// original_source/sb/gcm.c's schedule(): full GCM (early/late scheduling of
// non-control-transferring nodes into blocks) is left as a planned
// extension.
func Schedule(proc *sb.Proc) *CFG {
	BuildCFG(proc)
	return nil
}
