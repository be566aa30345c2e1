package hir

import (
	"testing"

	"bsc/internal/arena"
	"bsc/internal/lexer"
)

// TestBlockListInvariant builds a block by hand and checks invariant 6 of
// spec.md §8: a block's node list is a consistent doubly-linked list whose
// Start/End sentinels always point at the true first/last node.
func TestBlockListInvariant(t *testing.T) {
	a := arena.New()
	proc := NewProc(a)
	b := proc.NewBlock()

	var nodes []*Node
	for i := 0; i < 4; i++ {
		n := proc.NewNode(OpIntConst, lexer.Token{})
		Append(b, n)
		nodes = append(nodes, n)
	}

	if b.Start != nodes[0] {
		t.Fatalf("Start = %p, want %p", b.Start, nodes[0])
	}
	if b.End != nodes[len(nodes)-1] {
		t.Fatalf("End = %p, want %p", b.End, nodes[len(nodes)-1])
	}

	for i, n := range nodes {
		if n.Block != b {
			t.Fatalf("node %d: Block = %p, want %p", i, n.Block, b)
		}
		if i > 0 && n.Prev != nodes[i-1] {
			t.Fatalf("node %d: Prev = %p, want %p", i, n.Prev, nodes[i-1])
		}
		if i < len(nodes)-1 && n.Next != nodes[i+1] {
			t.Fatalf("node %d: Next = %p, want %p", i, n.Next, nodes[i+1])
		}
	}
	if nodes[0].Prev != nil {
		t.Fatal("first node's Prev is not nil")
	}
	if nodes[len(nodes)-1].Next != nil {
		t.Fatal("last node's Next is not nil")
	}
}

func TestAppendToAlreadyOwnedNodePanics(t *testing.T) {
	a := arena.New()
	proc := NewProc(a)
	b1 := proc.NewBlock()
	b2 := proc.NewBlock()

	n := proc.NewNode(OpIntConst, lexer.Token{})
	Append(b1, n)

	defer func() {
		if recover() == nil {
			t.Fatal("re-appending an owned node did not panic")
		}
	}()
	Append(b2, n)
}

func TestSuccessors(t *testing.T) {
	a := arena.New()
	proc := NewProc(a)

	jumpBlock := proc.NewBlock()
	target := proc.NewBlock()
	jump := proc.NewNode(OpJump, lexer.Token{})
	jump.Target = target
	Append(jumpBlock, jump)

	succ := Successors(jumpBlock)
	if len(succ) != 1 || succ[0] != target {
		t.Fatalf("Successors(jump block) = %v, want [%p]", succ, target)
	}

	branchBlock := proc.NewBlock()
	thenB, elseB := proc.NewBlock(), proc.NewBlock()
	branch := proc.NewNode(OpBranch, lexer.Token{})
	branch.Then, branch.Else = thenB, elseB
	Append(branchBlock, branch)

	succ = Successors(branchBlock)
	if len(succ) != 2 || succ[0] != thenB || succ[1] != elseB {
		t.Fatalf("Successors(branch block) = %v, want [then, else]", succ)
	}

	retBlock := proc.NewBlock()
	ret := proc.NewNode(OpRet, lexer.Token{})
	Append(retBlock, ret)
	if succ := Successors(retBlock); succ != nil {
		t.Fatalf("Successors(ret block) = %v, want nil", succ)
	}

	empty := proc.NewBlock()
	if succ := Successors(empty); succ != nil {
		t.Fatalf("Successors(empty block) = %v, want nil", succ)
	}
}
