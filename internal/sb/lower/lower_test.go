package lower

import (
	"math/big"
	"testing"

	"bsc/internal/arena"
	"bsc/internal/hir"
	"bsc/internal/lexer"
	"bsc/internal/sb"
)

func constNode(proc *hir.Proc, b *hir.Block, v int64) *hir.Node {
	n := proc.NewNode(hir.OpIntConst, lexer.Token{})
	n.IntConst = big.NewInt(v)
	hir.Append(b, n)
	return n
}

// TestLowerStraightLineArithmetic builds `{ return 2 + 3; }` directly in HIR
// and checks Lower produces a reachable SB graph whose end phi's single
// input path carries the ADD node, per spec.md §4.5 steps 2-4.
func TestLowerStraightLineArithmetic(t *testing.T) {
	a := arena.New()
	proc := hir.NewProc(a)
	b := proc.NewBlock()

	left := constNode(proc, b, 2)
	right := constNode(proc, b, 3)
	add := proc.NewNode(hir.OpAdd, lexer.Token{})
	add.Binary[0], add.Binary[1] = left, right
	hir.Append(b, add)

	ret := proc.NewNode(hir.OpRet, lexer.Token{})
	ret.Value = add
	hir.Append(b, ret)

	ctx := sb.NewContext()
	sbProc, err := Lower(ctx, proc)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if sbProc.End.Op != sb.OpEnd {
		t.Fatalf("End node has op %s, want end", sbProc.End.Op.Mnemonic())
	}

	retValPhi := sbProc.End.Ins[2]
	if retValPhi.Op != sb.OpPhi {
		t.Fatalf("end's ret-val input is %s, want phi", retValPhi.Op.Mnemonic())
	}
	if len(retValPhi.Ins) != 2 {
		t.Fatalf("single-path end phi has %d inputs, want 2 (region + one value)", len(retValPhi.Ins))
	}
	sum := retValPhi.Ins[1]
	if sum.Op != sb.OpAdd {
		t.Fatalf("end phi's value input is %s, want add", sum.Op.Mnemonic())
	}
	if sum.Ins[0].IntConst != 2 || sum.Ins[1].IntConst != 3 {
		t.Fatalf("add inputs = %d, %d; want 2, 3", sum.Ins[0].IntConst, sum.Ins[1].IntConst)
	}
}

// TestLowerBranchJoinsMemoryAndControl builds an if/else that both branches
// return through, and checks the merge produces a 2-input end region/phi
// (spec.md §4.5's region-per-reachable-block step).
func TestLowerBranchJoinsMemoryAndControl(t *testing.T) {
	a := arena.New()
	proc := hir.NewProc(a)

	entry := proc.NewBlock()
	pred := constNode(proc, entry, 1)
	branch := proc.NewNode(hir.OpBranch, lexer.Token{})
	branch.Pred = pred
	hir.Append(entry, branch)

	thenB := proc.NewBlock()
	thenRet := proc.NewNode(hir.OpRet, lexer.Token{})
	thenRet.Value = constNode(proc, thenB, 10)
	hir.Append(thenB, thenRet)

	elseB := proc.NewBlock()
	elseRet := proc.NewNode(hir.OpRet, lexer.Token{})
	elseRet.Value = constNode(proc, elseB, 20)
	hir.Append(elseB, elseRet)

	branch.Then, branch.Else = thenB, elseB

	ctx := sb.NewContext()
	sbProc, err := Lower(ctx, proc)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	retValPhi := sbProc.End.Ins[2]
	if retValPhi.Op != sb.OpPhi {
		t.Fatalf("end's ret-val input is %s, want phi", retValPhi.Op.Mnemonic())
	}
	if len(retValPhi.Ins) != 3 {
		t.Fatalf("two-path end phi has %d inputs, want 3 (region + two values)", len(retValPhi.Ins))
	}

	got := map[uint64]bool{}
	for _, v := range retValPhi.Ins[1:] {
		if v.Op != sb.OpIntConst {
			t.Fatalf("end phi value input is %s, want int_const", v.Op.Mnemonic())
		}
		got[v.IntConst] = true
	}
	if !got[10] || !got[20] {
		t.Fatalf("end phi values = %v, want {10, 20}", got)
	}
}

// TestLowerSkipsUnreachableBlock mirrors spec.md §8 scenario S6: a `let`
// declared in a block after an unconditional return is unreachable and
// must never produce an SB ALLOCA node.
func TestLowerSkipsUnreachableBlock(t *testing.T) {
	a := arena.New()
	proc := hir.NewProc(a)

	entry := proc.NewBlock()
	ret := proc.NewNode(hir.OpRet, lexer.Token{})
	ret.Value = constNode(proc, entry, 1)
	hir.Append(entry, ret)

	dead := proc.NewBlock()
	local := proc.NewNode(hir.OpLocal, lexer.Token{})
	hir.Append(dead, local)

	ctx := sb.NewContext()
	sbProc, err := Lower(ctx, proc)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}

	var allocas int
	sb.WalkGraph(sbProc.End, func(n *sb.Node) {
		if n.Op == sb.OpAlloca {
			allocas++
		}
	})
	if allocas != 0 {
		t.Fatalf("found %d alloca nodes from an unreachable block, want 0", allocas)
	}
}

// TestTruncateTo64MasksLowBits confirms the documented int128->int64
// truncation bug is preserved byte-for-byte: only the low 64 bits survive.
func TestTruncateTo64MasksLowBits(t *testing.T) {
	v := new(big.Int).Lsh(big.NewInt(1), 64) // 2^64
	v.Add(v, big.NewInt(42))                 // 2^64 + 42

	if got := truncateTo64(v); got != 42 {
		t.Fatalf("truncateTo64(2^64+42) = %d, want 42", got)
	}
}
