// Package lower implements HIR -> SB lowering: the reachability-restricted
// block traversal that materializes one region + memory-phi per reachable
// HIR block, threads control/memory state through straight-line and
// branching control flow, and joins every exit path into a single END,
// exactly per spec.md §4.5's seven steps.
package lower

import (
	"math/big"

	"bsc/internal/container"
	"bsc/internal/errors"
	"bsc/internal/hir"
	"bsc/internal/sb"
)

// blockInfo is the per-reachable-block bookkeeping lowering threads
// through steps 2-6.
type blockInfo struct {
	region *sb.Node
	memPhi *sb.Node

	// state is {ctrl, mem, ret_val} per spec.md §4.5 step 3, updated as the
	// block's nodes are translated.
	ctrl   *sb.Node
	mem    *sb.Node
	retVal *sb.Node

	// ctrlOut holds the control value handed to each successor slot (index
	// matches hir.Successors(block)); it is filled in during per-node
	// translation for BRANCH only. A straight JUMP exit hands the block's
	// final ctrl/mem to its successor directly, and both BRANCH arms
	// receive the block's final mem.
	ctrlOut [2]*sb.Node

	// pendingCtrl/pendingMem accumulate, in predecessor order, the values
	// later fed to ProvideRegionInputs/ProvidePhiInputs.
	pendingCtrl []*sb.Node
	pendingMem  []*sb.Node
}

// endPath is one {ctrl, mem, ret_val} triple recorded when a reachable
// block has no HIR successors (spec.md §4.5 step 4).
type endPath struct {
	ctrl   *sb.Node
	mem    *sb.Node
	retVal *sb.Node
}

// Lower translates proc's HIR into an SB graph and returns the finished
// Proc. ctx owns the resulting SB nodes.
func Lower(ctx *sb.Context, proc *hir.Proc) (*sb.Proc, error) {
	reachable := reachableBlocks(proc)

	infos := make(map[*hir.Block]*blockInfo)
	for b := proc.ControlFlowHead; b != nil; b = b.Next {
		if !reachable.Contains(b) {
			continue
		}
		infos[b] = &blockInfo{
			region: ctx.Region(),
			memPhi: ctx.Phi(),
		}
	}

	start := ctx.Start()
	startMem := ctx.StartMem(start)
	startCtrl := ctx.StartCtrl(start)

	entry := proc.ControlFlowHead
	entryInfo := infos[entry]
	if entryInfo == nil {
		return nil, errors.Malformed("lower: entry block is unreachable")
	}
	entryInfo.pendingCtrl = append(entryInfo.pendingCtrl, startCtrl)
	entryInfo.pendingMem = append(entryInfo.pendingMem, startMem)

	values := make(map[*hir.Node]*sb.Node)
	var endPaths []endPath

	for b := proc.ControlFlowHead; b != nil; b = b.Next {
		info := infos[b]
		if info == nil {
			continue
		}

		info.ctrl = info.region
		info.mem = info.memPhi

		for n := b.Start; n != nil; n = n.Next {
			lowerNode(ctx, n, info, values)
		}

		succs := hir.Successors(b)
		switch len(succs) {
		case 0:
			endPaths = append(endPaths, endPath{ctrl: info.ctrl, mem: info.mem, retVal: info.retVal})
		case 1:
			// Straight-line JUMP: hand the block's final ctrl/mem to the
			// single successor (spec.md §4.5 step 4).
			succInfo := infos[succs[0]]
			succInfo.pendingCtrl = append(succInfo.pendingCtrl, info.ctrl)
			succInfo.pendingMem = append(succInfo.pendingMem, info.mem)
		case 2:
			// BRANCH already populated ctrlOut[0]/[1] during translation.
			for i, s := range succs {
				succInfo := infos[s]
				succInfo.pendingCtrl = append(succInfo.pendingCtrl, info.ctrlOut[i])
				succInfo.pendingMem = append(succInfo.pendingMem, info.mem)
			}
		}
	}

	for b := proc.ControlFlowHead; b != nil; b = b.Next {
		info := infos[b]
		if info == nil {
			continue
		}
		ctx.ProvideRegionInputs(info.region, info.pendingCtrl)
		ctx.ProvidePhiInputs(info.memPhi, info.region, info.pendingMem)
	}

	if len(endPaths) == 0 {
		return nil, errors.Malformed("lower: procedure has no path to end")
	}

	endRegion := ctx.Region()
	endMemPhi := ctx.Phi()
	endRetValPhi := ctx.Phi()

	ctrls := make([]*sb.Node, len(endPaths))
	mems := make([]*sb.Node, len(endPaths))
	retVals := make([]*sb.Node, len(endPaths))
	nullNode := ctx.Null()
	for i, p := range endPaths {
		ctrls[i] = p.ctrl
		mems[i] = p.mem
		rv := p.retVal
		if rv == nil {
			rv = nullNode
		}
		retVals[i] = rv
	}

	ctx.ProvideRegionInputs(endRegion, ctrls)
	ctx.ProvidePhiInputs(endMemPhi, endRegion, mems)
	ctx.ProvidePhiInputs(endRetValPhi, endRegion, retVals)

	end := ctx.End(endRegion, endMemPhi, endRetValPhi)

	return ctx.BuildProc(start, end)
}

// lowerNode translates one HIR node into SB, per the translation table in
// spec.md §4.5 step 3. The table as written there omits LOAD/ASSIGN/LOCAL;
// this extends it consistently with the SB op table's own LOAD/STORE
// contract (ctrl, mem, addr[, value]) — see DESIGN.md.
func lowerNode(ctx *sb.Context, n *hir.Node, info *blockInfo, values map[*hir.Node]*sb.Node) {
	switch n.Op {
	case hir.OpIntConst:
		values[n] = ctx.IntConst(truncateTo64(n.IntConst))

	case hir.OpAdd:
		values[n] = ctx.Add(values[n.Binary[0]], values[n.Binary[1]])
	case hir.OpSub:
		values[n] = ctx.Sub(values[n.Binary[0]], values[n.Binary[1]])
	case hir.OpMul:
		values[n] = ctx.Mul(values[n.Binary[0]], values[n.Binary[1]])
	case hir.OpDiv:
		values[n] = ctx.Sdiv(values[n.Binary[0]], values[n.Binary[1]])

	case hir.OpLocal:
		values[n] = ctx.Alloca()

	case hir.OpLoad:
		load := ctx.Load(info.ctrl, info.mem, values[n.Addr])
		values[n] = load

	case hir.OpAssign:
		store := ctx.Store(info.ctrl, info.mem, values[n.Addr], values[n.Value])
		info.mem = store
		values[n] = values[n.Value]

	case hir.OpJump:
		// Control sink; no SB node (spec.md §4.5 step 3).

	case hir.OpBranch:
		branch := ctx.Branch(info.ctrl, values[n.Pred])
		info.ctrl = branch
		info.ctrlOut[0] = ctx.BranchThen(branch)
		info.ctrlOut[1] = ctx.BranchElse(branch)

	case hir.OpRet:
		if n.Value != nil {
			info.retVal = values[n.Value]
		}
	}
}

// truncateTo64 keeps only the low 64 bits of a 128-bit HIR literal,
// reproducing original_source's int_const.low-only lowering. spec.md §9
// flags this as a documented bug, not something to silently fix.
func truncateTo64(v *big.Int) uint64 {
	mask := new(big.Int).SetUint64(^uint64(0))
	low := new(big.Int).And(v, mask)
	return low.Uint64()
}

// reachableBlocks runs the forward DFS from proc.ControlFlowHead over
// hir.Successors that spec.md §4.5 step 1 specifies.
func reachableBlocks(proc *hir.Proc) *container.Set[*hir.Block] {
	visited := container.NewSet[*hir.Block](container.PointerHash64[hir.Block])
	if proc.ControlFlowHead == nil {
		return visited
	}
	stack := container.NewSeq[*hir.Block]()
	stack.Push(proc.ControlFlowHead)
	for stack.Len() > 0 {
		b := stack.Pop()
		if visited.Contains(b) {
			continue
		}
		visited.Add(b)
		for _, s := range hir.Successors(b) {
			if s != nil {
				stack.Push(s)
			}
		}
	}
	return visited
}
