// Package llvmgen is an experimental secondary backend: it lowers a
// scheduled SB graph to textual LLVM IR via github.com/llir/llvm, per
// SPEC_FULL.md §4.13. It walks the gcm scheduler's control-block skeleton
// and emits one LLVM function per bs procedure, with REGION becoming a
// basic block and BRANCH an ir.TermCondBr.
//
// gcm.BuildCFG only schedules control-transferring nodes ("the current
// core defines only block formation and node->block assignment", spec.md
// §4.8) — arithmetic, ALLOCA, LOAD/STORE, and value PHIs are left
// unscheduled, since full GCM (early/late scheduling of data nodes into
// blocks) is itself a planned extension, not yet part of this repository.
// llvmgen fills that gap the minimal way a demand-driven emitter can: it
// materializes a data node's LLVM value the first time some control
// anchor (a BRANCH predicate or the final RET value) needs it, walking its
// Ins recursively and placing the resulting instructions in that anchor's
// block. This does not attempt true code motion (hoisting a value to its
// earliest valid block); it is a placeholder precise enough for the
// straight-line and branching arithmetic spec.md's own end-to-end
// scenarios (S1-S4) exercise. Memory operations are only partly emitted:
// ALLOCA becomes an entry-block alloca and LOAD a load from it, but STORE
// nodes are never emitted, because materialization only follows data
// inputs from a BRANCH predicate or the RET value and none of those lead to
// a STORE. An emitted LOAD therefore does not see the stores that precede
// it on the SB memory chain.
package llvmgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"bsc/internal/sb"
	"bsc/internal/sb/gcm"
)

type emitter struct {
	cfg     *gcm.CFG
	blocks  map[*gcm.Block]*ir.Block
	values  map[*sb.Node]value.Value
	allocas map[*sb.Node]*ir.InstAlloca
	entry   *ir.Block
}

// Emit lowers proc to an LLVM module and returns its textual IR.
func Emit(name string, proc *sb.Proc) (string, error) {
	cfg := gcm.BuildCFG(proc)

	m := ir.NewModule()
	fn := m.NewFunc(name, types.I64)

	e := &emitter{
		cfg:     cfg,
		blocks:  make(map[*gcm.Block]*ir.Block),
		values:  make(map[*sb.Node]value.Value),
		allocas: make(map[*sb.Node]*ir.InstAlloca),
	}

	for b := cfg.Head; b != nil; b = b.Next {
		e.blocks[b] = fn.NewBlock(fmt.Sprintf("bb%p", b))
	}
	e.entry = e.blocks[cfg.Head]

	for b := cfg.Head; b != nil; b = b.Next {
		irb := e.blocks[b]
		term := b.Nodes[len(b.Nodes)-1]

		switch {
		case term.Op == sb.OpBranch:
			pred := e.value(irb, term.Ins[1])
			cond := irb.NewICmp(enum.IPredNE, pred, constant.NewInt(types.I64, 0))
			thenBlk := e.controlSuccessor(term, sb.OpBranchThen)
			elseBlk := e.controlSuccessor(term, sb.OpBranchElse)
			irb.NewCondBr(cond, thenBlk, elseBlk)
		case term == proc.End.Ins[0]:
			irb.NewRet(e.value(irb, proc.End.Ins[2]))
		default:
			if next := e.anyControlSuccessor(term); next != nil {
				irb.NewBr(next)
			}
		}
	}

	return m.String(), nil
}

// value materializes node's LLVM value on demand, emitting its
// instructions into irb (see the package doc's discussion of why this
// isn't true code motion).
func (e *emitter) value(irb *ir.Block, node *sb.Node) value.Value {
	if node == nil {
		return constant.NewInt(types.I64, 0)
	}
	if v, ok := e.values[node]; ok {
		return v
	}

	var v value.Value
	switch node.Op {
	case sb.OpIntConst:
		v = constant.NewInt(types.I64, int64(node.IntConst))
	case sb.OpAdd:
		v = irb.NewAdd(e.value(irb, node.Ins[0]), e.value(irb, node.Ins[1]))
	case sb.OpSub:
		v = irb.NewSub(e.value(irb, node.Ins[0]), e.value(irb, node.Ins[1]))
	case sb.OpMul:
		v = irb.NewMul(e.value(irb, node.Ins[0]), e.value(irb, node.Ins[1]))
	case sb.OpSdiv:
		v = irb.NewSDiv(e.value(irb, node.Ins[0]), e.value(irb, node.Ins[1]))
	case sb.OpAlloca:
		v = e.alloca(node)
	case sb.OpLoad:
		v = irb.NewLoad(types.I64, e.alloca(node.Ins[2]))
	case sb.OpPhi:
		phi := irb.NewPhi()
		e.values[node] = phi // break cycles through loop-carried phis
		for i := 1; i < len(node.Ins); i++ {
			pred := node.Ins[0].Ins[i-1]
			predBlock := e.controlBlockOf(pred)
			phi.Incs = append(phi.Incs, ir.NewIncoming(e.value(e.blockOrIrb(predBlock, irb), node.Ins[i]), predBlock))
		}
		return phi
	case sb.OpNull:
		v = constant.NewInt(types.I64, 0)
	default:
		v = constant.NewInt(types.I64, 0)
	}

	e.values[node] = v
	return v
}

func (e *emitter) blockOrIrb(b, fallback *ir.Block) *ir.Block {
	if b != nil {
		return b
	}
	return fallback
}

func (e *emitter) alloca(node *sb.Node) *ir.InstAlloca {
	if a, ok := e.allocas[node]; ok {
		return a
	}
	a := e.entry.NewAlloca(types.I64)
	e.allocas[node] = a
	return a
}

// controlBlockOf returns the LLVM block a control node was scheduled into.
func (e *emitter) controlBlockOf(n *sb.Node) *ir.Block {
	gb, ok := e.cfg.BlockOf.Get(n)
	if !ok {
		return nil
	}
	return e.blocks[gb]
}

// controlSuccessor finds term's control-transferring user with the given
// op (one of its BRANCH_THEN/BRANCH_ELSE projections) and returns its
// block.
func (e *emitter) controlSuccessor(term *sb.Node, op sb.Op) *ir.Block {
	for u := term.Users; u != nil; u = u.Next {
		if u.Node.Op == op {
			return e.controlBlockOf(u.Node)
		}
	}
	return nil
}

// anyControlSuccessor returns the block of term's sole control-transferring
// user, or nil if it has none (a dead end other than end_region, which the
// caller special-cases).
func (e *emitter) anyControlSuccessor(term *sb.Node) *ir.Block {
	for u := term.Users; u != nil; u = u.Next {
		if u.Node.Flags.TransfersControl() {
			return e.controlBlockOf(u.Node)
		}
	}
	return nil
}
