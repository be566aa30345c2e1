// Package hir implements the high-level IR: a linear list of basic blocks,
// each an intrusive doubly-linked list of operation nodes, built directly by
// the parser (spec.md §1, §3).
package hir

import (
	"math/big"

	"bsc/internal/arena"
	"bsc/internal/lexer"
)

// Op enumerates the HIR operations from spec.md §3.
type Op int

const (
	OpIntConst Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpLoad
	OpAssign
	OpLocal
	OpJump
	OpBranch
	OpRet
)

func (op Op) String() string {
	switch op {
	case OpIntConst:
		return "int_const"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpLoad:
		return "load"
	case OpAssign:
		return "assign"
	case OpLocal:
		return "local"
	case OpJump:
		return "jump"
	case OpBranch:
		return "branch"
	case OpRet:
		return "ret"
	default:
		return "?"
	}
}

// Node is a single HIR operation. Rather than the source's tagged C union
// over `as`, each op's payload gets its own named field (spec.md §9: "prefer
// a sum type with per-variant fields; reject the one fat union layout") —
// only the fields relevant to Op are meaningful for a given node.
type Node struct {
	Block *Block
	Prev  *Node
	Next  *Node
	Op    Op
	Token lexer.Token
	Tid   int // ephemeral ordinal assigned by dump traversal; not stable

	IntConst *big.Int  // OpIntConst
	Binary   [2]*Node  // OpAdd/OpSub/OpMul/OpDiv: [left, right]
	Addr     *Node     // OpLoad, OpAssign
	Value    *Node     // OpAssign, OpRet (nil = no return value)
	Target   *Block    // OpJump
	Pred     *Node     // OpBranch
	Then     *Block    // OpBranch
	Else     *Block    // OpBranch
}

// Block is a basic block: an intrusive doubly-linked list of Nodes, and a
// link to the next block in the owning Proc's list.
type Block struct {
	Next  *Block
	Start *Node
	End   *Node
	Tid   int
}

// Proc is an ordered list of Blocks, linked via Block.Next.
type Proc struct {
	ControlFlowHead *Block
	tail            *Block
	arena           *arena.Arena
}

// NewProc creates an empty Proc whose nodes and blocks are allocated from a.
func NewProc(a *arena.Arena) *Proc {
	return &Proc{arena: a}
}

// Tail returns the most recently created block, the one a parser should be
// appending nodes to.
func (p *Proc) Tail() *Block {
	return p.tail
}

// NewBlock allocates a fresh Block and links it as the Proc's new tail,
// matching the parser's new_block: "creates a block, links it as the
// previous block's successor".
func (p *Proc) NewBlock() *Block {
	b := arena.Alloc[Block](p.arena)
	if p.tail == nil {
		p.ControlFlowHead = b
	} else {
		p.tail.Next = b
	}
	p.tail = b
	return b
}

// NewNode allocates a fresh, unattached Node of the given op/token. Callers
// attach it to a block with Append.
func (p *Proc) NewNode(op Op, tok lexer.Token) *Node {
	n := arena.Alloc[Node](p.arena)
	n.Op = op
	n.Token = tok
	return n
}

// fixLinks repairs the block's Start/End sentinels around a newly-spliced
// node, mirroring original_source/hir.c's fix_links.
func fixLinks(n *Node) {
	if n.Prev != nil {
		n.Prev.Next = n
	} else {
		n.Block.Start = n
	}
	if n.Next != nil {
		n.Next.Prev = n
	} else {
		n.Block.End = n
	}
}

// Append appends node to the end of block's intrusive node list.
func Append(block *Block, node *Node) {
	if node.Block != nil {
		panic("hir: node already belongs to a block")
	}
	node.Block = block
	node.Next = nil
	node.Prev = block.End
	fixLinks(node)
}

// Successors returns the blocks a block's terminator can transfer control
// to, in the order spec.md §5 specifies: BRANCH is [then, else], JUMP is
// [target], everything else (including RET, and a block with no
// terminator) has none.
func Successors(b *Block) []*Block {
	if b.End == nil {
		return nil
	}
	switch b.End.Op {
	case OpJump:
		return []*Block{b.End.Target}
	case OpBranch:
		return []*Block{b.End.Then, b.End.Else}
	default:
		return nil
	}
}
