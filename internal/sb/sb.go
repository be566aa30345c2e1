// Package sb implements the sea-of-nodes graph IR: nodes with explicit
// control, memory, and data inputs and a reverse user list, per spec.md §3/§4.4.
package sb

import (
	"bsc/internal/arena"
)

// Op enumerates SB node operations, mirroring original_source/sb/sb.h's
// X-macro op table (ops.inc is not itself part of the retrieval pack; the
// op set is reconstructed from spec.md §3's operation table, which lists
// the same members).
type Op int

const (
	OpInvalid Op = iota
	OpNull
	OpIntConst
	OpAlloca
	OpAdd
	OpSub
	OpMul
	OpSdiv
	OpStart
	OpStartMem
	OpStartCtrl
	OpEnd
	OpRegion
	OpPhi
	OpBranch
	OpBranchThen
	OpBranchElse
	OpLoad
	OpStore
	numOps
)

var mnemonics = [numOps]string{
	OpInvalid:    "<error>",
	OpNull:       "null",
	OpIntConst:   "int_const",
	OpAlloca:     "alloca",
	OpAdd:        "add",
	OpSub:        "sub",
	OpMul:        "mul",
	OpSdiv:       "sdiv",
	OpStart:      "start",
	OpStartMem:   "start.mem",
	OpStartCtrl:  "start.ctrl",
	OpEnd:        "end",
	OpRegion:     "region",
	OpPhi:        "phi",
	OpBranch:     "branch",
	OpBranchThen: "branch.then",
	OpBranchElse: "branch.else",
	OpLoad:       "load",
	OpStore:      "store",
}

// Mnemonic returns op's dotted mnemonic, e.g. "start.mem" for OpStartMem —
// the projection-name suffix used by the Graphviz dump is everything after
// the last '.'.
func (op Op) Mnemonic() string { return mnemonics[op] }

// Flags are the per-node bits from spec.md §3: PROJECTION, STARTS_BB,
// TRANSFERS_CTRL.
type Flags uint8

const FlagNone Flags = 0

const (
	flagProjection Flags = 1 << iota
	flagStartsBasicBlock
	flagTransfersControl
)

func (f Flags) IsProjection() bool     { return f&flagProjection != 0 }
func (f Flags) StartsBasicBlock() bool { return f&flagStartsBasicBlock != 0 }
func (f Flags) TransfersControl() bool { return f&flagTransfersControl != 0 }

// User is a reverse (def-use) edge: node.Ins[Index] == the node this User
// hangs off of. Users form a singly-linked list per def, per spec.md §3.
type User struct {
	Next  *User
	Index int
	Node  *Node
}

// Node is a single SB graph node. Data payloads vary by Op; rather than a
// C-style union (spec.md §9 rejects "one fat union"), each op's payload
// gets its own field.
type Node struct {
	Op    Op
	Flags Flags

	Ins   []*Node
	Users *User

	IntConst uint64 // OpIntConst only
}

// Context owns the arena and scratch pool backing one compilation's SB
// graph; all Nodes it constructs live until the Context is discarded
// (spec.md §5).
type Context struct {
	Arena   *arena.Arena
	Scratch *arena.ScratchPool
}

// NewContext creates an SB Context with a fresh arena and a 2-slot scratch
// pool, matching spec.md §4.1's "k >= max concurrent nesting, typically 2".
func NewContext() *Context {
	return &Context{
		Arena:   arena.New(),
		Scratch: arena.NewScratchPool(2),
	}
}

func (c *Context) newNode(op Op, numIns int, flags Flags) *Node {
	n := arena.Alloc[Node](c.Arena)
	n.Op = op
	n.Flags = flags
	if numIns > 0 {
		n.Ins = make([]*Node, numIns)
	}
	return n
}

// setInput fills ins[index] with input and prepends a User edge to
// input.Users, matching original_source/sb/sb.c's set_input — and per
// spec.md §9's documented ambiguity, it stores the real input node, never
// node itself ("the former is clearly incorrect... implement the latter").
func setInput(node *Node, index int, input *Node) {
	if node.Ins[index] != nil {
		panic("sb: input slot filled twice")
	}
	node.Ins[index] = input
	u := &User{Index: index, Node: node}
	u.Next = input.Users
	input.Users = u
}

// allocInputs sizes the input slice of a node created with no inputs; it is
// used by the deferred REGION/PHI construction path and panics if the node's
// inputs were already allocated.
func allocInputs(node *Node, numIns int) {
	if len(node.Ins) != 0 {
		panic("sb: inputs already allocated")
	}
	node.Ins = make([]*Node, numIns)
}

func (c *Context) Null() *Node {
	return c.newNode(OpNull, 0, FlagNone)
}

func (c *Context) IntConst(value uint64) *Node {
	n := c.newNode(OpIntConst, 0, FlagNone)
	n.IntConst = value
	return n
}

func (c *Context) Alloca() *Node {
	return c.newNode(OpAlloca, 0, FlagNone)
}

func (c *Context) newBinary(op Op, left, right *Node) *Node {
	n := c.newNode(op, 2, FlagNone)
	setInput(n, 0, left)
	setInput(n, 1, right)
	return n
}

func (c *Context) Add(left, right *Node) *Node  { return c.newBinary(OpAdd, left, right) }
func (c *Context) Sub(left, right *Node) *Node  { return c.newBinary(OpSub, left, right) }
func (c *Context) Mul(left, right *Node) *Node  { return c.newBinary(OpMul, left, right) }
func (c *Context) Sdiv(left, right *Node) *Node { return c.newBinary(OpSdiv, left, right) }

func (c *Context) Start() *Node {
	return c.newNode(OpStart, 0, flagStartsBasicBlock|flagTransfersControl)
}

func (c *Context) End(ctrl, mem, retVal *Node) *Node {
	n := c.newNode(OpEnd, 3, FlagNone)
	setInput(n, 0, ctrl)
	setInput(n, 1, mem)
	setInput(n, 2, retVal)
	return n
}

func (c *Context) newProj(op Op, input *Node, extra Flags) *Node {
	n := c.newNode(op, 1, flagProjection|extra)
	setInput(n, 0, input)
	return n
}

func (c *Context) StartMem(start *Node) *Node {
	if start.Op != OpStart {
		panic("sb: StartMem requires a START node")
	}
	return c.newProj(OpStartMem, start, FlagNone)
}

func (c *Context) StartCtrl(start *Node) *Node {
	if start.Op != OpStart {
		panic("sb: StartCtrl requires a START node")
	}
	return c.newProj(OpStartCtrl, start, flagTransfersControl)
}

func (c *Context) Region() *Node {
	return c.newNode(OpRegion, 0, flagStartsBasicBlock|flagTransfersControl)
}

func (c *Context) Phi() *Node {
	return c.newNode(OpPhi, 0, FlagNone)
}

// ProvideRegionInputs back-patches a deferred REGION's predecessor-control
// inputs, per spec.md §4.4's "construct now, back-patch" pattern.
func (c *Context) ProvideRegionInputs(region *Node, ins []*Node) {
	if region.Op != OpRegion {
		panic("sb: ProvideRegionInputs requires a REGION node")
	}
	allocInputs(region, len(ins))
	for i, in := range ins {
		setInput(region, i, in)
	}
}

// ProvidePhiInputs back-patches a deferred PHI: input 0 is the owning
// region, inputs 1..n are the per-predecessor values, matching spec.md §3's
// "len(PHI.ins) == len(REGION.ins) + 1".
func (c *Context) ProvidePhiInputs(phi, region *Node, ins []*Node) {
	if phi.Op != OpPhi || region.Op != OpRegion {
		panic("sb: ProvidePhiInputs requires a PHI and its REGION")
	}
	if len(ins) != len(region.Ins) {
		panic("sb: phi input count must match region input count")
	}
	allocInputs(phi, len(ins)+1)
	setInput(phi, 0, region)
	for i, in := range ins {
		setInput(phi, i+1, in)
	}
}

func (c *Context) Branch(ctrl, predicate *Node) *Node {
	n := c.newNode(OpBranch, 2, flagTransfersControl)
	setInput(n, 0, ctrl)
	setInput(n, 1, predicate)
	return n
}

func (c *Context) BranchThen(branch *Node) *Node {
	if branch.Op != OpBranch {
		panic("sb: BranchThen requires a BRANCH node")
	}
	return c.newProj(OpBranchThen, branch, flagStartsBasicBlock|flagTransfersControl)
}

func (c *Context) BranchElse(branch *Node) *Node {
	if branch.Op != OpBranch {
		panic("sb: BranchElse requires a BRANCH node")
	}
	return c.newProj(OpBranchElse, branch, flagStartsBasicBlock|flagTransfersControl)
}

func (c *Context) Load(ctrl, mem, addr *Node) *Node {
	n := c.newNode(OpLoad, 3, FlagNone)
	setInput(n, 0, ctrl)
	setInput(n, 1, mem)
	setInput(n, 2, addr)
	return n
}

func (c *Context) Store(ctrl, mem, addr, value *Node) *Node {
	n := c.newNode(OpStore, 4, FlagNone)
	setInput(n, 0, ctrl)
	setInput(n, 1, mem)
	setInput(n, 2, addr)
	setInput(n, 3, value)
	return n
}
