// Package arena provides bump allocation for the compiler's IR graphs.
//
// Nodes in both the HIR and the SB graph are allocated here rather than with
// plain `new`/`make` so that an entire procedure's IR can be released in one
// shot and so that node identity (pointer equality) is meaningful for the
// lifetime of a Context, matching the allocation discipline spec.md §3/§9
// calls for ("arena + index identifiers... not owning smart pointers").
package arena

import "reflect"

// chunkLen is the number of elements per typed slab.
const chunkLen = 256

// Arena is a bump allocator keyed by allocated type: one growing list of
// fixed-size, element-typed slabs per T ever passed to Alloc. A slab is
// only ever appended to the list, never itself reallocated, so pointers
// obtained from Alloc stay valid for the Arena's entire lifetime, matching
// the "pointers remain stable" invariant.
//
// Each slab is a real []T, not a []byte reinterpreted via unsafe: an IR
// node (hir.Node, sb.Node, hir.Block, ...) is full of pointer fields
// (Ins []*Node, Users *User, Next/Prev *Node, IntConst *big.Int, ...), and
// make([]byte, n) is allocated as a noscan span — the garbage collector
// never traces into it, so anything reachable only through a pointer
// buried in that memory (a linked User, an Ins backing array, a big.Int
// literal) could be collected out from under a still-referenced node.
// Backing every type with its own []T keeps those fields under the
// runtime's ordinary pointer bitmap, where the GC actually looks.
type Arena struct {
	pools map[reflect.Type]anyPool
}

// anyPool is the type-erased interface each pool[T] satisfies, letting
// Arena hold one concrete, element-typed pool per allocated type behind a
// single map.
type anyPool interface {
	len() int
	truncate(n int)
}

type pool[T any] struct {
	chunks [][]T
}

func (p *pool[T]) len() int {
	if len(p.chunks) == 0 {
		return 0
	}
	return (len(p.chunks)-1)*chunkLen + len(p.chunks[len(p.chunks)-1])
}

// truncate discards every element allocated after the first n, dropping
// whole trailing chunks and shortening the chunk straddling the boundary.
func (p *pool[T]) truncate(n int) {
	full, rem := n/chunkLen, n%chunkLen
	if rem == 0 {
		p.chunks = p.chunks[:full]
		return
	}
	p.chunks = p.chunks[:full+1]
	p.chunks[full] = p.chunks[full][:rem]
}

func (p *pool[T]) alloc() *T {
	last := len(p.chunks) - 1
	if last < 0 || len(p.chunks[last]) == chunkLen {
		p.chunks = append(p.chunks, make([]T, 0, chunkLen))
		last++
	}
	var zero T
	p.chunks[last] = append(p.chunks[last], zero)
	return &p.chunks[last][len(p.chunks[last])-1]
}

// New allocates a fresh Arena with no backing pools; the first Alloc[T]
// call for a given T creates its pool on demand.
func New() *Arena {
	return &Arena{pools: make(map[reflect.Type]anyPool)}
}

func poolFor[T any](a *Arena) *pool[T] {
	var zero T
	t := reflect.TypeOf(zero)
	if p, ok := a.pools[t]; ok {
		return p.(*pool[T])
	}
	p := &pool[T]{}
	a.pools[t] = p
	return p
}

// Alloc allocates a zero-valued T out of the arena and returns a stable
// pointer to it.
func Alloc[T any](a *Arena) *T {
	return poolFor[T](a).alloc()
}

// Reset discards every pool, releasing everything allocated so far. It is
// the bulk-release half of the arena lifecycle described in spec.md §5:
// HIR is "owned by a caller-supplied arena; released in bulk."
func (a *Arena) Reset() {
	a.pools = make(map[reflect.Type]anyPool)
}

// Watermark captures, per allocated type, how many elements existed at the
// time of capture, so a scratch borrower can later rewind back to it.
type Watermark struct {
	counts map[reflect.Type]int
}

// Mark returns the Arena's current Watermark.
func (a *Arena) Mark() Watermark {
	counts := make(map[reflect.Type]int, len(a.pools))
	for t, p := range a.pools {
		counts[t] = p.len()
	}
	return Watermark{counts: counts}
}

// Rewind restores the Arena to a previously captured Watermark, discarding
// everything allocated since — including pools for types first allocated
// after the mark, which are truncated back to empty. It must only be used
// on scratch arenas that are exclusively owned by the rewinding scope (see
// ScratchPool).
func (a *Arena) Rewind(w Watermark) {
	for t, p := range a.pools {
		n := w.counts[t] // zero value if t wasn't allocated yet at Mark time
		p.truncate(n)
	}
}
