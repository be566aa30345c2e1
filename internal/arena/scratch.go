package arena

import "fmt"

// ErrScratchExhausted is returned by ScratchPool.Acquire when every pool
// slot conflicts with the caller-supplied conflict list, per spec.md §4.1:
// "Fails with ScratchExhausted if all arenas conflict."
type ErrScratchExhausted struct {
	Conflicts int
}

func (e ErrScratchExhausted) Error() string {
	return fmt.Sprintf("arena: scratch pool exhausted (%d conflicting arenas declared)", e.Conflicts)
}

// ScratchPool lends out a small fixed number of arenas for the lifetime of a
// nested call, guaranteeing the lent arena does not alias any arena in the
// caller's declared conflict set. Acquire/Release nest strictly LIFO.
type ScratchPool struct {
	slots []*Arena
	marks []Watermark
	// lent tracks, for each slot, whether it is currently checked out.
	lent []bool
}

// NewScratchPool creates a pool of n backing arenas; spec.md recommends 2
// ("typically 2... k >= max concurrent nesting").
func NewScratchPool(n int) *ScratchPool {
	p := &ScratchPool{
		slots: make([]*Arena, n),
		marks: make([]Watermark, n),
		lent:  make([]bool, n),
	}
	for i := range p.slots {
		p.slots[i] = New()
	}
	return p
}

// Acquire returns the first pool arena not present in conflicts, recording
// its current watermark so Release can rewind it.
func (p *ScratchPool) Acquire(conflicts ...*Arena) (*Arena, error) {
	for i, a := range p.slots {
		if p.lent[i] {
			continue
		}
		if containsArena(conflicts, a) {
			continue
		}
		p.lent[i] = true
		p.marks[i] = a.Mark()
		return a, nil
	}
	return nil, ErrScratchExhausted{Conflicts: len(conflicts)}
}

// Release rewinds a, which must be the most recently acquired still-lent
// arena (LIFO discipline), back to its acquire-time watermark.
func (p *ScratchPool) Release(a *Arena) {
	for i := len(p.slots) - 1; i >= 0; i-- {
		if p.slots[i] == a && p.lent[i] {
			a.Rewind(p.marks[i])
			p.lent[i] = false
			return
		}
	}
	panic("arena: release of an arena not currently lent by this pool")
}

func containsArena(set []*Arena, a *Arena) bool {
	for _, s := range set {
		if s == a {
			return true
		}
	}
	return false
}
