// Package ref implements the lifetime protocol shared by every object exposed
// to the scripting runtime: a native reference count composed with a single
// slot in the runtime's persistent-object table.
package ref

import (
	"errors"
	"sync"
)

var (
	ErrNotBound  = errors.New("ref: object not bound to a runtime")
	ErrDestroyed = errors.New("ref: object destroyed")
)

// Table is the scripting runtime's table of persistent object references.
// A slot keeps a proxy strongly reachable; released slots leave the proxy to
// the Go collector, which reports back through Collect.
type Table struct {
	slots map[int]*Proxy
	next  int

	mu      sync.Mutex
	pending []finalization
}

type finalization struct {
	handle *Counted
	gen    uint64
}

func NewTable() *Table {
	return &Table{slots: make(map[int]*Proxy)}
}

// Len returns the number of active slots.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.slots)
}

// Lookup returns the proxy held in slot, if the slot is active.
func (t *Table) Lookup(slot int) (*Proxy, bool) {
	if t == nil || slot <= 0 {
		return nil, false
	}
	p, ok := t.slots[slot]
	return p, ok
}

// Collect runs finalizers for proxies the Go collector found unreachable since
// the previous call. It must be called from the goroutine that owns the
// objects, once per frame.
func (t *Table) Collect() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	for _, f := range pending {
		f.handle.finalize(f.gen)
	}
	return len(pending)
}

// Pending reports how many finalizations are queued for the next Collect.
func (t *Table) Pending() int {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Table) alloc(p *Proxy) int {
	t.next++
	t.slots[t.next] = p
	return t.next
}

func (t *Table) release(slot int) {
	delete(t.slots, slot)
}

// enqueue runs on the runtime's cleanup goroutine.
func (t *Table) enqueue(f finalization) {
	t.mu.Lock()
	t.pending = append(t.pending, f)
	t.mu.Unlock()
}
