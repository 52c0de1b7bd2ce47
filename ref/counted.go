package ref

import (
	"runtime"
	"weak"
)

// Counted is embedded in every object the scripting runtime can see.
//
// The owning object is cleaned up exactly once: when the native count is zero
// and no runtime slot holds it. Cleanup does not imply the memory is gone; once
// a proxy has been handed to scripts the collector decides when the object is
// reclaimed.
type Counted struct {
	table   *Table
	owner   any
	cleanup func()

	slot  int
	count int

	cleaned   bool
	reclaimed bool

	exposed  bool
	proxy    weak.Pointer[Proxy]
	proxyGen uint64
}

// Bind attaches the handle to a runtime table. owner is what scripts see
// through the proxy and cleanup is the object's native teardown.
func (c *Counted) Bind(table *Table, owner any, cleanup func()) {
	if c == nil {
		panic(ErrNotBound)
	}
	c.table = table
	c.owner = owner
	c.cleanup = cleanup
}

func (c *Counted) Bound() bool {
	return c != nil && c.table != nil
}

func (c *Counted) Table() *Table {
	if c == nil {
		return nil
	}
	return c.table
}

func (c *Counted) Count() int {
	if c == nil {
		return 0
	}
	return c.count
}

func (c *Counted) Slot() int {
	if c == nil {
		return 0
	}
	return c.slot
}

func (c *Counted) Cleaned() bool {
	return c != nil && c.cleaned
}

func (c *Counted) Reclaimed() bool {
	return c != nil && c.reclaimed
}

// Ref takes a native reference, allocating a runtime slot on first use.
func (c *Counted) Ref() {
	if c == nil || c.table == nil {
		panic(ErrNotBound)
	}
	if c.cleaned {
		panic(ErrDestroyed)
	}
	if c.slot == 0 {
		c.slot = c.table.alloc(c.Expose())
		c.count = 1
		return
	}
	c.count++
}

// Unref drops a native reference. At zero the runtime slot is released and
// the object becomes collectable by the runtime.
func (c *Counted) Unref() {
	if c == nil || c.count <= 0 {
		return
	}
	c.count--
	if c.count == 0 && c.slot != 0 {
		c.table.release(c.slot)
		c.slot = 0
	}
}

// Destroy is the native side giving up the object. With an active slot it is
// one Unref, and cleanup runs if that was the last reference. Without a slot
// cleanup runs immediately.
func (c *Counted) Destroy() {
	if c == nil || c.cleaned {
		return
	}
	if c.slot != 0 && c.count > 0 {
		c.Unref()
		if c.count > 0 {
			return
		}
	}
	c.runCleanup()
	if !c.exposed {
		c.reclaimed = true
	}
}

// Finalize is the collector's path: the script-visible proxy became
// unreachable. Cleanup only runs if native code holds no references.
func (c *Counted) Finalize() {
	if c == nil {
		return
	}
	c.finalize(c.proxyGen)
}

func (c *Counted) finalize(gen uint64) {
	// A newer proxy was handed out after this one; its own finalization decides.
	if gen != c.proxyGen {
		return
	}
	if c.count > 0 {
		return
	}
	c.runCleanup()
	c.reclaimed = true
}

// Expose returns the proxy scripts use to reach the owner, creating one if
// no live proxy exists.
func (c *Counted) Expose() *Proxy {
	if c == nil || c.table == nil {
		panic(ErrNotBound)
	}
	if p := c.proxy.Value(); p != nil {
		return p
	}
	c.proxyGen++
	p := &Proxy{target: c.owner, handle: c}
	c.proxy = weak.Make(p)
	c.exposed = true
	runtime.AddCleanup(p, c.table.enqueue, finalization{handle: c, gen: c.proxyGen})
	return p
}

func (c *Counted) runCleanup() {
	if c.cleaned {
		return
	}
	c.cleaned = true
	if c.cleanup != nil {
		c.cleanup()
	}
}
