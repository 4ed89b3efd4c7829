// Package refcount provides the atomic holder count behind every shared
// wrapper reference.
package refcount

import (
	"fmt"
	"sync/atomic"
)

// Count is a holder count. The zero value has no holders and cannot be
// retained; call Init to hand out the first reference.
type Count struct {
	n atomic.Int64
}

// Init sets the count to one. It must be called exactly once, before the
// counted object is shared.
func (c *Count) Init() { c.n.Store(1) }

// Load returns the current number of holders.
func (c *Count) Load() int64 { return c.n.Load() }

// Retain adds a holder. Retaining an object that has already dropped to
// zero is a use-after-release bug and panics.
func (c *Count) Retain() {
	if c.n.Add(1) <= 1 {
		panic("refcount: retain after release")
	}
}

// TryRetain adds a holder unless the count has already reached zero.
func (c *Count) TryRetain() bool {
	for {
		n := c.n.Load()
		if n <= 0 {
			return false
		}
		if c.n.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops a holder and reports whether it was the last one. Exactly
// one caller observes true.
func (c *Count) Release() bool {
	n := c.n.Add(-1)
	if n < 0 {
		panic(fmt.Sprintf("refcount: too many releases (%d)", n))
	}
	return n == 0
}
