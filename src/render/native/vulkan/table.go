package vulkan

import (
	"sync"

	"vkgraph/src/render/native"
)

// table maps native handles to Vulkan objects. Handles are never reused.
type table struct {
	mu      sync.Mutex
	next    native.Handle
	objects map[native.Handle]any
}

func newTable() table {
	return table{objects: make(map[native.Handle]any)}
}

func (t *table) put(v any) native.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.objects[t.next] = v
	return t.next
}

func (t *table) drop(h native.Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.objects, h)
}

func (t *table) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.objects)
}

// lookup returns the object stored under h, or the zero T for NullHandle
// and unknown handles.
func lookup[T any](t *table, h native.Handle) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, _ := t.objects[h].(T)
	return v
}

func lookupAll[T any](t *table, hs []native.Handle) []T {
	out := make([]T, len(hs))
	for i, h := range hs {
		out[i] = lookup[T](t, h)
	}
	return out
}

// take is lookup followed by drop.
func take[T any](t *table, h native.Handle) T {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, _ := t.objects[h].(T)
	delete(t.objects, h)
	return v
}
