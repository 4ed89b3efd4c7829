package render

import (
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"vkgraph/src/render/native"
	"vkgraph/src/render/refcount"
)

// ObjectInfo describes one live object.
type ObjectInfo struct {
	ID           string        `yaml:"id"`
	Kind         string        `yaml:"kind"`
	Handle       native.Handle `yaml:"handle"`
	Refs         int64         `yaml:"refs"`
	Dependencies []string      `yaml:"dependencies,omitempty"`
}

// entry must not point back at the wrapper, or leaked wrappers would never
// become unreachable.
type entry struct {
	seq  uint64
	info ObjectInfo
	refs *refcount.Count
}

var registry = struct {
	sync.Mutex
	seq     uint64
	objects map[uuid.UUID]*entry
}{objects: make(map[uuid.UUID]*entry)}

func register(c *core) {
	deps := make([]string, 0, len(c.deps))
	for _, d := range c.deps {
		deps = append(deps, d.base().id.String())
	}

	registry.Lock()
	defer registry.Unlock()
	registry.seq++
	registry.objects[c.id] = &entry{
		seq: registry.seq,
		info: ObjectInfo{
			ID:           c.id.String(),
			Kind:         c.kind.String(),
			Handle:       c.cell.Raw(),
			Dependencies: deps,
		},
		refs: c.refs,
	}
}

func unregister(id uuid.UUID) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.objects, id)
}

// LiveObjects returns every object that has been created and not yet
// destroyed, oldest first.
func LiveObjects() []ObjectInfo {
	registry.Lock()
	entries := make([]*entry, 0, len(registry.objects))
	for _, e := range registry.objects {
		entries = append(entries, e)
	}
	registry.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]ObjectInfo, len(entries))
	for i, e := range entries {
		out[i] = e.info
		out[i].Refs = e.refs.Load()
		out[i].Dependencies = append([]string(nil), e.info.Dependencies...)
	}
	return out
}

// DumpGraph writes the live dependency graph to w as YAML.
func DumpGraph(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(struct {
		Objects []ObjectInfo `yaml:"objects"`
	}{LiveObjects()}); err != nil {
		return err
	}
	return enc.Close()
}
