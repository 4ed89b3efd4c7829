package render

import (
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vkgraph/src/render/handle"
	"vkgraph/src/render/native"
	"vkgraph/src/render/refcount"
)

// Object is implemented by every wrapper.
//
// A wrapper starts with one holder, the caller of its constructor. Every
// object built on top of it takes another. When the last holder calls
// Release the native handle is destroyed and then the wrapper's own
// dependencies are released, newest first, which may cascade further down
// the graph.
type Object interface {
	Kind() Kind
	ID() uuid.UUID
	// Handle returns the native handle for direct use. It does not take a
	// reference: the value is only valid while the caller keeps the wrapper
	// alive, and nothing detects use after that.
	Handle() native.Handle
	// Refs returns the current holder count.
	Refs() int64
	// TryRetain takes a reference unless the object was already destroyed.
	TryRetain() bool
	// Release drops a reference. Releasing more often than retaining panics.
	Release()

	base() *core
}

type core struct {
	kind Kind
	id   uuid.UUID
	drv  native.Driver
	cell *handle.Cell
	// refs is allocated on its own so the registry can read it without
	// keeping the wrapper reachable.
	refs *refcount.Count
	deps []Object
}

func (c *core) base() *core { return c }

func (c *core) Kind() Kind { return c.kind }

func (c *core) ID() uuid.UUID { return c.id }

func (c *core) Handle() native.Handle { return c.cell.Raw() }

func (c *core) Refs() int64 { return c.refs.Load() }

func (c *core) retain() {
	c.refs.Retain()
	if m := collector(); m != nil {
		m.RecordRetain()
	}
}

func (c *core) TryRetain() bool {
	if !c.refs.TryRetain() {
		return false
	}
	if m := collector(); m != nil {
		m.RecordRetain()
	}
	return true
}

func (c *core) Release() {
	if m := collector(); m != nil {
		m.RecordRelease()
	}
	if c.refs.Release() {
		c.teardown()
	}
}

func (c *core) teardown() {
	err := c.cell.Release()
	unregister(c.id)
	if m := collector(); m != nil {
		m.RecordDestroyed(c.kind.String(), err)
	}
	if err != nil {
		Logger().Warn("destroy failed",
			zap.Stringer("kind", c.kind), zap.Stringer("id", c.id), zap.Error(err))
	} else {
		Logger().Debug("destroyed",
			zap.Stringer("kind", c.kind), zap.Stringer("id", c.id), zap.Uint64("handle", uint64(c.cell.Raw())))
	}
	releaseAll(c.deps)
}

type cloner[P any] interface {
	Clone() P
}

// object is the part shared by every wrapper: the native handle cell, the
// holder count, the held dependencies and the properties the object was
// created with.
type object[P cloner[P]] struct {
	core
	props P
}

// Properties returns a copy of the properties the object was created with.
func (o *object[P]) Properties() P { return o.props.Clone() }

// Derive returns a copy of the object's properties with overrides applied,
// ready to create a sibling. The object's own properties are not touched.
func (o *object[P]) Derive(overrides ...func(*P)) P {
	p := o.props.Clone()
	for _, fn := range overrides {
		fn(&p)
	}
	return p
}

// init takes ownership of cell and of one reference on every dependency in
// deps. The caller must not touch either on any path after this.
func (o *object[P]) init(kind Kind, drv native.Driver, props P, cell *handle.Cell, deps []Object) {
	o.kind = kind
	o.id = uuid.New()
	o.drv = drv
	o.cell = cell
	o.refs = new(refcount.Count)
	o.refs.Init()
	o.deps = deps
	o.props = props.Clone()
	register(&o.core)
	Logger().Debug("created",
		zap.Stringer("kind", kind), zap.Stringer("id", o.id), zap.Uint64("handle", uint64(cell.Raw())))
}

// track installs a finalizer that reports wrappers dropped by the garbage
// collector while still holding native resources. It only logs; it never
// destroys anything.
func track[T any, PT interface {
	*T
	Object
}](w PT) PT {
	runtime.SetFinalizer(w, func(w PT) {
		c := w.base()
		if n := c.refs.Load(); n > 0 {
			Logger().Warn("leaked object",
				zap.Stringer("kind", c.kind), zap.Stringer("id", c.id), zap.Int64("refs", n))
		}
	})
	return w
}

type dep struct {
	name     string
	obj      Object
	want     []Kind
	optional bool
}

// link converts a typed wrapper pointer into an Object, keeping nil as a
// nil interface.
func link[T any, PT interface {
	*T
	Object
}](d PT) Object {
	if d == nil {
		return nil
	}
	return d
}

func need[T any, PT interface {
	*T
	Object
}](name string, d PT) dep {
	return dep{name: name, obj: link(d)}
}

func maybe[T any, PT interface {
	*T
	Object
}](name string, d PT) dep {
	return dep{name: name, obj: link(d), optional: true}
}

// needKind is for dependencies passed through an interface, where the
// compiler cannot tell which kind of object is behind it.
func needKind(name string, obj Object, want ...Kind) dep {
	if isNil(obj) {
		obj = nil
	}
	return dep{name: name, obj: obj, want: want}
}

func isNil(obj Object) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// acquire validates deps for a new object of kind and takes one reference on
// each. check runs after every dependency is known to be non-nil and of the
// right kind, and before any reference is taken. Nothing is retained when
// an error is returned.
func acquire(kind Kind, check func() error, deps ...dep) ([]Object, error) {
	for _, d := range deps {
		if d.obj == nil {
			if d.optional {
				continue
			}
			return nil, reject(kind, mismatch(kind, d.name, MismatchNil))
		}
		if len(d.want) > 0 && !slices.Contains(d.want, d.obj.Kind()) {
			err := mismatch(kind, d.name, MismatchKind)
			err.Want, err.Got = d.want, d.obj.Kind()
			return nil, reject(kind, err)
		}
	}
	if check != nil {
		if err := check(); err != nil {
			return nil, reject(kind, err)
		}
	}

	held := make([]Object, 0, len(deps))
	for _, d := range deps {
		if d.obj == nil {
			continue
		}
		if !d.obj.TryRetain() {
			releaseAll(held)
			return nil, reject(kind, mismatch(kind, d.name, MismatchReleased))
		}
		held = append(held, d.obj)
	}
	return held, nil
}

func releaseAll(objs []Object) {
	for i := len(objs) - 1; i >= 0; i-- {
		objs[i].Release()
	}
}

func reject(kind Kind, err error) error {
	if m := collector(); m != nil {
		m.RecordCreateFailure(kind.String(), "dependency")
	}
	Logger().Debug("create rejected", zap.Stringer("kind", kind), zap.Error(err))
	return err
}

// createCell runs the native create call for kind. On failure it returns a
// *CreationError and nothing needs cleaning up.
func createCell(kind Kind, create func() (native.Handle, native.Result), destroy handle.DestroyFunc) (*handle.Cell, error) {
	start := time.Now()
	cell, res := handle.Create(create, destroy)
	if cell == nil {
		return nil, failed(kind, res)
	}
	if m := collector(); m != nil {
		m.RecordCreated(kind.String(), time.Since(start))
	}
	return cell, nil
}

// failed reports a failed native call that produces objects of kind
// outside of createCell.
func failed(kind Kind, res native.Result) error {
	if m := collector(); m != nil {
		m.RecordCreateFailure(kind.String(), res.String())
	}
	Logger().Debug("create failed", zap.Stringer("kind", kind), zap.Stringer("result", res))
	return &CreationError{Kind: kind, Result: res}
}

// adopt wraps a handle that already exists, either because something else
// created it or because the driver hands it out without a create call.
func adopt(kind Kind, raw native.Handle, destroy handle.DestroyFunc) *handle.Cell {
	if m := collector(); m != nil {
		m.RecordCreated(kind.String(), 0)
	}
	return handle.New(raw, destroy)
}

// discard destroys a cell whose object never finished construction.
func discard(kind Kind, cell *handle.Cell) {
	err := cell.Release()
	if m := collector(); m != nil {
		m.RecordDestroyed(kind.String(), err)
	}
	if err != nil {
		Logger().Warn("destroy failed", zap.Stringer("kind", kind), zap.Error(err))
	}
}

// build is the common constructor path: validate and retain deps, run the
// native create call, and finish o. On failure every reference taken here
// is dropped again and no native object is left behind. The driver is
// inherited from the first dependency.
func build[P cloner[P]](o *object[P], kind Kind, props P, check func() error,
	create func() (native.Handle, native.Result), destroy handle.DestroyFunc, deps ...dep,
) error {
	held, err := acquire(kind, check, deps...)
	if err != nil {
		return err
	}
	cell, err := createCell(kind, create, destroy)
	if err != nil {
		releaseAll(held)
		return err
	}
	o.init(kind, driverOf(held), props, cell, held)
	return nil
}

func driverOf(held []Object) native.Driver {
	if len(held) == 0 {
		return nil
	}
	return held[0].base().drv
}

func sameDevice(kind Kind, name string, want, got *Device) error {
	if want != got {
		return mismatch(kind, name, MismatchLineage)
	}
	return nil
}

// destroyed adapts an infallible native destroy call to a DestroyFunc.
func destroyed(fn func(native.Handle)) handle.DestroyFunc {
	return func(raw native.Handle) error {
		fn(raw)
		return nil
	}
}
