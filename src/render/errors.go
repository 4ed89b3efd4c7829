package render

import (
	"fmt"
	"runtime"
	"strings"

	"vkgraph/src/render/native"
)

// NewError wraps a failed native result with the calling function, for call
// sites outside the wrappers (queue submission, presentation).
func NewError(retVal native.Result) error {
	if !IsError(retVal) {
		return nil
	}
	pc, _, _, ok := runtime.Caller(1)
	if !ok {
		return fmt.Errorf("native error: %w (%d)", retVal, int32(retVal))
	}
	return fmt.Errorf("native error: %w (%d) on %s",
		retVal, int32(retVal), newStackFrame(pc))
}

func IsError(retVal native.Result) bool {
	return retVal.IsError()
}

// OrPanic runs the finalizers and panics when err is set.
func OrPanic(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	panic(err)
}

// CheckError turns a panic into an error. Use it deferred together with
// OrPanic.
func CheckError(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("%+v", v)
	}
}

type stackFrame struct {
	function string
	file     string
	line     int
}

func newStackFrame(pc uintptr) stackFrame {
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	fn := frame.Function
	if i := strings.LastIndexByte(fn, '/'); i >= 0 {
		fn = fn[i+1:]
	}
	return stackFrame{function: fn, file: frame.File, line: frame.Line}
}

func (f stackFrame) String() string {
	return fmt.Sprintf("%s (%s:%d)", f.function, f.file, f.line)
}

// CreationError reports that the native create call for Kind failed.
// Nothing was created and no dependency reference was kept.
type CreationError struct {
	Kind   Kind
	Result native.Result
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("render: create %s: %s", e.Kind, e.Result)
}

func (e *CreationError) Unwrap() error { return e.Result }

// MismatchReason says why a dependency was refused.
type MismatchReason uint8

const (
	// MismatchNil means a required dependency was nil.
	MismatchNil MismatchReason = iota + 1
	// MismatchReleased means the dependency had already been destroyed.
	MismatchReleased
	// MismatchKind means a dynamically typed dependency had the wrong kind.
	MismatchKind
	// MismatchLineage means the dependency belongs to a different parent
	// (another device, allocator or instance).
	MismatchLineage
	// MismatchCount means a list of dependencies has the wrong length for
	// its parent, such as framebuffer attachments for a render pass.
	MismatchCount
)

func (r MismatchReason) String() string {
	switch r {
	case MismatchNil:
		return "nil"
	case MismatchReleased:
		return "released"
	case MismatchKind:
		return "wrong kind"
	case MismatchLineage:
		return "different lineage"
	case MismatchCount:
		return "wrong count"
	default:
		return "unknown"
	}
}

// DependencyMismatchError is returned before any native call when a
// dependency cannot back the object being built.
type DependencyMismatchError struct {
	Kind       Kind
	Dependency string
	Want       []Kind
	Got        Kind
	Reason     MismatchReason
}

func (e *DependencyMismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "render: create %s: dependency %q: %s", e.Kind, e.Dependency, e.Reason)
	if e.Reason == MismatchKind {
		want := make([]string, len(e.Want))
		for i, k := range e.Want {
			want[i] = k.String()
		}
		fmt.Fprintf(&b, " (want %s, got %s)", strings.Join(want, " or "), e.Got)
	}
	return b.String()
}

// AllocationError reports that the allocator could not provide memory.
type AllocationError struct {
	Size   uint64
	Result native.Result
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("render: allocate %d bytes: %s", e.Size, e.Result)
}

func (e *AllocationError) Unwrap() error { return e.Result }

// AccessSizeError is returned by Allocation reads and writes that fall
// outside the allocation.
type AccessSizeError struct {
	Offset, Length, Size uint64
}

func (e *AccessSizeError) Error() string {
	return fmt.Sprintf("render: access [%d, %d) out of bounds for allocation of %d bytes",
		e.Offset, e.Offset+e.Length, e.Size)
}

func mismatch(kind Kind, dep string, reason MismatchReason) *DependencyMismatchError {
	return &DependencyMismatchError{Kind: kind, Dependency: dep, Reason: reason}
}
