// Package native describes the foreign API surface that the render package
// manages lifetimes for: a Vulkan-shaped Driver that creates and destroys
// objects from configuration structs, and an external memory Allocator.
//
// Nothing in this package owns anything. Handles are opaque identifiers and
// every call is assumed to be unsafe in the Vulkan sense: the caller is
// responsible for passing live handles and for destroying children before
// their parents.
package native

import "fmt"

// Handle is an opaque identifier for one live native object.
type Handle uint64

// NullHandle is never produced by a successful create call.
const NullHandle Handle = 0

// Result is a native status code. Negative values are errors; Success and
// the other non-negative codes are not.
type Result int32

const (
	Success                    Result = 0
	NotReady                   Result = 1
	Timeout                    Result = 2
	EventSet                   Result = 3
	EventReset                 Result = 4
	Incomplete                 Result = 5
	ErrorOutOfHostMemory       Result = -1
	ErrorOutOfDeviceMemory     Result = -2
	ErrorInitializationFailed  Result = -3
	ErrorDeviceLost            Result = -4
	ErrorMemoryMapFailed       Result = -5
	ErrorLayerNotPresent       Result = -6
	ErrorExtensionNotPresent   Result = -7
	ErrorFeatureNotPresent     Result = -8
	ErrorIncompatibleDriver    Result = -9
	ErrorTooManyObjects        Result = -10
	ErrorFormatNotSupported    Result = -11
	ErrorFragmentedPool        Result = -12
	ErrorUnknown               Result = -13
	ErrorOutOfPoolMemory       Result = -1000069000
	ErrorSurfaceLost           Result = -1000000000
	ErrorNativeWindowInUse     Result = -1000000001
	Suboptimal                 Result = 1000001003
	ErrorOutOfDate             Result = -1000001004
	ErrorValidationFailed      Result = -1000011001
	ErrorInvalidExternalHandle Result = -1000072003
)

var resultNames = map[Result]string{
	Success:                    "VK_SUCCESS",
	NotReady:                   "VK_NOT_READY",
	Timeout:                    "VK_TIMEOUT",
	EventSet:                   "VK_EVENT_SET",
	EventReset:                 "VK_EVENT_RESET",
	Incomplete:                 "VK_INCOMPLETE",
	ErrorOutOfHostMemory:       "VK_ERROR_OUT_OF_HOST_MEMORY",
	ErrorOutOfDeviceMemory:     "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	ErrorInitializationFailed:  "VK_ERROR_INITIALIZATION_FAILED",
	ErrorDeviceLost:            "VK_ERROR_DEVICE_LOST",
	ErrorMemoryMapFailed:       "VK_ERROR_MEMORY_MAP_FAILED",
	ErrorLayerNotPresent:       "VK_ERROR_LAYER_NOT_PRESENT",
	ErrorExtensionNotPresent:   "VK_ERROR_EXTENSION_NOT_PRESENT",
	ErrorFeatureNotPresent:     "VK_ERROR_FEATURE_NOT_PRESENT",
	ErrorIncompatibleDriver:    "VK_ERROR_INCOMPATIBLE_DRIVER",
	ErrorTooManyObjects:        "VK_ERROR_TOO_MANY_OBJECTS",
	ErrorFormatNotSupported:    "VK_ERROR_FORMAT_NOT_SUPPORTED",
	ErrorFragmentedPool:        "VK_ERROR_FRAGMENTED_POOL",
	ErrorUnknown:               "VK_ERROR_UNKNOWN",
	ErrorOutOfPoolMemory:       "VK_ERROR_OUT_OF_POOL_MEMORY",
	ErrorSurfaceLost:           "VK_ERROR_SURFACE_LOST_KHR",
	ErrorNativeWindowInUse:     "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	Suboptimal:                 "VK_SUBOPTIMAL_KHR",
	ErrorOutOfDate:             "VK_ERROR_OUT_OF_DATE_KHR",
	ErrorValidationFailed:      "VK_ERROR_VALIDATION_FAILED_EXT",
	ErrorInvalidExternalHandle: "VK_ERROR_INVALID_EXTERNAL_HANDLE",
}

// Error implements error so that results can be wrapped with %w and
// matched with errors.Is.
func (r Result) Error() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return fmt.Sprintf("VkResult(%d)", int32(r))
}

// String returns the Vulkan name of the result.
func (r Result) String() string { return r.Error() }

// IsError reports whether r is an error code.
func (r Result) IsError() bool { return r < 0 }
