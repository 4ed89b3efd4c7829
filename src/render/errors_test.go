package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"vkgraph/src/render/native"
)

func TestNewError(t *testing.T) {
	require.NoError(t, NewError(native.Success))
	require.NoError(t, NewError(native.Timeout))

	err := NewError(native.ErrorDeviceLost)
	require.ErrorIs(t, err, native.ErrorDeviceLost)
	require.Contains(t, err.Error(), "TestNewError")
	require.Contains(t, err.Error(), "VK_ERROR_DEVICE_LOST")
}

func TestOrPanicAndCheckError(t *testing.T) {
	run := func(in error) (finalized bool, err error) {
		defer CheckError(&err)
		OrPanic(in, func() { finalized = true })
		return finalized, nil
	}

	finalized, err := run(nil)
	require.NoError(t, err)
	require.False(t, finalized)

	boom := errors.New("boom")
	finalized, err = run(boom)
	require.ErrorIs(t, err, boom)
	require.True(t, finalized)

	err = func() (err error) {
		defer CheckError(&err)
		panic("not an error")
	}()
	require.EqualError(t, err, "not an error")
}

func TestErrorMessages(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want string
	}{
		{
			&CreationError{Kind: KindBuffer, Result: native.ErrorOutOfDeviceMemory},
			"render: create Buffer: VK_ERROR_OUT_OF_DEVICE_MEMORY",
		},
		{
			&DependencyMismatchError{Kind: KindImageView, Dependency: "image", Want: []Kind{KindImage, KindSwapchainImage}, Got: KindBuffer, Reason: MismatchKind},
			`render: create ImageView: dependency "image": wrong kind (want Image or SwapchainImage, got Buffer)`,
		},
		{
			mismatch(KindFramebuffer, "attachment", MismatchCount),
			`render: create Framebuffer: dependency "attachment": wrong count`,
		},
		{
			&AllocationError{Size: 256, Result: native.ErrorOutOfDeviceMemory},
			"render: allocate 256 bytes: VK_ERROR_OUT_OF_DEVICE_MEMORY",
		},
		{
			&AccessSizeError{Offset: 250, Length: 10, Size: 256},
			"render: access [250, 260) out of bounds for allocation of 256 bytes",
		},
	} {
		require.EqualError(t, tc.err, tc.want)
	}
}

func TestKindNames(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range Kinds() {
		name := k.String()
		require.NotEqual(t, "Unknown", name)
		require.False(t, seen[name], name)
		seen[name] = true
	}
	require.Equal(t, "Unknown", Kind(200).String())
}
