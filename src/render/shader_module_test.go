package render

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeSPIRV(order binary.ByteOrder, words []uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		order.PutUint32(b[i*4:], w)
	}
	return b
}

func TestShaderModulePropertiesFromSPIRV(t *testing.T) {
	for _, tc := range []struct {
		name  string
		order binary.ByteOrder
	}{
		{"little endian", binary.LittleEndian},
		{"big endian", binary.BigEndian},
	} {
		t.Run(tc.name, func(t *testing.T) {
			props, err := ShaderModulePropertiesFromSPIRV(encodeSPIRV(tc.order, testSPIRV()))
			require.NoError(t, err)
			require.Equal(t, testSPIRV(), props.Code)
		})
	}

	for _, tc := range []struct {
		name string
		code []byte
	}{
		{"empty", nil},
		{"short", make([]byte, 16)},
		{"unaligned", append(encodeSPIRV(binary.LittleEndian, testSPIRV()), 0)},
		{"bad magic", encodeSPIRV(binary.LittleEndian, []uint32{0xdeadbeef, 0, 0, 0, 0})},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ShaderModulePropertiesFromSPIRV(tc.code)
			require.ErrorIs(t, err, ErrInvalidSPIRV)
		})
	}
}

func TestShaderModuleCopiesCode(t *testing.T) {
	drv := newDriver(t)
	dev := newDevice(t, drv)
	defer dev.Release()

	code := testSPIRV()
	m, err := NewShaderModule(dev, ShaderModuleProperties{Code: code})
	require.NoError(t, err)
	defer m.Release()

	code[1] = 0
	require.Equal(t, testSPIRV(), m.Properties().Code)
}
