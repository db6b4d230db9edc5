package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalVector(t *testing.T) {
	tests := []struct {
		name   string
		vector []float32
	}{
		{"empty vector", []float32{}},
		{"single value", []float32{0.5}},
		{"negative and tiny values", []float32{-1, 1e-9, 3.25, -0.0001}},
		{"typical embedding", make([]float32, 384)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalVector(tt.vector)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalVector(data)
			require.NoError(t, err)
			assert.Equal(t, tt.vector, decoded)
		})
	}
}

func TestMarshalVector_Size(t *testing.T) {
	// one length byte plus four bytes per value
	assert.Len(t, MarshalVector([]float32{1, 2, 3}), 13)
}

func TestUnmarshalVector_Invalid(t *testing.T) {
	valid := MarshalVector([]float32{1, 2})

	t.Run("empty data", func(t *testing.T) {
		_, err := UnmarshalVector([]byte{})
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("missing values", func(t *testing.T) {
		_, err := UnmarshalVector(valid[:5])
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("partial value", func(t *testing.T) {
		_, err := UnmarshalVector(valid[:7])
		assert.ErrorIs(t, err, ErrTruncatedData)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := UnmarshalVector(append(append([]byte{}, valid...), 0x01))
		assert.ErrorIs(t, err, ErrSerializationFailed)
	})
}
