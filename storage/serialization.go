// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"math"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// maxVectorLength bounds the dimension accepted when decoding a vector.
const maxVectorLength = 1 << 16

// MarshalVector serializes a vector as a varint length followed by raw float32 values.
func MarshalVector(v []float32) []byte {
	size := varint.Uint64.Size(uint64(len(v)))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}

	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(len(v)), buf)
	for _, f := range v {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	return buf
}

// UnmarshalVector deserializes a vector written by MarshalVector.
func UnmarshalVector(data []byte) ([]float32, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty vector data", ErrTruncatedData)
	}
	length, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: vector length: %w", ErrSerializationFailed, err)
	}
	if length > maxVectorLength {
		return nil, fmt.Errorf("%w: vector length %d exceeds %d", ErrSerializationFailed, length, maxVectorLength)
	}

	width := raw.Float32.Size(0)
	v := make([]float32, length)
	for i := range v {
		if len(data)-n < width {
			return nil, fmt.Errorf("%w: %d of %d values", ErrTruncatedData, i, length)
		}
		f, m, err := raw.Float32.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %w", ErrSerializationFailed, i, err)
		}
		if math.IsNaN(float64(f)) {
			return nil, fmt.Errorf("%w: value %d is NaN", ErrSerializationFailed, i)
		}
		v[i] = f
		n += m
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n)
	}
	return v, nil
}
