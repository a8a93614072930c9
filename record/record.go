// Package record encodes the flat float32 records shared by the bridge
// files and the dataset files: headerless arrays of little-endian IEEE-754
// single-precision values.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// FloatSize is the encoded size of one value in bytes.
const FloatSize = 4

// ErrSize reports a record whose length does not match the expected float
// count.
var ErrSize = errors.New("record: wrong size")

// Append appends the encoded values to dst.
func Append(dst []byte, values ...float32) []byte {
	for _, v := range values {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// Decode decodes exactly n floats from data into dst, reusing its storage.
func Decode(dst []float32, data []byte, n int) ([]float32, error) {
	if len(data) != n*FloatSize {
		return dst[:0], fmt.Errorf("%w: got %d bytes, want %d", ErrSize, len(data), n*FloatSize)
	}
	dst = dst[:0]
	for i := 0; i < n; i++ {
		dst = append(dst, math.Float32frombits(binary.LittleEndian.Uint32(data[i*FloatSize:])))
	}
	return dst, nil
}

// DecodeAll decodes every whole float in data. Trailing bytes that do not
// form a full value are an error.
func DecodeAll(data []byte) ([]float32, error) {
	if len(data)%FloatSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrSize, len(data), FloatSize)
	}
	return Decode(make([]float32, 0, len(data)/FloatSize), data, len(data)/FloatSize)
}
