// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package byteslicereader

import (
	"encoding/binary"
	"io"
	"math"
)

// ReadUint8 reads a single unsigned byte, advancing r.
func (r *R) ReadUint8() (uint8, error) {
	b, err := r.ReadByte()
	return b, err
}

// ReadUint16LE reads a little-endian uint16, advancing r by 2 bytes.
func (r *R) ReadUint16LE() (uint16, error) {
	b, err := r.Next(2)
	if err != nil && len(b) < 2 {
		return 0, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32LE reads a little-endian uint32, advancing r by 4 bytes.
func (r *R) ReadUint32LE() (uint32, error) {
	b, err := r.Next(4)
	if err != nil && len(b) < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadUint64LE reads a little-endian uint64, advancing r by 8 bytes.
func (r *R) ReadUint64LE() (uint64, error) {
	b, err := r.Next(8)
	if err != nil && len(b) < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadFloat32LE reads an IEEE-754 single-precision float, advancing r by 4
// bytes.
func (r *R) ReadFloat32LE() (float32, error) {
	v, err := r.ReadUint32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64LE reads an IEEE-754 double-precision float, advancing r by 8
// bytes.
func (r *R) ReadFloat64LE() (float64, error) {
	v, err := r.ReadUint64LE()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}
