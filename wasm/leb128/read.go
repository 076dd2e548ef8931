// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package leb128 provides functions for reading and writing integer values
// encoded in the Little Endian Base 128 (LEB128) format:
// https://en.wikipedia.org/wiki/LEB128
//
// Readers are strict: an encoding longer than ceil(N/7) bytes, or whose final
// byte carries bits outside the N-bit range, is rejected.
package leb128

import (
	"errors"
	"io"
)

var (
	// ErrTooLong is returned when an encoding has more bytes than its width allows.
	ErrTooLong = errors.New("integer representation too long")
	// ErrOverflow is returned when the unused bits of the final byte are not zero
	// (unsigned) or a sign extension (signed).
	ErrOverflow = errors.New("integer too large")
)

// ReadVarUint32 reads a LEB128 encoded unsigned 32-bit integer from r.
func ReadVarUint32(r io.ByteReader) (uint32, error) {
	n, err := readVarUint(r, 32)
	return uint32(n), err
}

// ReadVarUint64 reads a LEB128 encoded unsigned 64-bit integer from r.
func ReadVarUint64(r io.ByteReader) (uint64, error) {
	return readVarUint(r, 64)
}

// ReadVarint32 reads a LEB128 encoded signed 32-bit integer from r.
func ReadVarint32(r io.ByteReader) (int32, error) {
	n, err := readVarint(r, 32)
	return int32(n), err
}

// ReadVarint33 reads a LEB128 encoded signed 33-bit integer from r.
func ReadVarint33(r io.ByteReader) (int64, error) {
	return readVarint(r, 33)
}

// ReadVarint64 reads a LEB128 encoded signed 64-bit integer from r.
func ReadVarint64(r io.ByteReader) (int64, error) {
	return readVarint(r, 64)
}

func readByte(r io.ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err == io.EOF {
		return 0, io.ErrUnexpectedEOF
	}
	return b, err
}

func readVarUint(r io.ByteReader, size uint) (uint64, error) {
	maxBytes := (size + 6) / 7

	var result uint64
	var shift uint
	for i := uint(0); ; i++ {
		b, err := readByte(r)
		if err != nil {
			return 0, err
		}
		if i == maxBytes-1 {
			if b&0x80 != 0 {
				return 0, ErrTooLong
			}
			if used := size - shift; used < 7 && b>>used != 0 {
				return 0, ErrOverflow
			}
		}

		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
}

func readVarint(r io.ByteReader, size uint) (int64, error) {
	maxBytes := (size + 6) / 7

	var result int64
	var shift uint
	for i := uint(0); ; i++ {
		b, err := readByte(r)
		if err != nil {
			return 0, err
		}
		if i == maxBytes-1 {
			if b&0x80 != 0 {
				return 0, ErrTooLong
			}
			// Bits from the sign bit upwards must all match the sign.
			used := size - shift
			mask := byte(0x7f) &^ (byte(1)<<(used-1) - 1)
			if v := b & mask; v != 0 && v != mask {
				return 0, ErrOverflow
			}
		}

		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			return result, nil
		}
	}
}
