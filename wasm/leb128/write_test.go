// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package leb128

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var casesUint = []struct {
	v uint32
	b []byte
}{
	{v: 0, b: []byte{0x00}},
	{v: 1, b: []byte{0x01}},
	{v: 127, b: []byte{0x7f}},
	{v: 128, b: []byte{0x80, 0x01}},
	{v: 624485, b: []byte{0xe5, 0x8e, 0x26}},
	{v: 0xffffffff, b: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
}

var casesInt = []struct {
	v int64
	b []byte
}{
	{v: 0, b: []byte{0x00}},
	{v: 1, b: []byte{0x01}},
	{v: -1, b: []byte{0x7f}},
	{v: 63, b: []byte{0x3f}},
	{v: 64, b: []byte{0xc0, 0x00}},
	{v: -64, b: []byte{0x40}},
	{v: -65, b: []byte{0xbf, 0x7f}},
	{v: -123456, b: []byte{0xc0, 0xbb, 0x78}},
	{v: -9223372036854775808, b: []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x7f}},
}

func TestWriteVarUint32(t *testing.T) {
	for _, c := range casesUint {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			buf := new(bytes.Buffer)
			_, err := WriteVarUint32(buf, c.v)
			require.NoError(t, err)
			assert.Equal(t, c.b, buf.Bytes())
		})
	}
}

func TestWriteVarint64(t *testing.T) {
	for _, c := range casesInt {
		t.Run(fmt.Sprint(c.v), func(t *testing.T) {
			buf := new(bytes.Buffer)
			_, err := WriteVarint64(buf, c.v)
			require.NoError(t, err)
			assert.Equal(t, c.b, buf.Bytes())
		})
	}
}

func TestWriteReadInt64(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().Unix()))

	var buf bytes.Buffer
	for i := 0; i < 100000; i++ {
		n := r.Int63()
		if i%2 == 1 {
			n = -n
		}

		buf.Reset()
		_, err := WriteVarint64(&buf, n)
		require.NoError(t, err)

		v, err := ReadVarint64(&buf)
		require.NoError(t, err)
		require.Equal(t, n, v)
	}
}

func TestWriteReadInt32(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().Unix()))

	var buf bytes.Buffer
	for i := 0; i < 100000; i++ {
		n := r.Int31()
		if i%2 == 1 {
			n = -n
		}

		buf.Reset()
		_, err := WriteVarint64(&buf, int64(n))
		require.NoError(t, err)

		v, err := ReadVarint32(&buf)
		require.NoError(t, err)
		require.Equal(t, n, v)
	}
}

func TestWriteReadUint32(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().Unix()))

	var buf bytes.Buffer
	for i := 0; i < 100000; i++ {
		n := r.Uint32()

		buf.Reset()
		_, err := WriteVarUint32(&buf, n)
		require.NoError(t, err)

		v, err := ReadVarUint32(&buf)
		require.NoError(t, err)
		require.Equal(t, n, v)
	}
}
