// Copyright 2014 The Cayley Authors. All rights reserved.
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

package decompressor

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const triple = "<a> <b> <c> .\n"

func gzipped(t testing.TB, s string) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// "cayley data\n" compressed with bzip2 -9
var bzipped = []byte{
	0x42, 0x5a, 0x68, 0x39, 0x31, 0x41, 0x59, 0x26, 0x53, 0x59, 0xb5, 0x4b, 0xe3, 0xc4, 0x00, 0x00,
	0x02, 0xd1, 0x80, 0x00, 0x10, 0x40, 0x00, 0x2e, 0x04, 0x04, 0x20, 0x20, 0x00, 0x31, 0x06, 0x4c,
	0x41, 0x4c, 0x1e, 0xa7, 0xa9, 0x2a, 0x18, 0x26, 0xb1, 0xc2, 0xee, 0x48, 0xa7, 0x0a, 0x12, 0x16,
	0xa9, 0x7c, 0x78, 0x80,
}

func TestDecompressor(t *testing.T) {
	cases := []struct {
		name   string
		input  []byte
		comp   Compression
		expect string
	}{
		{"text", []byte(triple), None, triple},
		{"empty", nil, None, ""},
		{"short", []byte("<"), None, "<"},
		{"gzip", gzipped(t, triple), Gzip, triple},
		{"bzip2", bzipped, Bzip2, "cayley data\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r, comp, err := New(bytes.NewReader(c.input))
			require.NoError(t, err)
			require.Equal(t, c.comp, comp)
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			require.Equal(t, c.expect, string(data))
		})
	}
}

func TestDecompressorErrors(t *testing.T) {
	_, comp, err := New(strings.NewReader("\x1f\x8bcayley data\n"))
	require.Equal(t, Gzip, comp)
	require.ErrorIs(t, err, gzip.ErrHeader)

	r, comp, err := New(strings.NewReader("BZhcayley data\n"))
	require.NoError(t, err)
	require.Equal(t, Bzip2, comp)
	_, err = io.ReadAll(r)
	var serr bzip2.StructuralError
	require.ErrorAs(t, err, &serr)
}
