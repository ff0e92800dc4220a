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

// Package decompressor detects compressed RDF streams.
package decompressor

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
)

// Compression is a detected stream compression.
type Compression string

const (
	None  Compression = ""
	Gzip  Compression = "gzip"
	Bzip2 Compression = "bzip2"
)

var magic = []struct {
	c      Compression
	prefix []byte
}{
	{Gzip, []byte("\x1f\x8b")},
	{Bzip2, []byte("BZh")},
}

// Detect peeks at the start of a stream and reports its compression.
func Detect(br *bufio.Reader) Compression {
	// a short read only means the stream is small
	buf, _ := br.Peek(3)
	for _, m := range magic {
		if bytes.HasPrefix(buf, m.prefix) {
			return m.c
		}
	}
	return None
}

// New wraps r with a decompressor for a gzip or bzip2 stream. Other
// streams, including empty ones, are returned as they are.
func New(r io.Reader) (io.Reader, Compression, error) {
	br := bufio.NewReader(r)
	switch c := Detect(br); c {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, c, err
		}
		return zr, c, nil
	case Bzip2:
		return bzip2.NewReader(br), c, nil
	}
	return br, None, nil
}
