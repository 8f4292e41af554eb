// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package classfile

import (
	"encoding/binary"
	"fmt"
)

// reader is a forward-only cursor over a class file's raw bytes. All
// multi-byte values in a class file are big-endian.
type reader struct {
	buf []byte
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) u1() (byte, error) {
	if r.pos+1 > len(r.buf) {
		return 0, fmt.Errorf("classfile: unexpected end of file at offset %d", r.pos)
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) u2() (uint16, error) {
	if r.pos+2 > len(r.buf) {
		return 0, fmt.Errorf("classfile: unexpected end of file at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u4() (uint32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("classfile: unexpected end of file at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("classfile: unexpected end of file at offset %d (wanted %d bytes)", r.pos, n)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) skip(n int) error {
	_, err := r.bytes(n)
	return err
}

// utf8 reads a length-prefixed modified-UTF-8 string (JVM Spec 4.4.7). The
// encoding differs from standard UTF-8 only for the null character and
// supplementary-plane code points, neither of which appear in the class,
// method, and descriptor names this package cares about, so the raw bytes
// are treated as UTF-8 directly.
func (r *reader) utf8() (string, error) {
	n, err := r.u2()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
