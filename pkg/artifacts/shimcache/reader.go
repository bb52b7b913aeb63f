/*
 * Copyright 2023-2024 by Kestrel Security
 * https://www.kestrelsec.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package shimcache

import (
	"github.com/kestrelsec/talon/pkg/util/bytes"
)

// reader walks the cache payload with bounds-checked reads. Every
// overrun yields a TruncatedError referencing the entry ordinal the
// cursor is positioned at, never a silent zero-fill.
type reader struct {
	buf []byte
	off int
	pos int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

// seek moves the cursor to the absolute offset.
func (r *reader) seek(off int) { r.off = off }

// entry marks the ordinal of the entry being decoded for diagnostics.
func (r *reader) entry(pos int) { r.pos = pos }

// peek returns n bytes at the cursor without consuming them, or nil
// when the buffer is too short. Used for record signature probing where
// a short buffer terminates decoding instead of failing it.
func (r *reader) peek(n int) []byte {
	if r.off+n > len(r.buf) {
		return nil
	}
	return r.buf[r.off : r.off+n]
}

// bytes consumes n bytes at the cursor.
func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, TruncatedError{Position: r.pos, Offset: r.off, Need: n}
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// bytesAt reads n bytes at the absolute offset without moving the cursor.
func (r *reader) bytesAt(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(r.buf) {
		return nil, TruncatedError{Position: r.pos, Offset: off, Need: n}
	}
	return r.buf[off : off+n], nil
}

func (r *reader) uint16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return bytes.ReadUint16(b), nil
}

func (r *reader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return bytes.ReadUint32(b), nil
}

func (r *reader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return bytes.ReadUint64(b), nil
}
