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

package utf16

import (
	"errors"
	"unicode/utf8"

	"github.com/kestrelsec/talon/pkg/util/bytes"
)

const (
	// 0xd800-0xdc00 encodes the high 10 bits of a pair.
	surr1 = 0xd800
	// 0xdc00-0xe000 encodes the low 10 bits of a pair.
	surr2 = 0xdc00
)

// ErrOddByteCount signals that a buffer can't hold a valid UTF-16LE
// string because its length is not a multiple of the code unit size.
var ErrOddByteCount = errors.New("utf16 byte count is not a multiple of two")

func isHighSurrogate(r rune) bool { return r >= surr1 && r <= 0xdbff }
func isLowSurrogate(r rune) bool  { return r >= surr2 && r <= 0xdfff }

// Decode decodes the UTF16-encoded string to UTF-8 string. This function
// exhibits much better performance than the standard library counterpart.
// All credits go to: https://gist.github.com/skeeto/09f1410183d246f9b18cba95c4e602f0
func Decode(p []uint16) string {
	s := make([]byte, 0, 2*len(p))
	for i := 0; i < len(p); i++ {
		r := rune(0xfffd)
		r1 := rune(p[i])
		if isHighSurrogate(r1) {
			if i+1 < len(p) {
				r2 := rune(p[i+1])
				if isLowSurrogate(r2) {
					i++
					r = 0x10000 + (r1-surr1)<<10 + (r2 - surr2)
				}
			}
		} else if !isLowSurrogate(r) {
			r = r1
		}
		s = utf8.AppendRune(s, r)
	}
	return string(s)
}

// DecodeBytes decodes a little-endian UTF-16 byte buffer, such as a path
// stored in a registry value payload, to a UTF-8 string. Buffers with an
// odd byte count yield ErrOddByteCount.
func DecodeBytes(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", ErrOddByteCount
	}
	p := make([]uint16, len(b)/2)
	for i := range p {
		p[i] = bytes.ReadUint16(b[i*2:])
	}
	return Decode(p), nil
}

// EncodeBytes encodes the string to a little-endian UTF-16 byte buffer.
func EncodeBytes(s string) []byte {
	b := make([]byte, 0, 2*len(s))
	for _, r := range s {
		if r < 0x10000 {
			b = append(b, bytes.WriteUint16(uint16(r))...)
		} else {
			r -= 0x10000
			b = append(b, bytes.WriteUint16(uint16(surr1+(r>>10)))...)
			b = append(b, bytes.WriteUint16(uint16(surr2+(r&0x3ff)))...)
		}
	}
	return b
}
