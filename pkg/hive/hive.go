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

// Package hive abstracts access to Windows registry data. Decoders
// consume keys and typed values through the Reader interface, which is
// satisfied both by the live registry accessor and by the in-memory
// hive used for fixtures and offline analysis.
package hive

import (
	"time"
)

// ValueType designates the type of the content stored in a registry value.
type ValueType uint8

const (
	// Null designates a registry value with no content.
	Null ValueType = iota
	// Binary designates a registry value with a raw byte payload.
	Binary
	// String designates a registry value with UTF-16 string content.
	String
	// Uint32 designates a 32-bit unsigned integer registry value.
	Uint32
	// Uint64 designates a 64-bit unsigned integer registry value.
	Uint64
	// Int32 designates a 32-bit signed integer registry value.
	Int32
	// Int64 designates a 64-bit signed integer registry value.
	Int64
)

// String returns the registry type designation for the value type.
func (t ValueType) String() string {
	switch t {
	case Binary:
		return "REG_BINARY"
	case String:
		return "REG_SZ"
	case Uint32, Int32:
		return "REG_DWORD"
	case Uint64, Int64:
		return "REG_QWORD"
	}
	return "REG_NONE"
}

// Value is a single typed registry value. The zero value represents
// the Null registry value.
type Value struct {
	// Name is the value name, empty for the default value.
	Name string
	// Type designates which typed accessor yields the content.
	Type ValueType

	b []byte
	s string
	u uint64
	i int64
}

// BinaryValue builds a Binary registry value.
func BinaryValue(name string, b []byte) Value { return Value{Name: name, Type: Binary, b: b} }

// TextValue builds a String registry value.
func TextValue(name, s string) Value { return Value{Name: name, Type: String, s: s} }

// Uint32Value builds a Uint32 registry value.
func Uint32Value(name string, v uint32) Value { return Value{Name: name, Type: Uint32, u: uint64(v)} }

// Uint64Value builds a Uint64 registry value.
func Uint64Value(name string, v uint64) Value { return Value{Name: name, Type: Uint64, u: v} }

// Int32Value builds an Int32 registry value.
func Int32Value(name string, v int32) Value { return Value{Name: name, Type: Int32, i: int64(v)} }

// Int64Value builds an Int64 registry value.
func Int64Value(name string, v int64) Value { return Value{Name: name, Type: Int64, i: v} }

// Bytes returns the binary payload of the value.
func (v Value) Bytes() ([]byte, bool) { return v.b, v.Type == Binary }

// Text returns the string content of the value.
func (v Value) Text() (string, bool) { return v.s, v.Type == String }

// Uint32 returns the 32-bit unsigned integer content of the value.
func (v Value) Uint32() (uint32, bool) { return uint32(v.u), v.Type == Uint32 }

// Uint64 returns the 64-bit unsigned integer content of the value.
func (v Value) Uint64() (uint64, bool) { return v.u, v.Type == Uint64 }

// Int32 returns the 32-bit signed integer content of the value.
func (v Value) Int32() (int32, bool) { return int32(v.i), v.Type == Int32 }

// Int64 returns the 64-bit signed integer content of the value.
func (v Value) Int64() (int64, bool) { return v.i, v.Type == Int64 }

// Key is a single registry key with its values, subkeys and metadata.
type Key interface {
	// Name returns the leaf name of the key.
	Name() string
	// LastWritten returns the key last-written timestamp kept in the
	// key metadata. This is not a value payload.
	LastWritten() time.Time
	// Value resolves the named value or reports that it doesn't exist.
	Value(name string) (Value, bool)
	// Subkeys enumerates the immediate subkeys of this key.
	Subkeys() ([]Key, error)
}

// Reader resolves registry key paths to keys. Paths use the backslash
// separator and are compared case-insensitively, as the registry does.
type Reader interface {
	// Key resolves the key path or reports that it doesn't exist.
	Key(path string) (Key, bool)
}
