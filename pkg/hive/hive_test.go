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

package hive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemHivePathResolution(t *testing.T) {
	h := NewMemHive()
	h.Put(`SYSTEM\Select`).SetValue(Uint32Value("Current", 1))

	// intermediate keys are created on the way
	k, ok := h.Key(`SYSTEM`)
	require.True(t, ok)
	subkeys, err := k.Subkeys()
	require.NoError(t, err)
	require.Len(t, subkeys, 1)
	assert.Equal(t, "Select", subkeys[0].Name())

	// lookups ignore case, like the real registry
	k, ok = h.Key(`system\SELECT`)
	require.True(t, ok)
	v, ok := k.Value("current")
	require.True(t, ok)
	cs, ok := v.Uint32()
	require.True(t, ok)
	assert.Equal(t, uint32(1), cs)

	_, ok = h.Key(`SYSTEM\ControlSet001`)
	assert.False(t, ok)
}

func TestMemHivePutIsIdempotent(t *testing.T) {
	h := NewMemHive()
	h.Put(`A\B`).SetValue(TextValue("x", "1"))
	h.Put(`a\b`).SetValue(TextValue("y", "2"))

	k, ok := h.Key(`A\B`)
	require.True(t, ok)
	_, ok = k.Value("x")
	assert.True(t, ok)
	_, ok = k.Value("y")
	assert.True(t, ok)

	parent, ok := h.Key(`A`)
	require.True(t, ok)
	subkeys, err := parent.Subkeys()
	require.NoError(t, err)
	assert.Len(t, subkeys, 1)
}

func TestCurrentControlSet(t *testing.T) {
	h := NewMemHive()
	h.Put(`SYSTEM\Select`).SetValue(Uint32Value("Current", 2))

	// the Select key sits under the SYSTEM root on a live machine
	cs, err := CurrentControlSet(h)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), cs)
}

func TestCurrentControlSetMissing(t *testing.T) {
	_, err := CurrentControlSet(NewMemHive())
	require.Error(t, err)
}

func TestCurrentControlSetWrongType(t *testing.T) {
	h := NewMemHive()
	h.Put(`Select`).SetValue(TextValue("Current", "2"))

	_, err := CurrentControlSet(h)
	require.EqualError(t, err, `hive: Select\Current is REG_SZ, expected REG_DWORD`)
}

func TestAppCompatCache(t *testing.T) {
	flushed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	blob := []byte{0xee, 0x0f, 0xdc, 0xba}

	h := NewMemHive()
	h.Put(`ControlSet001\Control\Session Manager\AppCompatCache`).
		SetLastWritten(flushed).
		SetValue(BinaryValue("AppCompatCache", blob))

	b, ts, err := AppCompatCache(h, 1)
	require.NoError(t, err)
	assert.Equal(t, blob, b)
	assert.Equal(t, flushed, ts)
}

func TestAppCompatCacheWrongControlSet(t *testing.T) {
	h := NewMemHive()
	h.Put(`ControlSet001\Control\Session Manager\AppCompatCache`).
		SetValue(BinaryValue("AppCompatCache", []byte{0x00}))

	_, _, err := AppCompatCache(h, 2)
	require.Error(t, err)
}

func TestIs32BitArchitecture(t *testing.T) {
	var tests = []struct {
		arch string
		is32 bool
	}{
		{"AMD64", false},
		{"ARM64", false},
		{"x86", true},
		{"X86", true},
	}
	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			h := NewMemHive()
			h.Put(`SYSTEM\ControlSet001\Control\Session Manager\Environment`).
				SetValue(TextValue("PROCESSOR_ARCHITECTURE", tt.arch))

			is32, err := Is32BitArchitecture(h, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.is32, is32)
		})
	}
}

func TestValueTypedGetters(t *testing.T) {
	v := Uint64Value("n", 42)
	_, ok := v.Text()
	assert.False(t, ok)
	n, ok := v.Uint64()
	require.True(t, ok)
	assert.Equal(t, uint64(42), n)
	assert.Equal(t, "REG_QWORD", v.Type.String())
}
