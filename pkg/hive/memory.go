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
	"strings"
	"time"
)

// MemHive is an in-memory registry hive. It backs decoder fixtures and
// offline analysis where key content was acquired out-of-band.
type MemHive struct {
	root *MemKey
}

// NewMemHive builds an empty in-memory hive.
func NewMemHive() *MemHive {
	return &MemHive{root: newMemKey("")}
}

// Put resolves the key at the given path, creating it along with any
// missing intermediate keys.
func (h *MemHive) Put(path string) *MemKey {
	k := h.root
	for _, name := range splitKeyPath(path) {
		k = k.putSubkey(name)
	}
	return k
}

// Key resolves the key path or reports that it doesn't exist.
func (h *MemHive) Key(path string) (Key, bool) {
	k := h.root
	for _, name := range splitKeyPath(path) {
		sub := k.subkey(name)
		if sub == nil {
			return nil, false
		}
		k = sub
	}
	return k, true
}

func splitKeyPath(path string) []string {
	parts := make([]string, 0, 8)
	for _, p := range strings.Split(path, `\`) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// MemKey is a single key of the in-memory hive.
type MemKey struct {
	name        string
	lastWritten time.Time
	values      map[string]Value
	subkeys     []*MemKey
}

func newMemKey(name string) *MemKey {
	return &MemKey{name: name, values: make(map[string]Value)}
}

func (k *MemKey) putSubkey(name string) *MemKey {
	if sub := k.subkey(name); sub != nil {
		return sub
	}
	sub := newMemKey(name)
	k.subkeys = append(k.subkeys, sub)
	return sub
}

func (k *MemKey) subkey(name string) *MemKey {
	for _, sub := range k.subkeys {
		if strings.EqualFold(sub.name, name) {
			return sub
		}
	}
	return nil
}

// SetLastWritten sets the key last-written timestamp.
func (k *MemKey) SetLastWritten(t time.Time) *MemKey {
	k.lastWritten = t
	return k
}

// SetValue stores the value in the key, replacing any value with the
// same name.
func (k *MemKey) SetValue(v Value) *MemKey {
	k.values[strings.ToLower(v.Name)] = v
	return k
}

// Name returns the leaf name of the key.
func (k *MemKey) Name() string { return k.name }

// LastWritten returns the key last-written timestamp.
func (k *MemKey) LastWritten() time.Time { return k.lastWritten }

// Value resolves the named value or reports that it doesn't exist.
func (k *MemKey) Value(name string) (Value, bool) {
	v, ok := k.values[strings.ToLower(name)]
	return v, ok
}

// Subkeys enumerates the immediate subkeys of this key.
func (k *MemKey) Subkeys() ([]Key, error) {
	keys := make([]Key, len(k.subkeys))
	for i, sub := range k.subkeys {
		keys[i] = sub
	}
	return keys, nil
}
