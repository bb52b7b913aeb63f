//go:build windows
// +build windows

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

	"golang.org/x/sys/windows/registry"
)

// liveReader resolves keys from the live registry rooted at
// HKEY_LOCAL_MACHINE. Key handles live until process exit, which is
// acceptable for a short-lived analysis run.
type liveReader struct {
	root registry.Key
}

// NewLiveReader builds a reader backed by the live registry.
func NewLiveReader() (Reader, error) {
	return &liveReader{root: registry.LOCAL_MACHINE}, nil
}

func (r *liveReader) Key(path string) (Key, bool) {
	k, err := registry.OpenKey(r.root, path, registry.READ)
	if err != nil {
		return nil, false
	}
	return &liveKey{k: k, name: leafName(path)}, true
}

func leafName(path string) string {
	if i := strings.LastIndex(path, `\`); i >= 0 {
		return path[i+1:]
	}
	return path
}

type liveKey struct {
	k    registry.Key
	name string
}

func (k *liveKey) Name() string { return k.name }

func (k *liveKey) LastWritten() time.Time {
	ki, err := k.k.Stat()
	if err != nil {
		return time.Time{}
	}
	return ki.ModTime().UTC()
}

func (k *liveKey) Value(name string) (Value, bool) {
	_, typ, err := k.k.GetValue(name, nil)
	if err != nil {
		return Value{}, false
	}
	switch typ {
	case registry.BINARY:
		b, _, err := k.k.GetBinaryValue(name)
		if err != nil {
			return Value{}, false
		}
		return BinaryValue(name, b), true
	case registry.SZ, registry.EXPAND_SZ:
		s, _, err := k.k.GetStringValue(name)
		if err != nil {
			return Value{}, false
		}
		return TextValue(name, s), true
	case registry.DWORD:
		v, _, err := k.k.GetIntegerValue(name)
		if err != nil {
			return Value{}, false
		}
		return Uint32Value(name, uint32(v)), true
	case registry.QWORD:
		v, _, err := k.k.GetIntegerValue(name)
		if err != nil {
			return Value{}, false
		}
		return Uint64Value(name, v), true
	}
	return Value{Name: name}, true
}

func (k *liveKey) Subkeys() ([]Key, error) {
	names, err := k.k.ReadSubKeyNames(-1)
	if err != nil {
		return nil, err
	}
	keys := make([]Key, 0, len(names))
	for _, name := range names {
		sub, err := registry.OpenKey(k.k, name, registry.READ)
		if err != nil {
			// subkeys can vanish or deny access between the enumeration
			// and the open call
			continue
		}
		keys = append(keys, &liveKey{k: sub, name: name})
	}
	return keys, nil
}
