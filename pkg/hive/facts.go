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
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	selectKey          = `Select`
	appCompatCacheKey  = `ControlSet%03d\Control\Session Manager\AppCompatCache`
	environmentKey     = `ControlSet%03d\Control\Session Manager\Environment`
	appCompatCacheName = "AppCompatCache"
)

// resolve tries the key path both relative to the hive root and under
// the SYSTEM root key. Live registry access goes through HKLM\SYSTEM
// while mounted/offline SYSTEM hives expose control sets at the root.
func resolve(r Reader, path string) (Key, bool) {
	if k, ok := r.Key(path); ok {
		return k, true
	}
	return r.Key(`SYSTEM\` + path)
}

// CurrentControlSet reads the number of the currently active control
// set from the Select key.
func CurrentControlSet(r Reader) (uint32, error) {
	k, ok := resolve(r, selectKey)
	if !ok {
		return 0, errors.New("hive: Select key not found")
	}
	v, ok := k.Value("Current")
	if !ok {
		return 0, errors.New("hive: Select key has no Current value")
	}
	cs, ok := v.Uint32()
	if !ok {
		return 0, errors.Errorf("hive: Select\\Current is %s, expected REG_DWORD", v.Type)
	}
	return cs, nil
}

// AppCompatCache reads the raw AppCompatCache value payload from the
// given control set, along with the last-written timestamp of its key.
// The timestamp reflects the moment the operating system last flushed
// the cache to the registry.
func AppCompatCache(r Reader, controlSet uint32) ([]byte, time.Time, error) {
	path := fmt.Sprintf(appCompatCacheKey, controlSet)
	k, ok := resolve(r, path)
	if !ok {
		return nil, time.Time{}, errors.Errorf("hive: %s key not found", path)
	}
	v, ok := k.Value(appCompatCacheName)
	if !ok {
		return nil, time.Time{}, errors.Errorf("hive: %s has no %s value", path, appCompatCacheName)
	}
	b, ok := v.Bytes()
	if !ok {
		return nil, time.Time{}, errors.Errorf("hive: %s value is %s, expected REG_BINARY", appCompatCacheName, v.Type)
	}
	return b, k.LastWritten(), nil
}

// Is32BitArchitecture probes the processor architecture recorded in the
// session manager environment of the given control set.
func Is32BitArchitecture(r Reader, controlSet uint32) (bool, error) {
	k, ok := resolve(r, fmt.Sprintf(environmentKey, controlSet))
	if !ok {
		return false, errors.New("hive: session manager Environment key not found")
	}
	v, ok := k.Value("PROCESSOR_ARCHITECTURE")
	if !ok {
		return false, errors.New("hive: PROCESSOR_ARCHITECTURE value not found")
	}
	arch, ok := v.Text()
	if !ok {
		return false, errors.Errorf("hive: PROCESSOR_ARCHITECTURE is %s, expected REG_SZ", v.Type)
	}
	return strings.EqualFold(arch, "x86"), nil
}
