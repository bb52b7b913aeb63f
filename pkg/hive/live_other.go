//go:build !windows
// +build !windows

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
	"errors"
)

// NewLiveReader is unsupported off Windows. Offline analysis consumes
// registry data through a MemHive or an exported value blob instead.
func NewLiveReader() (Reader, error) {
	return nil, errors.New("live registry access requires Windows")
}
