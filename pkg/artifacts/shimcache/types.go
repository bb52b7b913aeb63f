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

// Package shimcache decodes the AppCompatCache registry payload into
// typed entries. The cache is maintained by the operating system in
// recency order, so the entry position carries an ordering guarantee
// even for layouts without a trustworthy timestamp field.
package shimcache

import (
	"fmt"
	"time"
)

// ProgramType discriminates the two kinds of cache rows.
type ProgramType uint8

const (
	// Executable designates a cache row holding a plain filesystem path.
	Executable ProgramType = iota
	// Installed designates a cache row holding an installed-program
	// record matched by the fixed-format descriptor string.
	Installed
)

// String returns the human-readable program type.
func (t ProgramType) String() string {
	if t == Installed {
		return "program"
	}
	return "executable"
}

// Program is the tagged variant stored in a cache entry. Path is set
// for the Executable type, Name and RawDescriptor for Installed.
type Program struct {
	Type          ProgramType
	Path          string
	Name          string
	RawDescriptor string
}

// MatchTarget returns the string identification patterns are tested
// against, either the executable path or the installed-program name.
func (p Program) MatchTarget() string {
	if p.Type == Installed {
		return p.Name
	}
	return p.Path
}

// String returns the human-readable program designation.
func (p Program) String() string {
	if p.Type == Installed {
		return fmt.Sprintf("program %s", p.Name)
	}
	return p.Path
}

// Entry is a single row observed in the AppCompatCache payload. Entries
// are immutable once decoded.
type Entry struct {
	// Position is the ordinal index in on-disk order. A lower position
	// means the row was updated more recently than rows with higher
	// positions.
	Position int
	// Program is the executable path or installed-program record.
	Program Program
	// LastModified is the timestamp stored in the row. The zero value
	// means the layout or the row carries no timestamp.
	LastModified time.Time
	// HasExecFlag designates whether the layout encodes the insertion
	// flags field from which the Executed bit is taken.
	HasExecFlag bool
	// Executed reports whether the insertion flags mark the row as
	// executed. Only meaningful when HasExecFlag is set.
	Executed bool
	// Payload holds the opaque shim data blob, preserved verbatim.
	Payload []byte
}
