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

// Package amcache decodes the InventoryApplication and
// InventoryApplicationFile registry subtrees of the Amcache hive into
// program and file artifacts. Unlike the shimcache, amcache records
// carry precise timestamps, which makes them the strong-evidence side
// of timeline correlation.
package amcache

import (
	"time"
)

// FileArtifact is a single InventoryApplicationFile record.
type FileArtifact struct {
	// ProgramID ties the file to the program inventory record.
	ProgramID string
	// FileID is the raw file identifier value.
	FileID string
	// Path is the lower-cased long path of the file.
	Path string
	// SHA1 holds the hash parsed out of the file identifier, empty when
	// the identifier doesn't match the expected shape.
	SHA1 string
	// LinkDate is the PE link timestamp, zero when absent.
	LinkDate time.Time
	// KeyLastWritten is the last-written timestamp of the registry key
	// the record was decoded from.
	KeyLastWritten time.Time
}

// ProgramArtifact is a single InventoryApplication record.
type ProgramArtifact struct {
	// ProgramID is the program identifier, taken from the subkey name.
	ProgramID string
	// Name is the installed program name.
	Name string
	// InstallDate is the recorded installation date, zero when absent.
	InstallDate time.Time
	// KeyLastWritten is the last-written timestamp of the registry key
	// the record was decoded from.
	KeyLastWritten time.Time
}

// ProgramEntry groups one program inventory record with the file
// records sharing its program identifier. Program is nil for a
// placeholder grouping created when file records arrive before (or
// without) their program record.
type ProgramEntry struct {
	Program *ProgramArtifact
	Files   []*FileArtifact
}

// Artifact is the decoded amcache inventory keyed by program identifier.
type Artifact struct {
	entries map[string]*ProgramEntry
	order   []string
}

func newArtifact() *Artifact {
	return &Artifact{entries: make(map[string]*ProgramEntry)}
}

func (a *Artifact) entry(programID string) *ProgramEntry {
	e, ok := a.entries[programID]
	if !ok {
		e = &ProgramEntry{}
		a.entries[programID] = e
		a.order = append(a.order, programID)
	}
	return e
}

// Programs returns the program groupings in decode order.
func (a *Artifact) Programs() []*ProgramEntry {
	entries := make([]*ProgramEntry, 0, len(a.order))
	for _, id := range a.order {
		entries = append(entries, a.entries[id])
	}
	return entries
}

// WalkFiles traverses all file artifacts independent of which program
// they belong to. The traversal is restartable and stops early when fn
// returns false.
func (a *Artifact) WalkFiles(fn func(*FileArtifact) bool) {
	for _, id := range a.order {
		for _, f := range a.entries[id].Files {
			if !fn(f) {
				return
			}
		}
	}
}
