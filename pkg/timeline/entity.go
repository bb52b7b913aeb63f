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

package timeline

import (
	"github.com/kestrelsec/talon/pkg/artifacts/amcache"
	"github.com/kestrelsec/talon/pkg/artifacts/shimcache"
)

// Entity is the correlator's unit of output, one per shimcache entry
// plus a synthetic leading entity holding the cache last-update
// timestamp.
type Entity struct {
	// Entry is the source shimcache entry, nil for the synthetic entity.
	Entry *shimcache.Entry
	// File is the matched amcache file artifact, when any.
	File *amcache.FileArtifact
	// Program is the matched amcache program artifact, when any.
	Program *amcache.ProgramArtifact
	// AmcacheConfirmed reports whether the entity timestamp was promoted
	// to Exact by an amcache artifact falling inside its bounds.
	AmcacheConfirmed bool
	// Timestamp is the inferred instant or bound.
	Timestamp Timestamp
}

// Synthetic reports whether the entity is the leading cache
// last-update anchor rather than a decoded cache row.
func (e *Entity) Synthetic() bool { return e.Entry == nil }

// Description returns the human-readable designation of the matched
// program or file.
func (e *Entity) Description() string {
	if e.Synthetic() {
		return "shimcache last update"
	}
	return e.Entry.Program.String()
}
