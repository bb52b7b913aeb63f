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

// Package timeline fuses the ordering guarantee of the shimcache with
// the precise timestamps of the amcache to infer a best-possible time
// bound for every cache entry. Identification patterns supplied by the
// investigator pin down the anchors the remaining bounds propagate
// from.
package timeline

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/kestrelsec/talon/pkg/artifacts/amcache"
	"github.com/kestrelsec/talon/pkg/artifacts/shimcache"
	log "github.com/sirupsen/logrus"
)

// ErrNoPatterns signals that the caller supplied zero identification
// patterns. Checked before any correlation work.
var ErrNoPatterns = errors.New("no identification patterns supplied")

// Correlate builds one timeline entity per shimcache entry plus a
// synthetic leading entity anchored at the cache last-update
// timestamp, then propagates time bounds between pattern-derived
// anchors and tightens them with amcache evidence.
//
// A nil entity slice with a nil error means no entry matched any
// pattern, so no inference is possible and no output is produced.
func Correlate(entries []*shimcache.Entry, cacheLastUpdate time.Time, artifact *amcache.Artifact, patterns []string) ([]*Entity, error) {
	if len(patterns) == 0 {
		return nil, ErrNoPatterns
	}
	compiled, err := CompilePatterns(patterns)
	if err != nil {
		return nil, err
	}

	// the synthetic entity is an always-present anchor, which
	// guarantees the anchor list is never empty below
	entities := make([]*Entity, 0, len(entries)+1)
	entities = append(entities, &Entity{Timestamp: ExactAt(cacheLastUpdate)})

	anchors := []int{0}
	matched := false
	for i, e := range entries {
		entity := &Entity{Entry: e}
		for _, re := range compiled {
			// first matching pattern wins, in caller-supplied order
			if !re.MatchString(e.Program.MatchTarget()) {
				continue
			}
			matched = true
			if !e.LastModified.IsZero() {
				entity.Timestamp = ExactAt(e.LastModified)
				anchors = append(anchors, i+1)
			}
			break
		}
		entities = append(entities, entity)
	}

	if !matched {
		log.Warnf("none of the %d shimcache entries matched the %d identification patterns",
			len(entries), len(patterns))
		return nil, nil
	}

	assignRanges(entities, anchors)

	confirmed := crossReference(entities, artifact)
	if len(confirmed) > 0 {
		log.Debugf("amcache confirmed %d shimcache entries", len(confirmed))
	}
	anchors = mergeAnchors(anchors, confirmed)
	assignRanges(entities, anchors)

	return entities, nil
}

// assignRanges propagates time bounds from the anchor entities to all
// the others. It is a pure function of the sorted anchor index list
// and is run twice, once over the pattern-derived anchors and once
// more after amcache confirmation. Entities at anchor indices are left
// untouched since they already hold exact instants.
//
// Increasing index means decreasing recency, so for entities strictly
// between two anchors the later index supplies the lower bound and the
// earlier index the upper bound. Anchor timestamps that are not
// monotonically non-increasing by index produce contradictory bounds,
// surfaced as data rather than an error.
func assignRanges(entities []*Entity, anchors []int) {
	if len(anchors) == 0 {
		return
	}
	ts := func(i int) time.Time { return entities[i].Timestamp.TS }

	first := anchors[0]
	for i := 0; i < first; i++ {
		entities[i].Timestamp = NewerThan(ts(first))
	}
	for j := 0; j < len(anchors)-1; j++ {
		a, b := anchors[j], anchors[j+1]
		for i := a + 1; i < b; i++ {
			entities[i].Timestamp = Between(ts(b), ts(a))
		}
	}
	last := anchors[len(anchors)-1]
	for i := last + 1; i < len(entities); i++ {
		entities[i].Timestamp = OlderThan(ts(last))
	}
}

// crossReference promotes bounded entities to exact anchors wherever
// an amcache artifact matches the entity and its timestamp falls
// strictly inside the entity bounds. Paths are compared
// case-insensitively and program names by exact equality. The first
// matching entity wins; a path is assumed unique across cache entries,
// a documented simplifying assumption rather than a guaranteed key.
func crossReference(entities []*Entity, artifact *amcache.Artifact) []int {
	if artifact == nil {
		return nil
	}
	var confirmed []int

	artifact.WalkFiles(func(f *amcache.FileArtifact) bool {
		for i, entity := range entities {
			if entity.Synthetic() || entity.Entry.Program.Type != shimcache.Executable {
				continue
			}
			if !strings.EqualFold(entity.Entry.Program.Path, f.Path) {
				continue
			}
			if entity.Timestamp.Contains(f.KeyLastWritten) {
				entity.Timestamp = ExactAt(f.KeyLastWritten)
				entity.File = f
				entity.AmcacheConfirmed = true
				confirmed = append(confirmed, i)
			}
			break
		}
		return true
	})

	for _, pe := range artifact.Programs() {
		if pe.Program == nil {
			continue
		}
		for i, entity := range entities {
			if entity.Synthetic() || entity.Entry.Program.Type != shimcache.Installed {
				continue
			}
			if entity.Entry.Program.Name != pe.Program.Name {
				continue
			}
			if entity.Timestamp.Contains(pe.Program.KeyLastWritten) {
				entity.Timestamp = ExactAt(pe.Program.KeyLastWritten)
				entity.Program = pe.Program
				entity.AmcacheConfirmed = true
				confirmed = append(confirmed, i)
			}
			break
		}
	}

	sort.Ints(confirmed)
	return confirmed
}

// mergeAnchors merges two sorted anchor index lists into a sorted list
// without duplicates.
func mergeAnchors(a, b []int) []int {
	merged := make([]int, 0, len(a)+len(b))
	merged = append(merged, a...)
	merged = append(merged, b...)
	sort.Ints(merged)
	out := merged[:0]
	for i, idx := range merged {
		if i > 0 && idx == merged[i-1] {
			continue
		}
		out = append(out, idx)
	}
	return out
}
