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

package csv

import (
	"strings"
	"testing"
	"time"

	"github.com/kestrelsec/talon/pkg/artifacts/amcache"
	"github.com/kestrelsec/talon/pkg/artifacts/shimcache"
	"github.com/kestrelsec/talon/pkg/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	cacheTS := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	anchorTS := time.Date(2024, 2, 20, 9, 30, 0, 0, time.UTC)
	confirmedTS := time.Date(2024, 2, 18, 9, 30, 0, 0, time.UTC)

	entities := []*timeline.Entity{
		{Timestamp: timeline.ExactAt(cacheTS)},
		{
			Entry: &shimcache.Entry{
				Position: 0,
				Program:  shimcache.Program{Type: shimcache.Executable, Path: `C:\Windows\explorer.exe`},
			},
			Timestamp: timeline.Between(anchorTS, cacheTS),
		},
		{
			Entry: &shimcache.Entry{
				Position:     1,
				Program:      shimcache.Program{Type: shimcache.Executable, Path: `C:\Users\admin\dropper.exe`},
				LastModified: confirmedTS,
			},
			File:             &amcache.FileArtifact{Path: `c:\users\admin\dropper.exe`, KeyLastWritten: confirmedTS},
			AmcacheConfirmed: true,
			Timestamp:        timeline.ExactAt(confirmedTS),
		},
		{
			Entry: &shimcache.Entry{
				Position: 2,
				Program:  shimcache.Program{Type: shimcache.Executable, Path: `C:\evil;stage2.exe`},
			},
			Timestamp: timeline.OlderThan(confirmedTS),
		},
	}

	var sb strings.Builder
	sink := NewSink(&sb)
	require.NoError(t, sink.Write(entities))
	require.NoError(t, sink.Close())

	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	// header + 4 entities + 1 extra amcache row
	require.Len(t, lines, 6)

	assert.Equal(t, "timestamp;timestamp kind;source;shimcache position;shimcache timestamp;amcache timestamp;description", lines[0])
	assert.Equal(t, "2024-03-01T12:00:00Z;exact;shimcache;;;;shimcache last update", lines[1])

	// bounded entities carry no resolved instant
	assert.Equal(t, ";range;shimcache;0;;;C:\\Windows\\explorer.exe", lines[2])

	assert.Equal(t, "2024-02-18T09:30:00Z;exact;shimcache;1;2024-02-18T09:30:00Z;2024-02-18T09:30:00Z;C:\\Users\\admin\\dropper.exe", lines[3])
	assert.Equal(t, "2024-02-18T09:30:00Z;exact;amcache;1;2024-02-18T09:30:00Z;2024-02-18T09:30:00Z;C:\\Users\\admin\\dropper.exe", lines[4])

	// the delimiter never leaks out of a field
	assert.Equal(t, ";range-end;shimcache;2;;;C:\\evil,stage2.exe", lines[5])
}
