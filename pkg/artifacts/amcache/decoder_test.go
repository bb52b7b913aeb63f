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

package amcache

import (
	"strings"
	"testing"
	"time"

	"github.com/kestrelsec/talon/pkg/hive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chromeFileID = "0000" + "aea15c6dd9b1959f9ba7f693ad7225b01e573a3f"

func fixture() *hive.MemHive {
	h := hive.NewMemHive()

	h.Put(`Root\InventoryApplication\0006chrome`).
		SetLastWritten(time.Date(2023, 11, 4, 10, 30, 0, 0, time.UTC)).
		SetValue(hive.TextValue("Name", "Google Chrome")).
		SetValue(hive.TextValue("InstallDate", "11/4/2023 10:29:55"))

	h.Put(`Root\InventoryApplication\0007vim`).
		SetLastWritten(time.Date(2023, 12, 1, 8, 0, 0, 0, time.UTC)).
		SetValue(hive.TextValue("Name", "Vim 9.0")).
		SetValue(hive.TextValue("InstallDate", ""))

	h.Put(`Root\InventoryApplicationFile\chrome.exe|1a2b`).
		SetLastWritten(time.Date(2023, 11, 4, 10, 30, 2, 0, time.UTC)).
		SetValue(hive.TextValue("ProgramId", "0006chrome")).
		SetValue(hive.TextValue("FileId", chromeFileID)).
		SetValue(hive.TextValue("LowerCaseLongPath", `c:\program files\google\chrome\application\chrome.exe`)).
		SetValue(hive.TextValue("LinkDate", "10/12/2023 17:41:09"))

	h.Put(`Root\InventoryApplicationFile\orphan.exe|9f`).
		SetLastWritten(time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)).
		SetValue(hive.TextValue("ProgramId", "0009ghost")).
		SetValue(hive.TextValue("FileId", "not-a-digest")).
		SetValue(hive.TextValue("LowerCaseLongPath", `c:\users\admin\downloads\orphan.exe`))

	return h
}

func TestDecode(t *testing.T) {
	artifact, err := Decode(fixture())
	require.NoError(t, err)

	programs := artifact.Programs()
	require.Len(t, programs, 3)

	var chrome *ProgramEntry
	for _, entry := range programs {
		if entry.Program != nil && entry.Program.Name == "Google Chrome" {
			chrome = entry
		}
	}
	require.NotNil(t, chrome)
	assert.Equal(t, "0006chrome", chrome.Program.ProgramID)
	assert.Equal(t, time.Date(2023, 11, 4, 10, 29, 55, 0, time.UTC), chrome.Program.InstallDate)
	assert.Equal(t, time.Date(2023, 11, 4, 10, 30, 0, 0, time.UTC), chrome.Program.KeyLastWritten)

	require.Len(t, chrome.Files, 1)
	file := chrome.Files[0]
	assert.Equal(t, `c:\program files\google\chrome\application\chrome.exe`, file.Path)
	assert.Equal(t, "aea15c6dd9b1959f9ba7f693ad7225b01e573a3f", file.SHA1)
	assert.Equal(t, time.Date(2023, 10, 12, 17, 41, 9, 0, time.UTC), file.LinkDate)
	assert.Equal(t, time.Date(2023, 11, 4, 10, 30, 2, 0, time.UTC), file.KeyLastWritten)
}

func TestDecodeEmptyInstallDateIsAbsent(t *testing.T) {
	artifact, err := Decode(fixture())
	require.NoError(t, err)

	for _, entry := range artifact.Programs() {
		if entry.Program != nil && entry.Program.Name == "Vim 9.0" {
			assert.True(t, entry.Program.InstallDate.IsZero())
			return
		}
	}
	t.Fatal("program record not decoded")
}

func TestDecodeOrphanedFileGetsPlaceholder(t *testing.T) {
	artifact, err := Decode(fixture())
	require.NoError(t, err)

	var orphan *ProgramEntry
	for _, entry := range artifact.Programs() {
		if entry.Program == nil {
			orphan = entry
		}
	}
	require.NotNil(t, orphan)
	require.Len(t, orphan.Files, 1)
	assert.Equal(t, `c:\users\admin\downloads\orphan.exe`, orphan.Files[0].Path)
	// the identifier doesn't match the "0000" + 40 hex shape
	assert.Empty(t, orphan.Files[0].SHA1)
}

func TestDecodeNonHexFileIDIsNotADigest(t *testing.T) {
	h := fixture()
	h.Put(`Root\InventoryApplicationFile\fake.exe|00`).
		SetValue(hive.TextValue("ProgramId", "0006chrome")).
		SetValue(hive.TextValue("FileId", sha1Prefix+strings.Repeat("zy", 20))).
		SetValue(hive.TextValue("LowerCaseLongPath", `c:\users\admin\fake.exe`))

	artifact, err := Decode(h)
	require.NoError(t, err)

	var fake *FileArtifact
	artifact.WalkFiles(func(f *FileArtifact) bool {
		if f.Path == `c:\users\admin\fake.exe` {
			fake = f
			return false
		}
		return true
	})
	require.NotNil(t, fake)
	// the identifier has the right length and prefix but no hex digest
	assert.Empty(t, fake.SHA1)
}

func TestDecodeMissingRequiredValue(t *testing.T) {
	h := fixture()
	h.Put(`Root\InventoryApplication\0008broken`).
		SetValue(hive.TextValue("InstallDate", "1/1/2024 00:00:00"))

	_, err := Decode(h)
	require.True(t, IsMissingField(err))
	assert.EqualError(t, err, "amcache: key 0008broken has no Name value")
}

func TestDecodeWrongTypedValue(t *testing.T) {
	h := fixture()
	h.Put(`Root\InventoryApplication\0008broken`).
		SetValue(hive.Uint32Value("Name", 42))

	_, err := Decode(h)
	require.True(t, IsTypeMismatch(err))
}

func TestDecodeUnparsableInstallDate(t *testing.T) {
	h := fixture()
	h.Put(`Root\InventoryApplication\0008broken`).
		SetValue(hive.TextValue("Name", "Broken")).
		SetValue(hive.TextValue("InstallDate", "last tuesday"))

	_, err := Decode(h)
	require.True(t, IsTypeMismatch(err))
}

func TestDecodeMissingSubtree(t *testing.T) {
	_, err := Decode(hive.NewMemHive())
	require.True(t, IsMissingField(err))
}

func TestWalkFilesIsRestartable(t *testing.T) {
	artifact, err := Decode(fixture())
	require.NoError(t, err)

	count := func() int {
		var n int
		artifact.WalkFiles(func(*FileArtifact) bool {
			n++
			return true
		})
		return n
	}
	assert.Equal(t, 2, count())
	assert.Equal(t, 2, count())

	var n int
	artifact.WalkFiles(func(*FileArtifact) bool {
		n++
		return false
	})
	assert.Equal(t, 1, n)
}
