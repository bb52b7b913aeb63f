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
	"time"

	"github.com/kestrelsec/talon/pkg/hive"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	inventoryApplicationKey     = `Root\InventoryApplication`
	inventoryApplicationFileKey = `Root\InventoryApplicationFile`

	// dateFormat is the textual timestamp format of the InstallDate
	// and LinkDate inventory values (M/D/Y H:M:S).
	dateFormat = "1/2/2006 15:04:05"

	// sha1FileIDLen is the length of a file identifier carrying a SHA-1
	// digest after the four-character prefix.
	sha1FileIDLen = 44
	sha1Prefix    = "0000"
)

// Decode walks the program and file inventory subtrees of the amcache
// hive and groups the decoded records by program identifier. File
// records whose program identifier has no program record yet attach to
// a placeholder grouping, since the ordering between the two subtrees
// is not guaranteed. Missing required values or wrong-typed values are
// fatal for the whole decode.
func Decode(r hive.Reader) (*Artifact, error) {
	artifact := newArtifact()

	apps, err := subkeysOf(r, inventoryApplicationKey)
	if err != nil {
		return nil, err
	}
	for _, k := range apps {
		program, err := decodeProgram(k)
		if err != nil {
			return nil, err
		}
		entry := artifact.entry(program.ProgramID)
		entry.Program = program
	}

	files, err := subkeysOf(r, inventoryApplicationFileKey)
	if err != nil {
		return nil, err
	}
	var nfiles int
	for _, k := range files {
		file, err := decodeFile(k)
		if err != nil {
			return nil, err
		}
		entry := artifact.entry(file.ProgramID)
		entry.Files = append(entry.Files, file)
		nfiles++
	}

	log.Debugf("decoded %d amcache programs and %d files", len(apps), nfiles)
	return artifact, nil
}

// subkeysOf resolves the inventory key both relative to the hive root
// and under the Root key a mounted Amcache.hve exposes.
func subkeysOf(r hive.Reader, path string) ([]hive.Key, error) {
	k, ok := r.Key(path)
	if !ok {
		k, ok = r.Key(strings.TrimPrefix(path, `Root\`))
	}
	if !ok {
		return nil, MissingFieldError{Key: path}
	}
	subkeys, err := k.Subkeys()
	if err != nil {
		return nil, errors.Wrapf(err, "amcache: unable to enumerate %s", path)
	}
	return subkeys, nil
}

func decodeProgram(k hive.Key) (*ProgramArtifact, error) {
	name, err := requireText(k, "Name")
	if err != nil {
		return nil, err
	}
	installDate, err := optionalDate(k, "InstallDate")
	if err != nil {
		return nil, err
	}
	return &ProgramArtifact{
		ProgramID:      k.Name(),
		Name:           name,
		InstallDate:    installDate,
		KeyLastWritten: k.LastWritten(),
	}, nil
}

func decodeFile(k hive.Key) (*FileArtifact, error) {
	programID, err := requireText(k, "ProgramId")
	if err != nil {
		return nil, err
	}
	fileID, err := requireText(k, "FileId")
	if err != nil {
		return nil, err
	}
	path, err := requireText(k, "LowerCaseLongPath")
	if err != nil {
		return nil, err
	}
	linkDate, err := optionalDate(k, "LinkDate")
	if err != nil {
		return nil, err
	}
	return &FileArtifact{
		ProgramID:      programID,
		FileID:         fileID,
		Path:           path,
		SHA1:           parseSHA1(fileID),
		LinkDate:       linkDate,
		KeyLastWritten: k.LastWritten(),
	}, nil
}

// parseSHA1 extracts the digest out of the file identifier when it
// matches the expected "0000" + 40 hex character shape.
func parseSHA1(fileID string) string {
	if len(fileID) != sha1FileIDLen || !strings.HasPrefix(fileID, sha1Prefix) {
		return ""
	}
	digest := fileID[len(sha1Prefix):]
	for _, c := range digest {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return ""
		}
	}
	return digest
}

func requireText(k hive.Key, name string) (string, error) {
	v, ok := k.Value(name)
	if !ok {
		return "", MissingFieldError{Key: k.Name(), Value: name}
	}
	s, ok := v.Text()
	if !ok {
		return "", TypeMismatchError{Key: k.Name(), Value: name, Want: "REG_SZ"}
	}
	return s, nil
}

// optionalDate reads a textual timestamp value. An absent value or an
// empty string means the timestamp is not recorded; a present value
// that fails to parse is a type mismatch.
func optionalDate(k hive.Key, name string) (time.Time, error) {
	v, ok := k.Value(name)
	if !ok {
		return time.Time{}, nil
	}
	s, ok := v.Text()
	if !ok {
		return time.Time{}, TypeMismatchError{Key: k.Name(), Value: name, Want: "REG_SZ"}
	}
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, TypeMismatchError{Key: k.Name(), Value: name, Want: "an M/D/Y H:M:S timestamp"}
	}
	return t.UTC(), nil
}
