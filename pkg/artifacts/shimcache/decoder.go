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

package shimcache

import (
	"regexp"

	"github.com/dustin/go-humanize"
	"github.com/kestrelsec/talon/pkg/util/bytes"
	"github.com/kestrelsec/talon/pkg/util/filetime"
	"github.com/kestrelsec/talon/pkg/util/utf16"
	log "github.com/sirupsen/logrus"
)

const (
	signatureXP    uint32 = 0xDEADBEEF
	signatureVista uint32 = 0xBADC0FFE
	signatureWin7  uint32 = 0xBADC0FEE

	// headerSize is the size of the cache header for the Windows 7
	// layout. The same offset holds the version marker bytes of the
	// Windows 8/8.1 layouts.
	headerSize = 128

	entrySize64 = 48
	entrySize32 = 32

	// executedFlag is the insertion flags bit marking the row as executed.
	executedFlag = 0x2
)

const win10Signature = "10ts"

var win8Markers = []string{"00ts", "10ts"}

// programDescriptor is the fixed-format descriptor the Windows 10
// layout stores for installed-program rows in place of a path. The
// program name sits in the fifth whitespace-delimited field.
var programDescriptor = regexp.MustCompile(`^([0-9a-f]{8})\s+([0-9a-f]{16})\s+([0-9a-f]{16})\s+(\w{4})\s+([\w.]+)\s+(\w+)\s*(\w*)$`)

// Decode parses the raw AppCompatCache value payload into the ordered
// entry sequence. The payload layout is selected from the signature at
// offset zero and the marker bytes at offset 128. Layouts of Windows
// XP, Vista, 8 and 8.1 are recognized but yield UnsupportedVersionError.
// The control set number only serves diagnostics, while the
// architecture flag selects the field widths of the Windows 7 records.
func Decode(raw []byte, controlSet uint32, is32bit bool) ([]*Entry, error) {
	r := newReader(raw)
	b, err := r.bytesAt(0, 4)
	if err != nil {
		return nil, err
	}
	sig := bytes.ReadUint32(b)

	log.Debugf("decoding %s shimcache payload (control set %d, signature 0x%X)",
		humanize.Bytes(uint64(len(raw))), controlSet, sig)

	switch sig {
	case signatureXP:
		return nil, UnsupportedVersionError{Version: "Windows XP"}
	case signatureVista:
		return nil, UnsupportedVersionError{Version: "Windows Vista"}
	case signatureWin7:
		return decodeWin7(r, is32bit)
	}

	if m, err := r.bytesAt(headerSize, 4); err == nil {
		for _, marker := range win8Markers {
			if string(m) == marker {
				return nil, UnsupportedVersionError{Version: "Windows 8/8.1"}
			}
		}
	}

	// on Windows 10 the first dword is the byte offset of the records
	off := int(sig)
	if m, err := r.bytesAt(off, 4); err == nil && string(m) == win10Signature {
		return decodeWin10(r, off)
	}

	return nil, UnsupportedVersionError{Version: "unknown"}
}

// decodeWin7 parses the fixed-size record array of the Windows 7
// layout. Records reference their path and shim data payloads by
// absolute offsets into the cache blob. Decoding stops when the
// declared entry count is reached or when no full record header
// remains, whichever comes first.
func decodeWin7(r *reader, is32bit bool) ([]*Entry, error) {
	b, err := r.bytesAt(4, 4)
	if err != nil {
		return nil, err
	}
	count := int(bytes.ReadUint32(b))

	entrySize := entrySize64
	if is32bit {
		entrySize = entrySize32
	}

	// the count field is untrusted, cap the allocation by the number of
	// records the buffer can actually hold
	maxEntries := (len(r.buf) - headerSize) / entrySize
	if maxEntries < 0 {
		maxEntries = 0
	}
	entries := make([]*Entry, 0, min(count, maxEntries))

	r.seek(headerSize)
	for pos := 0; pos < count; pos++ {
		r.entry(pos)
		if r.peek(entrySize) == nil {
			break
		}

		var (
			pathSize   int
			pathOffset int
			ts         uint64
			flags      uint32
			dataSize   int
			dataOffset int
		)
		if is32bit {
			ps, _ := r.uint16()
			_, _ = r.uint16() // max path size
			po, _ := r.uint32()
			ts, _ = r.uint64()
			flags, _ = r.uint32()
			_, _ = r.uint32() // shim flags
			ds, _ := r.uint32()
			do, _ := r.uint32()
			pathSize, pathOffset, dataSize, dataOffset = int(ps), int(po), int(ds), int(do)
		} else {
			ps, _ := r.uint16()
			_, _ = r.uint16() // max path size
			_, _ = r.uint32() // alignment padding
			po, _ := r.uint64()
			ts, _ = r.uint64()
			flags, _ = r.uint32()
			_, _ = r.uint32() // shim flags
			ds, _ := r.uint64()
			do, _ := r.uint64()
			pathSize, pathOffset, dataSize, dataOffset = int(ps), int(po), int(ds), int(do)
		}

		pb, err := r.bytesAt(pathOffset, pathSize)
		if err != nil {
			return nil, err
		}
		path, err := utf16.DecodeBytes(pb)
		if err != nil {
			return nil, MalformedStringError{Position: pos, Err: err}
		}

		var payload []byte
		if dataSize > 0 {
			db, err := r.bytesAt(dataOffset, dataSize)
			if err != nil {
				return nil, err
			}
			payload = append([]byte(nil), db...)
		}

		entries = append(entries, &Entry{
			Position:     pos,
			Program:      Program{Type: Executable, Path: path},
			LastModified: filetime.ToEpoch(ts),
			HasExecFlag:  true,
			Executed:     flags&executedFlag != 0,
			Payload:      payload,
		})
	}

	log.Debugf("decoded %d of %d declared Windows 7 shimcache entries", len(entries), count)
	return entries, nil
}

// decodeWin10 parses the variable-size record sequence of the Windows
// 10 layout. Each record is preceded by the "10ts" signature; the first
// non-matching signature marks the end of valid records and terminates
// decoding without an error.
func decodeWin10(r *reader, off int) ([]*Entry, error) {
	entries := make([]*Entry, 0)

	r.seek(off)
	for pos := 0; ; pos++ {
		r.entry(pos)
		if m := r.peek(4); m == nil || string(m) != win10Signature {
			break
		}
		if _, err := r.bytes(4); err != nil {
			return nil, err
		}
		// the declared entry size is not needed for traversal
		if _, err := r.uint32(); err != nil {
			return nil, err
		}
		pathLen, err := r.uint16()
		if err != nil {
			return nil, err
		}
		pb, err := r.bytes(int(pathLen))
		if err != nil {
			return nil, err
		}
		path, err := utf16.DecodeBytes(pb)
		if err != nil {
			return nil, MalformedStringError{Position: pos, Err: err}
		}
		ts, err := r.uint64()
		if err != nil {
			return nil, err
		}
		payloadSize, err := r.uint32()
		if err != nil {
			return nil, err
		}
		db, err := r.bytes(int(payloadSize))
		if err != nil {
			return nil, err
		}
		var payload []byte
		if len(db) > 0 {
			payload = append([]byte(nil), db...)
		}

		entries = append(entries, &Entry{
			Position:     pos,
			Program:      classify(path),
			LastModified: filetime.ToEpoch(ts),
			Payload:      payload,
		})
	}

	log.Debugf("decoded %d Windows 10 shimcache entries", len(entries))
	return entries, nil
}

// classify discriminates installed-program descriptors from plain
// executable paths.
func classify(path string) Program {
	if m := programDescriptor.FindStringSubmatch(path); m != nil {
		return Program{Type: Installed, Name: m[5], RawDescriptor: path}
	}
	return Program{Type: Executable, Path: path}
}
