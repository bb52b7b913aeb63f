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
	"errors"
	"fmt"
)

// UnsupportedVersionError designates a recognized but unimplemented
// cache layout. The decode call fails as a whole, it is never skipped
// silently.
type UnsupportedVersionError struct {
	// Version names the Windows release the layout belongs to.
	Version string
}

// Error returns the error message.
func (e UnsupportedVersionError) Error() string {
	return "unsupported shimcache version: " + e.Version
}

// TruncatedError designates a buffer shorter than a field's declared
// extent. It carries the position of the entry being decoded for
// diagnosability.
type TruncatedError struct {
	// Position is the ordinal of the entry that was being decoded.
	Position int
	// Offset is the buffer offset of the offending read.
	Offset int
	// Need is the number of bytes the field required.
	Need int
}

// Error returns the error message.
func (e TruncatedError) Error() string {
	return fmt.Sprintf("truncated shimcache buffer: entry %d needs %d bytes at offset %d", e.Position, e.Need, e.Offset)
}

// MalformedStringError designates an invalid UTF-16 string field.
type MalformedStringError struct {
	// Position is the ordinal of the entry that was being decoded.
	Position int
	// Err is the underlying conversion failure.
	Err error
}

// Error returns the error message.
func (e MalformedStringError) Error() string {
	return fmt.Sprintf("malformed string in shimcache entry %d: %v", e.Position, e.Err)
}

// Unwrap returns the underlying conversion failure.
func (e MalformedStringError) Unwrap() error { return e.Err }

// IsUnsupportedVersion returns true if the error designates an
// unimplemented cache layout.
func IsUnsupportedVersion(err error) bool {
	var uv UnsupportedVersionError
	return errors.As(err, &uv)
}

// IsTruncated returns true if the error designates an out-of-bounds read.
func IsTruncated(err error) bool {
	var tr TruncatedError
	return errors.As(err, &tr)
}
