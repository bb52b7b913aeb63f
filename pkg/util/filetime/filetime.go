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

package filetime

import (
	"time"
)

// epochDelta is the number of 100-nanosecond intervals between the
// Windows epoch (1601-01-01) and the Unix epoch (1970-01-01).
const epochDelta = 116444736000000000

// ToEpoch converts the Windows file timestamp to Unix time. A zero
// filetime converts to the zero time.Time value so that callers can
// rely on IsZero to detect absent timestamps in registry records.
func ToEpoch(ts uint64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanoseconds(ts)).UTC()
}

// FromEpoch converts Unix time to the Windows file timestamp. The
// zero time.Time value converts to a zero filetime.
func FromEpoch(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano()/100 + epochDelta)
}

// nanoseconds returns filetime ts in nanoseconds
// since Epoch (00:00:00 UTC, January 1, 1970).
func nanoseconds(ts uint64) int64 {
	// 100-nanosecond intervals since January 1, 1601
	nsec := int64(uint32(ts>>32))<<32 + int64(uint32(ts))
	// change starting time to the Epoch (00:00:00 UTC, January 1, 1970)
	nsec -= epochDelta
	// convert into nanoseconds
	nsec *= 100
	return nsec
}
