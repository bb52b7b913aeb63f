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
	"fmt"
	"time"
)

// TimestampKind discriminates how much is known about the instant of a
// timeline entity.
type TimestampKind uint8

const (
	// Exact designates a trustworthy single instant.
	Exact TimestampKind = iota
	// Bounded designates an instant between two anchors.
	Bounded
	// BoundedStart designates an instant with only a lower bound. The
	// entity precedes the first anchor in cache order, so it is at
	// least as recent as the anchor.
	BoundedStart
	// BoundedEnd designates an instant with only an upper bound. The
	// entity follows the last anchor in cache order, so it is at most
	// as recent as the anchor.
	BoundedEnd
)

// String returns the human-readable timestamp kind label.
func (k TimestampKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Bounded:
		return "range"
	case BoundedStart:
		return "range-start"
	case BoundedEnd:
		return "range-end"
	}
	return "unknown"
}

// Timestamp is the inferred instant or bound of a timeline entity.
type Timestamp struct {
	// Kind discriminates which of the remaining fields are meaningful.
	Kind TimestampKind
	// TS holds the instant for Exact, the lower bound for BoundedStart
	// and the upper bound for BoundedEnd.
	TS time.Time
	// From is the lower bound of a Bounded timestamp.
	From time.Time
	// To is the upper bound of a Bounded timestamp.
	To time.Time
}

// ExactAt builds an Exact timestamp.
func ExactAt(t time.Time) Timestamp { return Timestamp{Kind: Exact, TS: t} }

// Between builds a Bounded timestamp with the given bounds.
func Between(from, to time.Time) Timestamp { return Timestamp{Kind: Bounded, From: from, To: to} }

// NewerThan builds a BoundedStart timestamp with the given lower bound.
func NewerThan(t time.Time) Timestamp { return Timestamp{Kind: BoundedStart, TS: t} }

// OlderThan builds a BoundedEnd timestamp with the given upper bound.
func OlderThan(t time.Time) Timestamp { return Timestamp{Kind: BoundedEnd, TS: t} }

// Contradictory reports whether a Bounded timestamp holds an inverted
// or empty interval. Such bounds can legitimately arise from
// non-monotonic real-world clock data and are surfaced as a data
// quality signal instead of an error.
func (t Timestamp) Contradictory() bool {
	return t.Kind == Bounded && !t.From.Before(t.To)
}

// Contains reports whether the instant lies strictly inside the bound.
// Exact timestamps contain nothing, they are already resolved.
func (t Timestamp) Contains(instant time.Time) bool {
	switch t.Kind {
	case Bounded:
		return t.From.Before(instant) && instant.Before(t.To)
	case BoundedStart:
		return t.TS.Before(instant)
	case BoundedEnd:
		return instant.Before(t.TS)
	}
	return false
}

// String returns the human-readable rendition of the timestamp.
func (t Timestamp) String() string {
	switch t.Kind {
	case Exact:
		return t.TS.Format(time.RFC3339)
	case Bounded:
		return fmt.Sprintf("between %s and %s", t.From.Format(time.RFC3339), t.To.Format(time.RFC3339))
	case BoundedStart:
		return fmt.Sprintf("no earlier than %s", t.TS.Format(time.RFC3339))
	case BoundedEnd:
		return fmt.Sprintf("no later than %s", t.TS.Format(time.RFC3339))
	}
	return "unknown"
}
