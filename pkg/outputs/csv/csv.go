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

// Package csv emits the timeline as a semicolon-delimited record
// stream suitable for spreadsheet triage.
package csv

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kestrelsec/talon/pkg/outputs"
	"github.com/kestrelsec/talon/pkg/timeline"
)

const delimiter = ";"

var header = []string{
	"timestamp",
	"timestamp kind",
	"source",
	"shimcache position",
	"shimcache timestamp",
	"amcache timestamp",
	"description",
}

type sink struct {
	w *bufio.Writer
}

// NewSink builds a semicolon-delimited record sink writing to w.
func NewSink(w io.Writer) outputs.Sink {
	return &sink{w: bufio.NewWriterSize(w, 8*1024)}
}

func (s *sink) Write(entities []*timeline.Entity) error {
	if err := s.record(header...); err != nil {
		return err
	}
	for _, e := range entities {
		if err := s.entity(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *sink) Close() error { return s.w.Flush() }

func (s *sink) entity(e *timeline.Entity) error {
	err := s.record(
		exact(e.Timestamp),
		e.Timestamp.Kind.String(),
		"shimcache",
		position(e),
		shimcacheTimestamp(e),
		amcacheTimestamp(e),
		e.Description(),
	)
	if err != nil {
		return err
	}
	if !e.AmcacheConfirmed {
		return nil
	}
	// amcache-confirmed entities emit a second row tagging the amcache
	// evidence explicitly
	return s.record(
		amcacheTimestamp(e),
		timeline.Exact.String(),
		"amcache",
		position(e),
		shimcacheTimestamp(e),
		amcacheTimestamp(e),
		e.Description(),
	)
}

func (s *sink) record(cols ...string) error {
	for i, col := range cols {
		cols[i] = strings.ReplaceAll(col, delimiter, ",")
	}
	if _, err := s.w.WriteString(strings.Join(cols, delimiter)); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// exact renders the inferred instant, empty unless it resolved to an
// exact value.
func exact(ts timeline.Timestamp) string {
	if ts.Kind != timeline.Exact {
		return ""
	}
	return ts.TS.Format(time.RFC3339)
}

func position(e *timeline.Entity) string {
	if e.Synthetic() {
		return ""
	}
	return strconv.Itoa(e.Entry.Position)
}

func shimcacheTimestamp(e *timeline.Entity) string {
	if e.Synthetic() || e.Entry.LastModified.IsZero() {
		return ""
	}
	return e.Entry.LastModified.Format(time.RFC3339)
}

func amcacheTimestamp(e *timeline.Entity) string {
	switch {
	case e.File != nil:
		return e.File.KeyLastWritten.Format(time.RFC3339)
	case e.Program != nil:
		return e.Program.KeyLastWritten.Format(time.RFC3339)
	}
	return ""
}
