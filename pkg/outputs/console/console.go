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

// Package console renders the timeline as a terminal table.
package console

import (
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kestrelsec/talon/pkg/outputs"
	"github.com/kestrelsec/talon/pkg/timeline"
)

type sink struct {
	w io.Writer
}

// NewSink builds a table sink rendering to w.
func NewSink(w io.Writer) outputs.Sink {
	return &sink{w: w}
}

func (s *sink) Write(entities []*timeline.Entity) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(s.w)
	t.AppendHeader(table.Row{"Position", "Timestamp", "Kind", "Amcache", "Description"})
	for _, e := range entities {
		pos := ""
		if !e.Synthetic() {
			pos = strconv.Itoa(e.Entry.Position)
		}
		confirmed := ""
		if e.AmcacheConfirmed {
			confirmed = "confirmed"
		}
		t.AppendRow(table.Row{pos, e.Timestamp.String(), e.Timestamp.Kind.String(), confirmed, e.Description()})
	}
	t.Render()
	return nil
}

func (s *sink) Close() error { return nil }
