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

// Package outputs renders correlated timeline entities. Sinks receive
// an explicit writer instead of mutating process-wide output state, so
// batch runs over many hives can direct each result independently.
package outputs

import (
	"fmt"

	"github.com/kestrelsec/talon/pkg/timeline"
)

// Type is the output sink type.
type Type uint8

const (
	// CSV renders entities as a semicolon-delimited record stream.
	CSV Type = iota
	// Console renders entities as a terminal table.
	Console
)

// String returns the sink type name.
func (t Type) String() string {
	if t == Console {
		return "console"
	}
	return "csv"
}

// TypeFromString converts the sink type name to the type.
func TypeFromString(s string) (Type, error) {
	switch s {
	case "csv":
		return CSV, nil
	case "console", "table":
		return Console, nil
	}
	return 0, fmt.Errorf("%q is not a valid output type", s)
}

// Sink consumes correlated timeline entities.
type Sink interface {
	// Write renders the entity sequence.
	Write(entities []*timeline.Entity) error
	// Close flushes any buffered output.
	Close() error
}
