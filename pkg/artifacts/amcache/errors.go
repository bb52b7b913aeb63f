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
	"errors"
	"fmt"
)

// MissingFieldError designates a required registry key or value that
// is absent. The whole decode fails since a partial inventory is worse
// than failing fast.
type MissingFieldError struct {
	// Key is the registry key path or subkey name.
	Key string
	// Value is the missing value name, empty when the key itself is missing.
	Value string
}

// Error returns the error message.
func (e MissingFieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("amcache: required key %s not found", e.Key)
	}
	return fmt.Sprintf("amcache: key %s has no %s value", e.Key, e.Value)
}

// TypeMismatchError designates a registry value whose type or format
// differs from the expected one.
type TypeMismatchError struct {
	// Key is the registry subkey name the value belongs to.
	Key string
	// Value is the offending value name.
	Value string
	// Want describes the expected type or format.
	Want string
}

// Error returns the error message.
func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("amcache: value %s of key %s is not %s", e.Value, e.Key, e.Want)
}

// IsMissingField returns true if the error designates an absent
// required key or value.
func IsMissingField(err error) bool {
	var mf MissingFieldError
	return errors.As(err, &mf)
}

// IsTypeMismatch returns true if the error designates an unexpected
// value type or format.
func IsTypeMismatch(err error) bool {
	var tm TypeMismatchError
	return errors.As(err, &tm)
}
