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

package utf16

import (
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	s := []rune("Do you want café?")
	encoded := utf16.Encode(s)
	require.Equal(t, "Do you want café?", Decode(encoded))
}

func TestDecodeBytes(t *testing.T) {
	b := EncodeBytes(`C:\Windows\System32\cmd.exe`)
	s, err := DecodeBytes(b)
	require.NoError(t, err)
	assert.Equal(t, `C:\Windows\System32\cmd.exe`, s)

	s, err = DecodeBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestDecodeBytesOddCount(t *testing.T) {
	_, err := DecodeBytes([]byte{0x43, 0x00, 0x3a})
	require.ErrorIs(t, err, ErrOddByteCount)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	paths := []string{
		`C:\Program Files\7-Zip\7z.exe`,
		`C:\Users\björn\Desktop\payload.exe`,
		`C:\Users\😀\run.exe`,
	}
	for _, path := range paths {
		s, err := DecodeBytes(EncodeBytes(path))
		require.NoError(t, err)
		assert.Equal(t, path, s)
	}
}
