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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromYamlFile(t *testing.T) {
	c := New()

	err := c.flags.Parse([]string{"--config-file=_fixtures/talon.yml"})
	require.NoError(t, err)
	require.NoError(t, c.viper.BindPFlags(c.flags))

	require.NoError(t, c.Init())

	assert.Equal(t, `C:\cases\0451\appcompatcache.bin`, c.Shimcache.RawFile)
	assert.Equal(t, uint32(2), c.Shimcache.ControlSet)
	assert.True(t, c.Shimcache.Is32Bit)

	assert.Equal(t, `C:\cases\0451\patterns.txt`, c.Timeline.PatternsFile)
	assert.Equal(t, []string{`(?i)mimikatz`, `(?i)\\temp\\.*\.exe`}, c.Timeline.Patterns)

	assert.Equal(t, "csv", c.Output.Format)
	assert.Equal(t, `C:\cases\0451\timeline.csv`, c.Output.File)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Formatter)
	// untouched sections keep their flag defaults
	assert.Equal(t, 15, c.Log.MaxBackups)
	assert.True(t, c.Log.LogStdout)
}

func TestDefaults(t *testing.T) {
	c := New()
	require.NoError(t, c.viper.BindPFlags(c.flags))
	require.NoError(t, c.Init())

	assert.Empty(t, c.Shimcache.RawFile)
	assert.Equal(t, uint32(0), c.Shimcache.ControlSet)
	assert.Equal(t, "console", c.Output.Format)
	assert.Equal(t, "info", c.Log.Level)
}

func TestUnsupportedConfigExtension(t *testing.T) {
	c := New()
	require.NoError(t, c.flags.Parse([]string{"--config-file=talon.toml"}))
	require.NoError(t, c.viper.BindPFlags(c.flags))

	require.EqualError(t, c.Init(), ".toml is not a supported config file extension")
}
