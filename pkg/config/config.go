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

// Package config gathers the knobs of the analysis pipeline. Flags are
// registered per section and bound to Viper so that every option can
// come from the command line, the environment or the YAML config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kestrelsec/talon/pkg/util/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "config-file"

	shimcacheRawFile    = "shimcache.raw-file"
	shimcacheControlSet = "shimcache.control-set"
	shimcache32Bit      = "shimcache.32-bit"

	timelinePatternsFile = "timeline.patterns-file"
	timelinePatterns     = "timeline.patterns"

	outputFormat = "output.format"
	outputFile   = "output.file"
)

// ShimcacheConfig controls the acquisition of the AppCompatCache payload.
type ShimcacheConfig struct {
	// RawFile is a file holding an exported AppCompatCache value
	// payload. When set, the live registry is not touched.
	RawFile string `json:"shimcache.raw-file" yaml:"shimcache.raw-file"`
	// ControlSet overrides the active control set number. Zero means
	// the active one is resolved from the Select key.
	ControlSet uint32 `json:"shimcache.control-set" yaml:"shimcache.control-set"`
	// Is32Bit designates the processor architecture of the source host.
	Is32Bit bool `json:"shimcache.32-bit" yaml:"shimcache.32-bit"`
}

func (c *ShimcacheConfig) initFromViper(v *viper.Viper) {
	c.RawFile = v.GetString(shimcacheRawFile)
	c.ControlSet = v.GetUint32(shimcacheControlSet)
	c.Is32Bit = v.GetBool(shimcache32Bit)
}

func (c ShimcacheConfig) addFlags(flags *pflag.FlagSet) {
	flags.String(shimcacheRawFile, "", "File holding an exported AppCompatCache value payload. When given, the live registry is not accessed")
	flags.Uint32(shimcacheControlSet, 0, "Overrides the active control set number. Zero resolves the active one from the Select key")
	flags.Bool(shimcache32Bit, false, "Designates the source host as a 32-bit architecture")
}

// TimelineConfig controls the correlation step.
type TimelineConfig struct {
	// PatternsFile holds the identification patterns, one per line.
	PatternsFile string `json:"timeline.patterns-file" yaml:"timeline.patterns-file"`
	// Patterns are identification patterns given inline.
	Patterns []string `json:"timeline.patterns" yaml:"timeline.patterns"`
}

func (c *TimelineConfig) initFromViper(v *viper.Viper) {
	c.PatternsFile = v.GetString(timelinePatternsFile)
	c.Patterns = v.GetStringSlice(timelinePatterns)
}

func (c TimelineConfig) addFlags(flags *pflag.FlagSet) {
	flags.String(timelinePatternsFile, "", "File with identification patterns, one regular expression per line")
	flags.StringSlice(timelinePatterns, nil, "Inline identification patterns")
}

// OutputConfig controls how the timeline is rendered.
type OutputConfig struct {
	// Format selects the sink type (csv|console).
	Format string `json:"output.format" yaml:"output.format"`
	// File is the output file path, empty for standard output.
	File string `json:"output.file" yaml:"output.file"`
}

func (c *OutputConfig) initFromViper(v *viper.Viper) {
	c.Format = v.GetString(outputFormat)
	c.File = v.GetString(outputFile)
}

func (c OutputConfig) addFlags(flags *pflag.FlagSet) {
	flags.String(outputFormat, "console", "Selects the output format (csv|console)")
	flags.String(outputFile, "", "Writes the rendered timeline to the file instead of standard output")
}

// Config stores the settings of all pipeline sections.
type Config struct {
	// Shimcache stores the cache acquisition settings.
	Shimcache ShimcacheConfig `json:"shimcache" yaml:"shimcache"`
	// Timeline stores the correlation settings.
	Timeline TimelineConfig `json:"timeline" yaml:"timeline"`
	// Output stores the rendering settings.
	Output OutputConfig `json:"output" yaml:"output"`
	// Log contains log-specific configuration options.
	Log log.Config `json:"logging" yaml:"logging"`

	flags *pflag.FlagSet
	viper *viper.Viper
}

// New builds a fresh config with all section flags registered.
func New() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	flags := new(pflag.FlagSet)
	flags.String(configFile, "", "Path of the YAML configuration file")

	c := &Config{viper: v, flags: flags}
	c.Shimcache.addFlags(flags)
	c.Timeline.addFlags(flags)
	c.Output.addFlags(flags)
	c.Log.AddFlags(flags)
	return c
}

// MustViperize adds the flag set to the Cobra command and binds the
// flags within the Viper flags.
func (c *Config) MustViperize(cmd *cobra.Command) {
	cmd.PersistentFlags().AddFlagSet(c.flags)
	if err := c.viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// Init loads the optional config file and populates all sections from
// Viper values.
func (c *Config) Init() error {
	if file := c.viper.GetString(configFile); file != "" {
		if err := c.tryLoadFile(file); err != nil {
			return err
		}
	}
	c.Shimcache.initFromViper(c.viper)
	c.Timeline.initFromViper(c.viper)
	c.Output.initFromViper(c.viper)
	c.Log.InitFromViper(c.viper)
	return nil
}

// tryLoadFile reads the configuration file and validates that it is
// well-formed YAML before handing it to Viper.
func (c *Config) tryLoadFile(file string) error {
	switch filepath.Ext(file) {
	case ".yaml", ".yml":
	default:
		return fmt.Errorf("%s is not a supported config file extension", filepath.Ext(file))
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var out interface{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("couldn't read the config file: %v", err)
	}
	c.viper.SetConfigFile(file)
	return c.viper.ReadInConfig()
}
