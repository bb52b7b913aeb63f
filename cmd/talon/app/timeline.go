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

package app

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/kestrelsec/talon/pkg/artifacts/amcache"
	"github.com/kestrelsec/talon/pkg/artifacts/shimcache"
	"github.com/kestrelsec/talon/pkg/config"
	"github.com/kestrelsec/talon/pkg/hive"
	"github.com/kestrelsec/talon/pkg/outputs"
	"github.com/kestrelsec/talon/pkg/outputs/console"
	"github.com/kestrelsec/talon/pkg/outputs/csv"
	"github.com/kestrelsec/talon/pkg/timeline"
	logger "github.com/kestrelsec/talon/pkg/util/log"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Correlate shimcache and amcache into an execution timeline",
	RunE:  runTimeline,
}

func runTimeline(cmd *cobra.Command, args []string) error {
	if err := cfg.Init(); err != nil {
		return err
	}
	if err := logger.InitFromConfig(cfg.Log); err != nil {
		return err
	}

	patterns, err := gatherPatterns(cfg.Timeline)
	if err != nil {
		return err
	}

	entries, cacheLastUpdate, artifact, err := acquire(cfg.Shimcache)
	if err != nil {
		return err
	}

	entities, err := timeline.Correlate(entries, cacheLastUpdate, artifact, patterns)
	if err != nil {
		return err
	}
	if entities == nil {
		log.Warn("no identification pattern matched, timeline inference is not possible")
		return nil
	}

	sink, cleanup, err := newSink(cfg.Output)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := sink.Write(entities); err != nil {
		return err
	}
	return sink.Close()
}

func gatherPatterns(c config.TimelineConfig) ([]string, error) {
	patterns := append([]string(nil), c.Patterns...)
	if c.PatternsFile != "" {
		loaded, err := timeline.LoadPatterns(c.PatternsFile)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, loaded...)
	}
	return patterns, nil
}

// acquire produces the decoded shimcache entries, the cache last-update
// timestamp and the amcache inventory. The payload comes either from an
// exported value blob or from the live registry.
func acquire(c config.ShimcacheConfig) ([]*shimcache.Entry, time.Time, *amcache.Artifact, error) {
	if c.RawFile != "" {
		raw, err := os.ReadFile(c.RawFile)
		if err != nil {
			return nil, time.Time{}, nil, err
		}
		st, err := os.Stat(c.RawFile)
		if err != nil {
			return nil, time.Time{}, nil, err
		}
		controlSet := c.ControlSet
		if controlSet == 0 {
			controlSet = 1
		}
		entries, err := shimcache.Decode(raw, controlSet, c.Is32Bit)
		if err != nil {
			return nil, time.Time{}, nil, err
		}
		// the exported blob carries no key metadata, so the file
		// modification time stands in for the cache last-update anchor
		return entries, st.ModTime().UTC(), nil, nil
	}

	r, err := hive.NewLiveReader()
	if err != nil {
		return nil, time.Time{}, nil, err
	}
	controlSet := c.ControlSet
	if controlSet == 0 {
		controlSet, err = hive.CurrentControlSet(r)
		if err != nil {
			return nil, time.Time{}, nil, err
		}
	}
	is32bit := c.Is32Bit
	if !is32bit {
		if probed, err := hive.Is32BitArchitecture(r, controlSet); err == nil {
			is32bit = probed
		}
	}
	raw, cacheLastUpdate, err := hive.AppCompatCache(r, controlSet)
	if err != nil {
		return nil, time.Time{}, nil, err
	}
	entries, err := shimcache.Decode(raw, controlSet, is32bit)
	if err != nil {
		return nil, time.Time{}, nil, err
	}

	artifact, err := amcache.Decode(r)
	if err != nil {
		// the amcache hive is not always mounted, correlation still
		// works from the pattern anchors alone
		if amcache.IsMissingField(err) {
			log.Warnf("amcache inventory unavailable: %v", err)
			return entries, cacheLastUpdate, nil, nil
		}
		return nil, time.Time{}, nil, err
	}
	return entries, cacheLastUpdate, artifact, nil
}

func newSink(c config.OutputConfig) (outputs.Sink, func(), error) {
	typ, err := outputs.TypeFromString(c.Format)
	if err != nil {
		return nil, nil, err
	}
	var w io.Writer = os.Stdout
	cleanup := func() {}
	if c.File != "" {
		f, err := os.Create(c.File)
		if err != nil {
			return nil, nil, err
		}
		w = f
		cleanup = func() { _ = f.Close() }
	}
	switch typ {
	case outputs.CSV:
		return csv.NewSink(w), cleanup, nil
	case outputs.Console:
		return console.NewSink(w), cleanup, nil
	}
	cleanup()
	return nil, nil, errors.New("unreachable output type")
}
