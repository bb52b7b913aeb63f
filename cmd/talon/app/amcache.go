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
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kestrelsec/talon/pkg/artifacts/amcache"
	"github.com/kestrelsec/talon/pkg/hive"
	logger "github.com/kestrelsec/talon/pkg/util/log"
	"github.com/spf13/cobra"
)

var amcacheCmd = &cobra.Command{
	Use:   "amcache",
	Short: "Decode and dump the amcache program inventory",
	RunE:  runAmcache,
}

func runAmcache(cmd *cobra.Command, args []string) error {
	if err := cfg.Init(); err != nil {
		return err
	}
	if err := logger.InitFromConfig(cfg.Log); err != nil {
		return err
	}

	r, err := hive.NewLiveReader()
	if err != nil {
		return err
	}
	artifact, err := amcache.Decode(r)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Program", "Install Date", "Path", "SHA-1", "Key Last Written"})
	for _, entry := range artifact.Programs() {
		name, installDate := "(unknown program)", ""
		if entry.Program != nil {
			name = entry.Program.Name
			if !entry.Program.InstallDate.IsZero() {
				installDate = entry.Program.InstallDate.Format(time.RFC3339)
			}
		}
		if len(entry.Files) == 0 {
			t.AppendRow(table.Row{name, installDate, "", "", ""})
			continue
		}
		for _, f := range entry.Files {
			t.AppendRow(table.Row{name, installDate, f.Path, f.SHA1, f.KeyLastWritten.Format(time.RFC3339)})
		}
	}
	t.Render()
	return nil
}
