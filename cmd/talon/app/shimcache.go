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
	logger "github.com/kestrelsec/talon/pkg/util/log"
	"github.com/spf13/cobra"
)

var shimcacheCmd = &cobra.Command{
	Use:   "shimcache",
	Short: "Decode and dump the raw shimcache entries",
	RunE:  runShimcache,
}

func runShimcache(cmd *cobra.Command, args []string) error {
	if err := cfg.Init(); err != nil {
		return err
	}
	if err := logger.InitFromConfig(cfg.Log); err != nil {
		return err
	}

	entries, cacheLastUpdate, _, err := acquire(cfg.Shimcache)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("shimcache last update: %s", cacheLastUpdate.Format(time.RFC3339))
	t.AppendHeader(table.Row{"Position", "Type", "Program", "Last Modified", "Executed"})
	for _, e := range entries {
		lastModified := ""
		if !e.LastModified.IsZero() {
			lastModified = e.LastModified.Format(time.RFC3339)
		}
		executed := ""
		if e.HasExecFlag {
			executed = "no"
			if e.Executed {
				executed = "yes"
			}
		}
		t.AppendRow(table.Row{e.Position, e.Program.Type.String(), e.Program.String(), lastModified, executed})
	}
	t.Render()
	return nil
}
