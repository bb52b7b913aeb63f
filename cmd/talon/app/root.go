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
	"github.com/kestrelsec/talon/pkg/config"
	"github.com/spf13/cobra"
)

var cfg = config.New()

// RootCmd is the entrance to the Talon CLI
var RootCmd = &cobra.Command{
	Use:   "talon",
	Short: "Windows execution-evidence timeline analyzer",
	Long: `
	Talon decodes the ShimCache (AppCompatCache) and AmCache execution-evidence
	registry artifacts and correlates them into a timeline. The ShimCache keeps
	its rows in recency order but rarely holds trustworthy timestamps, while the
	AmCache inventory records precise timestamps for a subset of the programs the
	ShimCache observed. Talon fuses both, using investigator-supplied
	identification patterns as timing anchors, to infer a best-possible time
	bound for every cache row.
	`,
	SilenceUsage: true,
}

func init() {
	cfg.MustViperize(RootCmd)
	RootCmd.AddCommand(timelineCmd)
	RootCmd.AddCommand(shimcacheCmd)
	RootCmd.AddCommand(amcacheCmd)
	RootCmd.AddCommand(versionCmd)
}
