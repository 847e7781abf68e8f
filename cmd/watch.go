// Copyright 2026 CleverData
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"log"

	"github.com/cleverdata/notion-cleaner/internal/core"
	"github.com/cleverdata/notion-cleaner/internal/history"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func watchOptions(cmd *cobra.Command) core.WatchOptions {
	interval, _ := cmd.Flags().GetString("interval")
	settle, _ := cmd.Flags().GetString("settle")
	noFsnotify, _ := cmd.Flags().GetBool("no-fsnotify")
	return core.WatchOptions{
		Interval:        interval,
		SettlingDelay:   settle,
		DisableFsnotify: noFsnotify,
		Run: core.RunOptions{
			DryRun: viper.GetBool("dry-run"),
			Report: printResult,
		},
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch config [config ...]",
	Short: "Keep cleaning on a schedule and whenever a config file changes",
	Long: `Runs every config file once, then again on each interval and shortly
after a config file is saved. This is what the installed service runs.`,
	Example: `  notion-cleaner watch --interval 30m ~/notion/inbox.yaml ~/notion/tasks.yaml`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := watchOptions(cmd)

		if service.Interactive() {
			openHistory()
			defer history.Close()

			fmt.Println("notion-cleaner watching... (Ctrl+C to stop)")
			core.WatchConfigs(cmd.Context(), args, opts, service.ConsoleLogger)
			return nil
		}

		// Under the service manager, s.Run() must own the process lifecycle.
		s, err := getService(args, opts)
		if err != nil {
			return fmt.Errorf("failed to initialize service: %w", err)
		}
		openHistory()
		defer history.Close()
		if err := s.Run(); err != nil {
			log.Printf("Service stopped with error: %v", err)
			return err
		}
		return nil
	},
}

func addWatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("interval", "1h", "Time between full cleanup passes")
	cmd.Flags().String("settle", "5s", "Quiet period after a config file changes before it is re-run")
	cmd.Flags().Bool("no-fsnotify", false, "Ignore config file changes and only run on the interval")
}

func init() {
	addWatchFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
