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
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cleverdata/notion-cleaner/internal/core"
	"github.com/cleverdata/notion-cleaner/internal/history"
	"github.com/fatih/color"
	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Version = "0.1.0" // Default version

// rootCmd cleans up the databases of every config file given on the command line
var rootCmd = &cobra.Command{
	Use:   "notion-cleaner [config ...]",
	Short: "Remove empty rows from Notion databases",
	Long: `notion-cleaner deletes rows from Notion databases that are empty by
the rules of each config file: blank title, no page content, empty
properties, and optionally a minimum age since creation or last edit.

Each config file is YAML:

  token: <token_v2 cookie>
  title: true        # require a blank title (default true)
  content: false     # require no page content (default false)
  props: [Status]    # require these properties to be empty
  created: 86400     # only rows created at least this many seconds ago
  edited: 3600       # only rows edited at least this many seconds ago
  databases:
    - url: https://www.notion.so/...
      content: true  # per database overrides

Booleans must be written true/false: yes/no/on/off are read as text,
trigger a warning and fall back to the default. Keys are case-insensitive.`,
	Version:       Version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		core.DebugMode = viper.GetBool("debug")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		openHistory()
		defer history.Close()

		opts := core.RunOptions{
			Now:    time.Now(),
			DryRun: viper.GetBool("dry-run"),
			Report: printResult,
		}
		for _, path := range args {
			if err := core.RunConfigFile(cmd.Context(), path, opts, service.ConsoleLogger); err != nil {
				return err
			}
		}
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().Bool("debug", false, "Log every row that is checked and removed")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Report what would be removed without removing anything")
	rootCmd.PersistentFlags().String("history-db", "", "Removal history database (default is <cache dir>/notion-cleaner/history.db)")
	rootCmd.PersistentFlags().Bool("no-history", false, "Do not record removed rows")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		log.Fatalf("Failed to bind flags: %v", err)
	}
}

// initConfig lets NOTION_CLEANER_* environment variables stand in for flags.
func initConfig() {
	viper.SetEnvPrefix("notion_cleaner")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func historyPath() string {
	if p := viper.GetString("history-db"); p != "" {
		return p
	}
	return history.DefaultPath()
}

// openHistory enables the removal log. A log that cannot be opened is not
// a reason to skip the cleanup.
func openHistory() {
	if viper.GetBool("no-history") || viper.GetBool("dry-run") {
		return
	}
	if err := history.Init(historyPath()); err != nil {
		log.Printf("Warning: removal history disabled: %v", err)
	}
}

func printResult(line string) {
	switch {
	case strings.HasPrefix(line, "done:"):
		color.New(color.FgGreen).Println(line)
	case strings.HasPrefix(line, "fail:"):
		color.New(color.FgRed).Println(line)
	case strings.HasPrefix(line, "not found"):
		color.New(color.FgYellow).Println(line)
	default:
		fmt.Println(line)
	}
}
