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
	"strings"

	"github.com/cleverdata/notion-cleaner/internal/history"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyDatabase string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List rows removed by previous runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		if err := history.Init(historyPath()); err != nil {
			return err
		}
		defer history.Close()

		removals, err := history.ListRemovals(historyDatabase, limit)
		if err != nil {
			return err
		}
		if len(removals) == 0 {
			fmt.Println("No removals recorded.")
			return nil
		}

		fmt.Printf("%-16s %-38s %-30s %s\n", "REMOVED", "ROW", "TITLE", "DATABASE")
		fmt.Println(strings.Repeat("-", 110))
		for _, r := range removals {
			title := strings.TrimSpace(r.Title)
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%-16s %-38s %-30s %s\n", humanize.Time(r.RemovedAt), r.RowID, truncate(title, 30), r.DatabaseURL)
		}
		return nil
	},
}

var resetHistoryCmd = &cobra.Command{
	Use:   "reset-history",
	Short: "Clear the removal history",
	Long:  `Clears the local SQLite database that records removed rows, for one database (--database) or entirely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := history.Init(historyPath()); err != nil {
			return err
		}
		defer history.Close()

		if historyDatabase != "" {
			fmt.Printf("Clearing history for: %s\n", historyDatabase)
		} else {
			fmt.Println("Clearing ENTIRE removal history.")
		}

		n, err := history.ResetHistory(historyDatabase)
		if err != nil {
			return err
		}
		fmt.Printf("History reset complete (%d entries removed).\n", n)
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	historyCmd.Flags().StringVarP(&historyDatabase, "database", "d", "", "Only show removals from this database url")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries to show (0 for all)")
	resetHistoryCmd.Flags().StringVarP(&historyDatabase, "database", "d", "", "Only clear removals from this database url")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetHistoryCmd)
}
