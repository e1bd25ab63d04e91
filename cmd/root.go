// Package cmd implements the command-line interface for querylog.
// It uses the Cobra library to handle commands, flags, and execution.
package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	workersFlag int
	noColorFlag bool
)

// rootCmd is querylog's single command: a path (file or directory of NGINX
// access logs, optionally gzip/zstd compressed) and a pipeline query.
var rootCmd = &cobra.Command{
	Use:   "querylog <path> <query>",
	Short: "Analytical query engine for NGINX access logs",
	Long: `querylog scans NGINX access log files (plain, .gz or .zst/.zstd,
recursively if path is a directory) and evaluates a pipeline query against
each record: filter | group | show | sort | limit.

Examples:
  querylog /var/log/nginx 'status > 499'
  querylog access.log 'group ip | show ip, count(*) | sort count(*) desc | limit 10'`,
	Args: cobra.ExactArgs(2),
	Run:  runQuery,
}

// Execute runs the root command. Called by main.go to start the CLI.
func Execute(version string) {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

func init() {
	rootCmd.Flags().IntVar(&workersFlag, "workers", 0,
		"Number of goroutines reading files concurrently (0 = auto-detect)")
	rootCmd.Flags().BoolVar(&noColorFlag, "no-color", false,
		"Disable bolding the result table's header row")
}
