// Package cmd implements the command-line interface for querylog.
package cmd

import (
	"fmt"

	"github.com/dalibo/querylog/source"
)

// collectFiles gathers every log file under path, a single file or a
// directory walked recursively.
func collectFiles(path string) ([]string, error) {
	files, err := source.ListFiles(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return files, nil
}
