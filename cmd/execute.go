// Package cmd implements the command-line interface for querylog.
package cmd

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dalibo/querylog/engine"
	"github.com/dalibo/querylog/query"
	"github.com/dalibo/querylog/record"
	"github.com/dalibo/querylog/source"
)

// runQuery is the Run callback for rootCmd: it orchestrates the entire
// pipeline — parse and validate the query, discover files, read them
// (optionally across a worker pool), and evaluate + print the result.
func runQuery(cmd *cobra.Command, args []string) {
	startTime := time.Now()
	path, queryText := args[0], args[1]

	parsed, err := query.Parse(queryText)
	if err != nil {
		log.Fatalf("[ERROR] invalid query: %v", err)
	}
	schema := record.NginxSchema()
	if err := query.Validate(parsed, schema); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	query.ComputeShow(parsed, schema)

	files, err := collectFiles(path)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	if len(files) == 0 {
		log.Printf("[WARN] no matching log files under %s", path)
	}
	totalSize := calculateTotalFileSize(files)

	ev := engine.New(os.Stdout, parsed, schema, engine.Style{
		Color:     !noColorFlag,
		TermWidth: terminalWidth(),
	})

	numWorkers := determineWorkerCount(len(files), workersFlag)
	if numWorkers <= 1 {
		if err := evaluateSequential(path, ev); err != nil {
			log.Printf("[WARN] %v", err)
		}
	} else {
		evaluateParallel(files, numWorkers, ev)
	}
	ev.Finalize()

	duration := time.Since(startTime)
	log.Printf("[INFO] scanned %s in %s (%d files, %s)", path, duration.Round(time.Millisecond), len(files), formatBytes(totalSize))
}

// evaluateSequential walks path with a single goroutine, the simplest and
// most precise mode: ShouldStop is checked between every directory entry
// and every line, so a limited non-aggregate query stops reading as soon
// as it has enough rows.
func evaluateSequential(path string, ev *engine.Evaluator) error {
	rec := record.NewRecord()
	return source.Walk(path, ev, func(line []byte) error {
		if err := rec.Tokenize(line); err != nil {
			log.Printf("[WARN] skipping malformed line: %v", err)
			return nil
		}
		ev.Evaluate(rec)
		return nil
	})
}

// evaluateParallel distributes files across numWorkers goroutines that
// decompress and frame lines concurrently — one line channel per file, so
// several files' I/O can overlap — but the single consumer goroutine drains
// those channels strictly in file-discovery order, and each channel is
// itself ordered line-by-line by its one producer. Output order stays
// file-discovery order, then line order within a file, while the actual
// decompression/read work is parallelized; only tokenizing and evaluating
// stay serial, since Evaluator is not safe for concurrent use.
func evaluateParallel(files []string, numWorkers int, ev *engine.Evaluator) {
	fileLines := make([]chan []byte, len(files))
	for i := range fileLines {
		fileLines[i] = make(chan []byte, 4096)
	}

	indexCh := make(chan int, len(files))
	for i := range files {
		indexCh <- i
	}
	close(indexCh)

	var stopOnce sync.Once
	stopped := make(chan struct{})
	requestStop := func() { stopOnce.Do(func() { close(stopped) }) }

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				out := fileLines[idx]
				select {
				case <-stopped:
					close(out)
					continue
				default:
				}
				err := source.ReadFile(files[idx], stopSignal{stopped}, func(line []byte) error {
					buf := make([]byte, len(line))
					copy(buf, line)
					select {
					case out <- buf:
						return nil
					case <-stopped:
						return errStopped
					}
				})
				close(out)
				if err != nil && err != errStopped {
					log.Printf("[WARN] reading %s: %v", files[idx], err)
				}
			}
		}()
	}

	rec := record.NewRecord()
	for _, ch := range fileLines {
		if ev.ShouldStop() {
			requestStop()
		}
		for line := range ch {
			if ev.ShouldStop() {
				requestStop()
				continue
			}
			if err := rec.Tokenize(line); err != nil {
				log.Printf("[WARN] skipping malformed line: %v", err)
				continue
			}
			ev.Evaluate(rec)
		}
	}
	wg.Wait()
}

var errStopped = fmt.Errorf("stopped")

type stopSignal struct{ ch <-chan struct{} }

func (s stopSignal) ShouldStop() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// calculateTotalFileSize computes the total size of all input files, for
// the closing throughput summary line.
func calculateTotalFileSize(files []string) int64 {
	var total int64
	for _, file := range files {
		if fi, err := os.Stat(file); err == nil {
			total += fi.Size()
		}
	}
	return total
}

// formatBytes converts a byte count to a human-readable string (kB, MB, GB...).
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(b)/float64(div), "kMGTPE"[exp])
}

// terminalWidth returns the current terminal width, or 0 if stdout isn't a
// terminal or the size can't be determined.
func terminalWidth() int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}
