package source

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Stopper lets the walker abort early once a consumer (typically a
// limited, non-aggregate query) has all the rows it needs.
type Stopper interface {
	ShouldStop() bool
}

// LineFunc is called once per raw log line, including its trailing
// newline when present.
type LineFunc func(line []byte) error

// classify decides whether name should be read, and if so how to open it:
// a ".gz" or ".zst"/".zstd" file is read unless its name contains "error",
// an "access.log" file is read as plain text. Anything else is silently
// skipped.
func classify(name string) (open func(*os.File) (readCloser, error), ok bool) {
	base := filepath.Base(name)
	switch {
	case strings.HasSuffix(base, ".gz"):
		if strings.Contains(base, "error") {
			return nil, false
		}
		return func(f *os.File) (readCloser, error) { return newParallelGzipReader(f) }, true
	case strings.HasSuffix(base, ".zst") || strings.HasSuffix(base, ".zstd"):
		if strings.Contains(base, "error") {
			return nil, false
		}
		return func(f *os.File) (readCloser, error) { return newZstdDecoder(f) }, true
	case strings.Contains(base, "access.log"):
		return func(f *os.File) (readCloser, error) { return f, nil }, true
	default:
		return nil, false
	}
}

type readCloser interface {
	Read(p []byte) (int, error)
	Close() error
}

// Walk evaluates path against fn: a single file is read directly, a
// directory is walked recursively in post-order, checking stop between
// entries at every level including inside subdirectories.
func Walk(path string, stop Stopper, fn LineFunc) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return walkDir(path, stop, fn)
	}
	return walkFile(path, stop, fn)
}

func walkDir(dir string, stop Stopper, fn LineFunc) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if stop.ShouldStop() {
			return nil
		}
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := walkDir(full, stop, fn); err != nil {
				return err
			}
			continue
		}
		if err := walkFile(full, stop, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkFile(path string, stop Stopper, fn LineFunc) error {
	return ReadFile(path, stop, fn)
}

// ReadFile opens path through the appropriate decompressor (or skips it
// silently if it doesn't look like a log file) and calls fn once per line.
// Exported so a worker pool can read several files concurrently while
// Walk handles the simpler single-goroutine case.
func ReadFile(path string, stop Stopper, fn LineFunc) error {
	open, ok := classify(path)
	if !ok {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rc, err := open(f)
	if err != nil {
		return err
	}
	defer rc.Close()

	reader := bufio.NewReaderSize(rc, 64*1024)
	for {
		if stop.ShouldStop() {
			return nil
		}
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if err != nil {
			return nil
		}
	}
}

// ListFiles recursively collects every path under root that classify would
// read, in the same post-order traversal Walk uses. Used by the worker pool
// to size and distribute work across files up front.
func ListFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if _, ok := classify(root); ok {
			return []string{root}, nil
		}
		return nil, nil
	}
	var files []string
	if err := listDir(root, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func listDir(dir string, files *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := listDir(full, files); err != nil {
				return err
			}
			continue
		}
		if _, ok := classify(full); ok {
			*files = append(*files, full)
		}
	}
	return nil
}
