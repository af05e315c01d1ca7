package history

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
)

// Log is a bounded, file-backed input history.
type Log struct {
	path string
	max  int
	lock *flock.Flock

	mu      sync.Mutex
	entries []string
}

// Open loads the history at path, keeping at most max entries.
func Open(path string, max int) (*Log, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if max <= 0 {
		return nil, fmt.Errorf("history size must be positive, got %d", max)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	l := &Log{
		path: path,
		max:  max,
		lock: flock.New(path + ".lock"),
	}
	if err := l.lock.RLock(); err != nil {
		return nil, fmt.Errorf("lock history: %w", err)
	}
	defer l.lock.Unlock()

	entries, err := readEntries(path)
	if err != nil {
		return nil, err
	}
	l.entries = tail(entries, max)
	return l, nil
}

// Path returns the history file location.
func (l *Log) Path() string {
	return l.path
}

// Entries returns a copy of the loaded entries, oldest first.
func (l *Log) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Append records line. Entries written by other shells since Open are kept.
func (l *Log) Append(line string) error {
	line = sanitize(line)
	if line == "" {
		return nil
	}

	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	defer l.lock.Unlock()

	onDisk, err := readEntries(l.path)
	if err != nil {
		return err
	}
	onDisk = append(onDisk, line)

	if len(onDisk) > l.max {
		if err := rewrite(l.path, tail(onDisk, l.max)); err != nil {
			return err
		}
	} else if err := appendLine(l.path, line); err != nil {
		return err
	}

	l.mu.Lock()
	l.entries = tail(append(l.entries, line), l.max)
	l.mu.Unlock()
	return nil
}

func readEntries(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			entries = append(entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write history: %w", err)
	}
	return f.Close()
}

func rewrite(path string, entries []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*")
	if err != nil {
		return fmt.Errorf("create history temp: %w", err)
	}
	w := bufio.NewWriter(tmp)
	for _, entry := range entries {
		w.WriteString(entry)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close history: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

func tail(entries []string, max int) []string {
	if len(entries) <= max {
		return entries
	}
	out := make([]string, max)
	copy(out, entries[len(entries)-max:])
	return out
}

func sanitize(line string) string {
	line = strings.ReplaceAll(line, "\r", " ")
	line = strings.ReplaceAll(line, "\n", " ")
	return strings.TrimSpace(line)
}
