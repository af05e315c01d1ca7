package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ScannerReader reads newline-delimited input, printing the prompt before
// each line. It serves pipes, files and tests.
type ScannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
	prompt  string
}

// NewScannerReader wraps in. A nil out suppresses the prompt.
func NewScannerReader(in io.Reader, out io.Writer, prompt string) *ScannerReader {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	return &ScannerReader{scanner: scanner, out: out, prompt: prompt}
}

// ReadLine returns the next line without its terminator.
func (r *ScannerReader) ReadLine() (string, error) {
	if r.out != nil && r.prompt != "" {
		io.WriteString(r.out, r.prompt)
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSuffix(r.scanner.Text(), "\r"), nil
}

// TerminalReader edits lines on a raw-mode terminal with in-session history
// recall. While it is open, all shell output must go through Writer so line
// endings are translated.
type TerminalReader struct {
	fd    int
	state *term.State
	term  *term.Terminal
}

// NewTerminalReader puts in into raw mode. Close restores it.
func NewTerminalReader(in *os.File, out io.Writer, prompt string, recall []string) (*TerminalReader, error) {
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("raw mode: %w", err)
	}
	rw := struct {
		io.Reader
		io.Writer
	}{in, out}
	t := term.NewTerminal(rw, prompt)
	if width, height, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(width, height)
	}
	for _, line := range recall {
		t.History.Add(line)
	}
	t.AutoCompleteCallback = completeOnTab
	return &TerminalReader{fd: fd, state: state, term: t}, nil
}

func completeOnTab(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' || pos != len(line) {
		return "", 0, false
	}
	completed, ok := CompleteCommand(line)
	if !ok {
		return "", 0, false
	}
	return completed, len(completed), true
}

// ReadLine returns the next edited line. Ctrl-D on an empty line yields io.EOF.
func (r *TerminalReader) ReadLine() (string, error) {
	return r.term.ReadLine()
}

// Writer returns the terminal's output stream.
func (r *TerminalReader) Writer() io.Writer {
	return r.term
}

// Close restores the terminal mode.
func (r *TerminalReader) Close() error {
	return term.Restore(r.fd, r.state)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
