package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// LineReader reads one line of user input after showing prompt.
// It returns io.EOF when the user ends the session (Ctrl-D or Ctrl-C).
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// LinerReader provides line editing and history for an interactive terminal.
type LinerReader struct {
	line        *liner.State
	historyFile string
}

// NewLinerReader creates a LinerReader. History is loaded from and saved to
// historyFile; an empty path keeps history in memory only.
func NewLinerReader(historyFile string) *LinerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &LinerReader{line: line, historyFile: historyFile}
	r.loadHistory()
	return r
}

func (r *LinerReader) loadHistory() {
	if r.historyFile == "" {
		return
	}
	if f, err := os.Open(r.historyFile); err == nil {
		_, _ = r.line.ReadHistory(f)
		f.Close()
	}
}

// ReadLine implements LineReader.
func (r *LinerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (r *LinerReader) Close() error {
	if r.historyFile != "" {
		if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = r.line.WriteHistory(f)
			f.Close()
		}
	}
	return r.line.Close()
}

// ScannerReader reads lines from a plain stream. It is used when stdin is
// not a terminal.
type ScannerReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewScannerReader creates a ScannerReader echoing prompts to out.
func NewScannerReader(in io.Reader, out io.Writer) *ScannerReader {
	if out == nil {
		out = io.Discard
	}
	return &ScannerReader{in: bufio.NewReader(in), out: out}
}

// ReadLine implements LineReader.
func (r *ScannerReader) ReadLine(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)

	line, err := r.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close implements LineReader.
func (r *ScannerReader) Close() error { return nil }

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return liner.TerminalSupported() && isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
