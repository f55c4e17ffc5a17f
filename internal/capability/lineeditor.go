package capability

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"
)

// historySize bounds the interactive shell history.
const historySize = 500

// LineReader yields one line of user input per call.  It returns
// io.EOF when input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader picks a reader for stdin: a readline editor with
// history when stdin is a terminal, a plain scanner otherwise.  An
// empty historyFile disables persistent history.
func NewLineReader(historyFile string, stdout io.Writer) LineReader {
	if !term.IsTerminal(int(os.Stdin.Fd())) || os.Getenv("INSIDE_EMACS") != "" {
		return NewScannerReader(os.Stdin, stdout)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyFile,
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: readline init failed (%v), using basic input\n", err)
		return NewScannerReader(os.Stdin, stdout)
	}
	return &editorReader{rl: rl}
}

// ── readline ─────────────────────────────────────────────────────────

type editorReader struct {
	rl *readline.Instance
}

func (e *editorReader) ReadLine(prompt string) (string, error) {
	e.rl.SetPrompt(prompt)
	line, err := e.rl.Readline()
	if err != nil {
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		return "", err
	}
	if trimmed := strings.TrimSpace(line); trimmed != "" {
		_ = e.rl.SaveToHistory(trimmed)
	}
	return line, nil
}

func (e *editorReader) Close() error {
	if e.rl == nil {
		return nil
	}
	err := e.rl.Close()
	e.rl = nil
	return err
}

// ── scanner ──────────────────────────────────────────────────────────

// ScannerReader reads newline-separated input, printing the prompt to
// out (if non-nil) before each line.
type ScannerReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

// NewScannerReader wraps r.
func NewScannerReader(r io.Reader, out io.Writer) *ScannerReader {
	return &ScannerReader{sc: bufio.NewScanner(r), out: out}
}

// ReadLine implements LineReader.
func (s *ScannerReader) ReadLine(prompt string) (string, error) {
	if s.out != nil && prompt != "" {
		fmt.Fprint(s.out, prompt)
	}
	if !s.sc.Scan() {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.sc.Text(), nil
}

// Close implements LineReader.
func (s *ScannerReader) Close() error { return nil }
