package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// LineReader reads one line of user input after showing a prompt.
// End of input is reported as io.EOF.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// NewLineReader uses liner line editing when in is the process terminal and
// falls back to a plain scanner otherwise (pipes, tests).
func NewLineReader(in io.Reader, out io.Writer) LineReader {
	if f, ok := in.(*os.File); ok && f == os.Stdin && out == os.Stdout && term.IsTerminal(int(f.Fd())) {
		return newLinerReader()
	}
	return NewScannerReader(in, out)
}

type scannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader reads lines from in and echoes prompts to out.
func NewScannerReader(in io.Reader, out io.Writer) LineReader {
	if out == nil {
		out = io.Discard
	}
	return &scannerReader{scanner: bufio.NewScanner(in), out: out}
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scannerReader) Close() error { return nil }

type linerReader struct {
	state *liner.State
}

func newLinerReader() *linerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &linerReader{state: state}
}

func (r *linerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}
	if len(strings.TrimSpace(line)) > 1 {
		r.state.AppendHistory(line)
	}
	return line, nil
}

func (r *linerReader) Close() error { return r.state.Close() }
