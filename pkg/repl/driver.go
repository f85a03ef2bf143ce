// Package repl drives the interactive follow-up loop of a chat session.
package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	loggerpkg "github.com/minhyannv/pplx-chat-go/pkg/logger"
	"github.com/minhyannv/pplx-chat-go/pkg/pplx"
)

const (
	continuePrompt = "Do you want to ask a follow-up question? (y/n): "
	followUpPrompt = "Enter your follow-up question: "
	goodbyeMessage = "Chat ended. Goodbye!"
)

// State is the position of the Driver in the loop.
type State int

const (
	// AwaitingQuery sends the pending query, reading one first if needed.
	AwaitingQuery State = iota
	// AwaitingDecision asks whether the user wants another turn.
	AwaitingDecision
	// Done is terminal.
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingQuery:
		return "awaiting-query"
	case AwaitingDecision:
		return "awaiting-decision"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the conversation the driver feeds. *chat.Session satisfies it.
type Session interface {
	Ask(query string) (*pplx.Response, error)
	Reset()
}

// Presenter shows turn outcomes. *render.Printer satisfies it.
type Presenter interface {
	Response(resp *pplx.Response)
	Error(err error)
}

// Options configures Driver logging.
type Options struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

// Driver is a two-state machine: send a query, then ask whether to continue.
// Turn failures are shown and never end the loop.
type Driver struct {
	session Session
	input   LineReader
	view    Presenter
	out     io.Writer
	opts    Options

	state   State
	pending string
}

// NewDriver builds a Driver. Prompts and notices are written to out.
func NewDriver(session Session, input LineReader, view Presenter, out io.Writer, opts Options) (*Driver, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	if input == nil {
		return nil, errors.New("input reader is required")
	}
	if view == nil {
		return nil, errors.New("presenter is required")
	}
	if out == nil {
		out = io.Discard
	}
	return &Driver{
		session: session,
		input:   input,
		view:    view,
		out:     out,
		opts:    opts,
		state:   Done,
	}, nil
}

// State reports the current state.
func (d *Driver) State() State { return d.state }

// Start arms the driver with the first query without running it.
func (d *Driver) Start(query string) {
	d.pending = strings.TrimSpace(query)
	d.state = AwaitingQuery
}

// Run starts with query and steps until Done. Only input failures other
// than end of input are returned.
func (d *Driver) Run(query string) error {
	d.Start(query)
	for d.state != Done {
		if err := d.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Step performs one transition.
func (d *Driver) Step() error {
	loggerpkg.Debug(d.opts.Verbose, d.opts.Logger, "repl step", map[string]any{"state": d.state.String()})
	switch d.state {
	case AwaitingQuery:
		return d.stepQuery()
	case AwaitingDecision:
		return d.stepDecision()
	default:
		return nil
	}
}

func (d *Driver) stepQuery() error {
	query := d.pending
	d.pending = ""
	if query == "" {
		line, err := d.input.ReadLine(followUpPrompt)
		if err != nil {
			return d.finish(err)
		}
		query = strings.TrimSpace(line)
		if query == "" {
			return nil
		}
		if strings.HasPrefix(query, "/") {
			return d.handleCommand(query)
		}
	}

	resp, err := d.session.Ask(query)
	if err != nil {
		loggerpkg.Debug(d.opts.Verbose, d.opts.Logger, "turn failed", map[string]any{"error": err.Error()})
		d.view.Error(err)
	} else {
		d.view.Response(resp)
	}
	d.state = AwaitingDecision
	return nil
}

func (d *Driver) stepDecision() error {
	_, _ = fmt.Fprintln(d.out)
	line, err := d.input.ReadLine(continuePrompt)
	if err != nil {
		return d.finish(err)
	}
	if strings.ToLower(strings.TrimSpace(line)) == "y" {
		d.state = AwaitingQuery
		return nil
	}
	return d.finish(nil)
}

// handleCommand processes slash commands typed at the follow-up prompt.
func (d *Driver) handleCommand(input string) error {
	switch strings.ToLower(input) {
	case "/help", "/h":
		printHelp(d.out)
	case "/clear", "/c":
		d.session.Reset()
		_, _ = fmt.Fprintln(d.out, "Conversation history cleared.")
	case "/quit", "/exit", "/q":
		return d.finish(nil)
	default:
		_, _ = fmt.Fprintf(d.out, "Unknown command: %s. Type /help for available commands.\n", input)
	}
	return nil
}

func (d *Driver) finish(err error) error {
	d.state = Done
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read input: %w", err)
	}
	if err != nil {
		_, _ = fmt.Fprintln(d.out)
	}
	_, _ = fmt.Fprintln(d.out, goodbyeMessage)
	return nil
}

func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "Commands:")
	_, _ = fmt.Fprintln(out, "  /help  - Show this help message")
	_, _ = fmt.Fprintln(out, "  /clear - Clear conversation history")
	_, _ = fmt.Fprintln(out, "  /quit  - End the chat")
}
