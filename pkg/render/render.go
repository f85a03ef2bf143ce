// Package render prints chat responses and turn errors to a terminal.
package render

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/minhyannv/pplx-chat-go/pkg/pplx"
)

const (
	rateLimitMessage  = "Error: Rate limit exceeded. Please wait a moment before trying again."
	missingKeyMessage = "Error: Please set the PERPLEXITY_API_KEY environment variable."
)

// Options selects which optional sections are printed. A section is shown
// only when it was requested and the API returned data for it.
type Options struct {
	Citations        bool
	RelatedQuestions bool
	Images           bool
}

// Printer writes responses to out. Header styling degrades to plain text
// when out is not a terminal.
type Printer struct {
	out     io.Writer
	opts    Options
	header  lipgloss.Style
	failure lipgloss.Style
}

// NewPrinter builds a Printer bound to out.
func NewPrinter(out io.Writer, opts Options) *Printer {
	if out == nil {
		out = io.Discard
	}
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:     out,
		opts:    opts,
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

// Response prints the assistant text followed by the requested extras.
func (p *Printer) Response(resp *pplx.Response) {
	if resp == nil {
		return
	}
	p.section("Response:")
	_, _ = fmt.Fprintln(p.out, resp.Content)

	if p.opts.Citations && len(resp.Citations) > 0 {
		p.section("Citations:")
		for i, c := range resp.Citations {
			if c.Title == "" {
				_, _ = fmt.Fprintf(p.out, "%d. %s\n", i+1, c.URL)
				continue
			}
			_, _ = fmt.Fprintf(p.out, "%d. %s: %s\n", i+1, c.Title, c.URL)
		}
	}

	if p.opts.RelatedQuestions && len(resp.RelatedQuestions) > 0 {
		p.section("Related Questions:")
		for i, q := range resp.RelatedQuestions {
			_, _ = fmt.Fprintf(p.out, "%d. %s\n", i+1, q)
		}
	}

	if p.opts.Images && len(resp.Images) > 0 {
		p.section("Images:")
		for i, img := range resp.Images {
			_, _ = fmt.Fprintf(p.out, "%d. %s\n", i+1, img.URL)
		}
	}
}

// Error reports a failed turn. The rate-limit case gets its own message.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintln(p.out, p.failure.Render(ErrorMessage(err)))
}

// ErrorMessage maps a turn error to the text shown to the user.
func ErrorMessage(err error) string {
	var statusErr *pplx.StatusError
	switch {
	case errors.Is(err, pplx.ErrMissingAPIKey):
		return missingKeyMessage
	case errors.Is(err, pplx.ErrRateLimited):
		return rateLimitMessage
	case errors.As(err, &statusErr):
		return fmt.Sprintf("An HTTP error occurred: %v", err)
	default:
		return fmt.Sprintf("An error occurred: %v", err)
	}
}

func (p *Printer) section(title string) {
	_, _ = fmt.Fprintln(p.out)
	_, _ = fmt.Fprintln(p.out, p.header.Render(title))
}
