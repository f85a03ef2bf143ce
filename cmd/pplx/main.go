// Package main provides the pplx command-line chat client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/minhyannv/pplx-chat-go/pkg/chat"
	configpkg "github.com/minhyannv/pplx-chat-go/pkg/config"
	loggerpkg "github.com/minhyannv/pplx-chat-go/pkg/logger"
	"github.com/minhyannv/pplx-chat-go/pkg/pplx"
	"github.com/minhyannv/pplx-chat-go/pkg/render"
	"github.com/minhyannv/pplx-chat-go/pkg/repl"
	"github.com/spf13/cobra"
)

// main is the program entry point.
func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, in io.Reader, out, errOut io.Writer) int {
	cmd := newRootCommand(func(_ *cobra.Command, cfg configpkg.Config, query string) error {
		return runSession(cfg, query, in, out, errOut)
	})
	cmd.SetArgs(normalizeArgs(cmd.Flags(), args))
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, pplx.ErrMissingAPIKey) {
			_, _ = fmt.Fprintln(errOut, render.ErrorMessage(err))
		} else {
			_, _ = fmt.Fprintf(errOut, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// runSession wires the session, renderer and input loop for one run.
func runSession(cfg configpkg.Config, query string, in io.Reader, out, errOut io.Writer) error {
	appLogger := loggerpkg.New(errOut, cfg.LogFormat, cfg.Verbose)

	session, err := chat.New(context.Background(), cfg, chat.WithLogger(appLogger))
	if err != nil {
		return err
	}
	loggerpkg.Debug(cfg.Verbose, appLogger, "session ready", map[string]any{"id": session.ID()})

	input := repl.NewLineReader(in, out)
	defer func() { _ = input.Close() }()

	printer := render.NewPrinter(out, render.Options{
		Citations:        cfg.ReturnCitations,
		RelatedQuestions: cfg.ReturnRelatedQuestions,
		Images:           cfg.ReturnImages,
	})
	driver, err := repl.NewDriver(session, input, printer, out, repl.Options{
		Verbose: cfg.Verbose,
		Logger:  appLogger,
	})
	if err != nil {
		return err
	}
	return driver.Run(query)
}
