package chat

import (
	"context"

	loggerpkg "github.com/minhyannv/pplx-chat-go/pkg/logger"
	"github.com/minhyannv/pplx-chat-go/pkg/pplx"
)

// Completer performs one completion call. *pplx.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req pplx.Request) (*pplx.Response, error)
}

// SessionOption configures optional runtime dependencies for Session.
type SessionOption func(*sessionDeps)

type sessionDeps struct {
	logger    loggerpkg.Logger
	completer Completer
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) SessionOption {
	return func(d *sessionDeps) {
		d.logger = l
	}
}

// WithCompleter replaces the HTTP client, mostly for tests.
func WithCompleter(c Completer) SessionOption {
	return func(d *sessionDeps) {
		d.completer = c
	}
}
