// Package chat holds the conversation state for one interactive session.
package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	configpkg "github.com/minhyannv/pplx-chat-go/pkg/config"
	loggerpkg "github.com/minhyannv/pplx-chat-go/pkg/logger"
	"github.com/minhyannv/pplx-chat-go/pkg/pplx"
	"github.com/minhyannv/pplx-chat-go/pkg/prompt"
)

// Session owns the ordered user/assistant history of one conversation.
// It is not safe for concurrent use.
type Session struct {
	id      string
	config  configpkg.Config
	client  Completer
	history []pplx.Message

	ctx     context.Context
	logger  loggerpkg.Logger
	verbose bool
}

// New initializes a Session. It fails with pplx.ErrMissingAPIKey when no
// credential is configured and no Completer was injected.
func New(ctx context.Context, cfg configpkg.Config, opts ...SessionOption) (*Session, error) {
	cfg = configpkg.Normalize(cfg)
	if err := configpkg.Validate(cfg); err != nil {
		return nil, err
	}
	deps := sessionDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	id := uuid.NewString()
	log := loggerpkg.With(deps.logger, "session", id)

	client := deps.completer
	if client == nil {
		c, err := pplx.NewClient(pplx.ClientConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Logger:  log,
			Verbose: cfg.Verbose,
		})
		if err != nil {
			return nil, err
		}
		client = c
	}

	loggerpkg.Debug(cfg.Verbose, log, "session init", map[string]any{
		"model":                    cfg.Model,
		"base_url":                 cfg.BaseURL,
		"temperature":              cfg.Temperature,
		"top_p":                    cfg.TopP,
		"top_k":                    cfg.TopK,
		"search_domain_filter":     cfg.SearchDomainFilter,
		"search_recency_filter":    cfg.SearchRecencyFilter,
		"return_citations":         cfg.ReturnCitations,
		"return_related_questions": cfg.ReturnRelatedQuestions,
	})

	return &Session{
		id:     id,
		config: cfg,
		client: client,

		ctx:     ctx,
		logger:  log,
		verbose: cfg.Verbose,
	}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Config returns the normalized configuration the session sends with every turn.
func (s *Session) Config() configpkg.Config { return s.config }

// BuildRequest assembles the payload for query on top of the current history.
func (s *Session) BuildRequest(query string) pplx.Request {
	return pplx.Request{
		Model:                  s.config.Model,
		Messages:               prompt.BuildMessages(s.history, query),
		MaxTokens:              s.config.MaxTokens,
		Temperature:            s.config.Temperature,
		TopP:                   s.config.TopP,
		TopK:                   s.config.TopK,
		FrequencyPenalty:       s.config.FrequencyPenalty,
		ReturnCitations:        s.config.ReturnCitations,
		ReturnImages:           s.config.ReturnImages,
		ReturnRelatedQuestions: s.config.ReturnRelatedQuestions,
		SearchDomainFilter:     s.config.SearchDomainFilter,
		SearchRecencyFilter:    s.config.SearchRecencyFilter,
	}
}

// Ask sends query with the accumulated history. Only a successful turn with
// a non-blank answer is recorded; otherwise the history is left as it was.
func (s *Session) Ask(query string) (*pplx.Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	req := s.BuildRequest(query)
	loggerpkg.Debugf(s.verbose, s.logger, "turn %d: sending %d message(s)", s.Turns()+1, len(req.Messages))

	resp, err := s.client.Complete(s.ctx, req)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Content) == "" {
		loggerpkg.Debug(s.verbose, s.logger, "empty reply not recorded", map[string]any{"turn": s.Turns() + 1})
		return resp, nil
	}

	s.history = append(s.history,
		pplx.Message{Role: pplx.RoleUser, Content: query},
		pplx.Message{Role: pplx.RoleAssistant, Content: resp.Content},
	)
	return resp, nil
}

// History returns a copy of the recorded turns, oldest first.
func (s *Session) History() []pplx.Message {
	return append([]pplx.Message(nil), s.history...)
}

// Turns is the number of completed user/assistant exchanges.
func (s *Session) Turns() int { return len(s.history) / 2 }

// Reset clears conversation history.
func (s *Session) Reset() {
	s.history = nil
}
