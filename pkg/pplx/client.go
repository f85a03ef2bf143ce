package pplx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	loggerpkg "github.com/minhyannv/pplx-chat-go/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ClientConfig configures a Client.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     loggerpkg.Logger
	Verbose    bool
}

// Client sends completion requests through the OpenAI-compatible API.
type Client struct {
	api     openai.Client
	logger  loggerpkg.Logger
	verbose bool
}

// NewClient validates cfg and builds a Client. It never touches the network.
func NewClient(cfg ClientConfig) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Logger == nil {
		cfg.Logger = loggerpkg.NopLogger{}
	}

	// Explicit key and base URL override the OPENAI_* environment defaults
	// the SDK would otherwise pick up. Retries stay off: a 429 must surface
	// to the caller on the first attempt.
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Client{
		api:     openai.NewClient(opts...),
		logger:  cfg.Logger,
		verbose: cfg.Verbose,
	}, nil
}

// Complete performs one blocking completion call.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	params, err := newChatParams(req)
	if err != nil {
		return nil, err
	}

	loggerpkg.Debug(c.verbose, c.logger, "completion request", map[string]any{
		"model":    req.Model,
		"messages": len(req.Messages),
	})
	completion, err := c.api.Chat.Completions.New(ctx, params, searchOptions(req)...)
	if err != nil {
		err = classify(err)
		loggerpkg.Debug(c.verbose, c.logger, "completion failed", map[string]any{"error": err.Error()})
		return nil, err
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("empty completion choices")
	}

	resp := parseResponse(completion.Choices[0].Message.Content, completion.RawJSON())
	loggerpkg.Debug(c.verbose, c.logger, "completion received", map[string]any{
		"finish_reason":     completion.Choices[0].FinishReason,
		"bytes":             len(resp.Content),
		"citations":         len(resp.Citations),
		"related_questions": len(resp.RelatedQuestions),
		"images":            len(resp.Images),
	})
	return resp, nil
}

func newChatParams(req Request) (openai.ChatCompletionNewParams, error) {
	messages, err := toOpenAIMessages(req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params := openai.ChatCompletionNewParams{
		Model:            openai.ChatModel(req.Model),
		Messages:         messages,
		Temperature:      openai.Float(req.Temperature),
		TopP:             openai.Float(req.TopP),
		FrequencyPenalty: openai.Float(req.FrequencyPenalty),
	}
	if req.MaxTokens != nil {
		params.MaxTokens = openai.Int(*req.MaxTokens)
	}
	return params, nil
}

// searchOptions adds the Perplexity-only body fields the SDK has no params for.
func searchOptions(req Request) []option.RequestOption {
	domains := req.SearchDomainFilter
	if domains == nil {
		domains = []string{}
	}
	return []option.RequestOption{
		option.WithJSONSet("top_k", req.TopK),
		option.WithJSONSet("return_citations", req.ReturnCitations),
		option.WithJSONSet("search_domain_filter", domains),
		option.WithJSONSet("return_images", req.ReturnImages),
		option.WithJSONSet("return_related_questions", req.ReturnRelatedQuestions),
		option.WithJSONSet("search_recency_filter", req.SearchRecencyFilter),
	}
}

func toOpenAIMessages(messages []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	if len(messages) == 0 {
		return nil, errors.New("at least one message is required")
	}
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(msg.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content))
		default:
			return nil, fmt.Errorf("invalid message role at index %d: %q", i, msg.Role)
		}
	}
	return out, nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &StatusError{StatusCode: apiErr.StatusCode, Err: err}
	}
	return fmt.Errorf("send request: %w", err)
}
