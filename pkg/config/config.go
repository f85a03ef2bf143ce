package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	DefaultModel   = "llama-3.1-sonar-small-128k-online"
	DefaultBaseURL = "https://api.perplexity.ai/"

	// MaxDomainFilters is the most search domains the API accepts per request.
	MaxDomainFilters = 3
)

// RecencyFilters lists the accepted values for SearchRecencyFilter.
var RecencyFilters = []string{"month", "week", "day", "hour"}

// LogFormats lists the accepted values for LogFormat.
var LogFormats = []string{"console", "json"}

// Config holds all runtime configuration for a chat session.
// It is fixed once parsed and never mutated by the session.
type Config struct {
	// MaxTokens is nil unless a cap was given explicitly.
	MaxTokens              *int64
	Temperature            float64
	TopP                   float64
	TopK                   int
	FrequencyPenalty       float64
	ReturnCitations        bool
	ReturnImages           bool
	ReturnRelatedQuestions bool
	SearchDomainFilter     []string
	SearchRecencyFilter    string
	Verbose                bool
	LogFormat              string

	APIKey  string
	BaseURL string
	Model   string
}

// DefaultConfig returns a baseline configuration without side effects.
func DefaultConfig() Config {
	return Config{
		Temperature:         0.2,
		TopP:                0.9,
		TopK:                0,
		FrequencyPenalty:    1.0,
		SearchDomainFilter:  []string{"perplexity.ai"},
		SearchRecencyFilter: "month",
		LogFormat:           "console",
		BaseURL:             DefaultBaseURL,
		Model:               DefaultModel,
	}
}

// Normalize sanitizes configuration values and applies defaults.
// Domain filters beyond MaxDomainFilters are dropped, keeping the first ones.
func Normalize(cfg Config) Config {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.SearchRecencyFilter = strings.ToLower(strings.TrimSpace(cfg.SearchRecencyFilter))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}

	domains := make([]string, 0, len(cfg.SearchDomainFilter))
	for _, domain := range cfg.SearchDomainFilter {
		domain = strings.TrimSpace(domain)
		if domain == "" {
			continue
		}
		domains = append(domains, domain)
	}
	if len(domains) > MaxDomainFilters {
		domains = domains[:MaxDomainFilters]
	}
	cfg.SearchDomainFilter = domains
	return cfg
}

// Validate reports values outside a fixed set of choices. Numeric
// generation parameters are passed through for the API to judge.
func Validate(cfg Config) error {
	if !oneOf(cfg.SearchRecencyFilter, RecencyFilters) {
		return fmt.Errorf("invalid search recency filter %q (choose from %s)",
			cfg.SearchRecencyFilter, strings.Join(RecencyFilters, ", "))
	}
	if !oneOf(cfg.LogFormat, LogFormats) {
		return fmt.Errorf("invalid log format %q (choose from %s)",
			cfg.LogFormat, strings.Join(LogFormats, ", "))
	}
	if len(cfg.SearchDomainFilter) > MaxDomainFilters {
		return fmt.Errorf("at most %d search domains are allowed", MaxDomainFilters)
	}
	return nil
}

// ApplyEnv overlays PERPLEXITY_* environment variables onto cfg.
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("PERPLEXITY_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("PERPLEXITY_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PERPLEXITY_MODEL")); v != "" {
		cfg.Model = v
	}
	return cfg
}

func oneOf(value string, choices []string) bool {
	for _, choice := range choices {
		if value == choice {
			return true
		}
	}
	return false
}
