package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	configpkg "github.com/minhyannv/pplx-chat-go/pkg/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv keeps the developer's real credentials and config out of tests.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PERPLEXITY_API_KEY", "")
	t.Setenv("PERPLEXITY_BASE_URL", "")
	t.Setenv("PERPLEXITY_MODEL", "")
}

type captured struct {
	called bool
	cfg    configpkg.Config
	query  string
}

func parseArgs(t *testing.T, args ...string) (*captured, string, error) {
	t.Helper()
	got := &captured{}
	cmd := newRootCommand(func(_ *cobra.Command, cfg configpkg.Config, query string) error {
		got.called = true
		got.cfg = cfg
		got.query = query
		return nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(normalizeArgs(cmd.Flags(), args))
	err := cmd.Execute()
	return got, out.String(), err
}

func TestDomainFilterFlagReplacesDefault(t *testing.T) {
	f := newDomainFilterFlag([]string{"perplexity.ai"})
	if err := f.Set("a.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set("b.com,c.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.values(); len(got) != 3 || got[0] != "a.com" || got[2] != "c.com" {
		t.Fatalf("unexpected flag values: %#v", got)
	}
}

func TestDomainFilterFlagKeepsValuesVerbatim(t *testing.T) {
	f := newDomainFilterFlag(nil)
	if err := f.Set("docs.example.com/guide"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.values(); len(got) != 1 || got[0] != "docs.example.com/guide" {
		t.Fatalf("unexpected flag values: %#v", got)
	}
}

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "greedy domain values",
			args: []string{"query", "--search-domain-filter", "a.com", "b.com", "--top-k", "3"},
			want: []string{"--search-domain-filter=a.com", "--search-domain-filter=b.com", "--top-k", "3", "--", "query"},
		},
		{
			name: "bare domain flag",
			args: []string{"--search-domain-filter", "--return-citations", "q"},
			want: []string{"--search-domain-filter=", "--return-citations", "--", "q"},
		},
		{
			name: "bare domain flag at end",
			args: []string{"q", "--search-domain-filter"},
			want: []string{"--search-domain-filter=", "--", "q"},
		},
		{
			name: "double dash keeps the rest positional",
			args: []string{"a", "--", "--search-domain-filter", "a.com"},
			want: []string{"--", "a", "--search-domain-filter", "a.com"},
		},
		{
			name: "equals form untouched",
			args: []string{"--search-domain-filter=a.com", "q"},
			want: []string{"--search-domain-filter=a.com", "--", "q"},
		},
		{
			name: "negative numbers stay in the query",
			args: []string{"what", "is", "-5", "squared", "-.5"},
			want: []string{"--", "what", "is", "-5", "squared", "-.5"},
		},
		{
			name: "negative flag value is consumed by the flag",
			args: []string{"--temperature", "-0.5", "q", "-v"},
			want: []string{"--temperature", "-0.5", "-v", "--", "q"},
		},
		{
			name: "boolean flag does not take a value",
			args: []string{"--return-images", "q"},
			want: []string{"--return-images", "--", "q"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newRootCommand(nil).Flags()
			assert.Equal(t, tt.want, normalizeArgs(fs, tt.args))
		})
	}
}

func TestNegativeNumberInQuery(t *testing.T) {
	isolateEnv(t)

	got, _, err := parseArgs(t, "what", "is", "-5", "squared")
	require.NoError(t, err)
	require.True(t, got.called)
	assert.Equal(t, "what is -5 squared", got.query)
}

func TestQueryAroundFlagsKeepsOrder(t *testing.T) {
	isolateEnv(t)

	got, _, err := parseArgs(t, "what", "is", "--top-k", "2", "-1", "plus", "one")
	require.NoError(t, err)
	assert.Equal(t, "what is -1 plus one", got.query)
	assert.Equal(t, 2, got.cfg.TopK)
}

func TestNumericParametersPassThrough(t *testing.T) {
	isolateEnv(t)

	got, _, err := parseArgs(t, "--max-tokens", "0", "--top-k", "-1", "q")
	require.NoError(t, err)
	require.NotNil(t, got.cfg.MaxTokens)
	assert.Equal(t, int64(0), *got.cfg.MaxTokens)
	assert.Equal(t, -1, got.cfg.TopK)

	got, out, err := parseArgs(t, "--max-tokens", "0")
	require.NoError(t, err)
	assert.False(t, got.called)
	assert.Contains(t, out, "Usage:")
}

func TestLogFormatFlag(t *testing.T) {
	isolateEnv(t)

	got, _, err := parseArgs(t, "--log-format", "json", "q")
	require.NoError(t, err)
	assert.Equal(t, "json", got.cfg.LogFormat)

	_, _, err = parseArgs(t, "--log-format", "xml", "q")
	require.Error(t, err)
}

func TestDefaultsAndJoinedQuery(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PERPLEXITY_API_KEY", "env-key")

	got, _, err := parseArgs(t, "what", "is", "the", "capital", "of", "france")
	require.NoError(t, err)
	require.True(t, got.called)

	assert.Equal(t, "what is the capital of france", got.query)
	assert.Equal(t, 0.2, got.cfg.Temperature)
	assert.Equal(t, 0.9, got.cfg.TopP)
	assert.Equal(t, 0, got.cfg.TopK)
	assert.Equal(t, 1.0, got.cfg.FrequencyPenalty)
	assert.Equal(t, "month", got.cfg.SearchRecencyFilter)
	assert.Equal(t, []string{"perplexity.ai"}, got.cfg.SearchDomainFilter)
	assert.Nil(t, got.cfg.MaxTokens)
	assert.False(t, got.cfg.ReturnCitations)
	assert.False(t, got.cfg.ReturnImages)
	assert.False(t, got.cfg.ReturnRelatedQuestions)
	assert.Equal(t, "env-key", got.cfg.APIKey)
	assert.Equal(t, configpkg.DefaultModel, got.cfg.Model)
}

func TestDomainFilterTruncatedToThree(t *testing.T) {
	isolateEnv(t)

	got, _, err := parseArgs(t, "q", "--search-domain-filter", "a.com", "b.com", "c.com", "d.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, got.cfg.SearchDomainFilter)
	assert.Equal(t, "q", got.query)
}

func TestEmptyDomainFilter(t *testing.T) {
	isolateEnv(t)

	got, _, err := parseArgs(t, "q", "--search-domain-filter")
	require.NoError(t, err)
	assert.Empty(t, got.cfg.SearchDomainFilter)
}

func TestAllFlags(t *testing.T) {
	isolateEnv(t)

	got, _, err := parseArgs(t,
		"--max-tokens", "256",
		"--temperature", "0.7",
		"--top-p", "0.5",
		"--return-citations",
		"--return-images",
		"--return-related-questions",
		"--search-recency-filter", "week",
		"--top-k", "4",
		"--frequency-penalty", "1.5",
		"--model", "sonar-pro",
		"--base-url", "http://localhost:9999",
		"tell", "me",
	)
	require.NoError(t, err)

	require.NotNil(t, got.cfg.MaxTokens)
	assert.Equal(t, int64(256), *got.cfg.MaxTokens)
	assert.Equal(t, 0.7, got.cfg.Temperature)
	assert.Equal(t, 0.5, got.cfg.TopP)
	assert.True(t, got.cfg.ReturnCitations)
	assert.True(t, got.cfg.ReturnImages)
	assert.True(t, got.cfg.ReturnRelatedQuestions)
	assert.Equal(t, "week", got.cfg.SearchRecencyFilter)
	assert.Equal(t, 4, got.cfg.TopK)
	assert.Equal(t, 1.5, got.cfg.FrequencyPenalty)
	assert.Equal(t, "sonar-pro", got.cfg.Model)
	assert.Equal(t, "http://localhost:9999/", got.cfg.BaseURL)
	assert.Equal(t, "tell me", got.query)
}

func TestEmptyQueryPrintsHelp(t *testing.T) {
	isolateEnv(t)

	got, out, err := parseArgs(t, "--temperature", "0.5")
	require.NoError(t, err)
	assert.False(t, got.called)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--search-domain-filter")
}

func TestInvalidRecencyFails(t *testing.T) {
	isolateEnv(t)

	got, _, err := parseArgs(t, "q", "--search-recency-filter", "year")
	require.Error(t, err)
	assert.False(t, got.called)
}

func TestConfigFileAndEnvPrecedence(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_key: file-key\nmodel: file-model\nbase_url: http://file.test\n"), 0o600))

	got, _, err := parseArgs(t, "--config", path, "q")
	require.NoError(t, err)
	assert.Equal(t, "file-key", got.cfg.APIKey)
	assert.Equal(t, "file-model", got.cfg.Model)
	assert.Equal(t, "http://file.test/", got.cfg.BaseURL)

	t.Setenv("PERPLEXITY_API_KEY", "env-key")
	t.Setenv("PERPLEXITY_MODEL", "env-model")
	got, _, err = parseArgs(t, "--config", path, "--model", "flag-model", "q")
	require.NoError(t, err)
	assert.Equal(t, "env-key", got.cfg.APIKey)
	assert.Equal(t, "flag-model", got.cfg.Model)
}

func TestMissingExplicitConfigFails(t *testing.T) {
	isolateEnv(t)

	_, _, err := parseArgs(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "q")
	require.Error(t, err)
}

func TestExecuteWithoutQueryExitsZero(t *testing.T) {
	isolateEnv(t)
	var out, errOut bytes.Buffer

	code := execute(nil, strings.NewReader(""), &out, &errOut)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Usage:")
}

func TestExecuteWithoutAPIKeyFails(t *testing.T) {
	isolateEnv(t)
	var out, errOut bytes.Buffer

	code := execute([]string{"hello"}, strings.NewReader("n\n"), &out, &errOut)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut.String(), "PERPLEXITY_API_KEY")
	assert.NotContains(t, out.String(), "Response:")
}

func TestExecuteRunsChat(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "c", "object": "chat.completion", "created": 1, "model": "m",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Paris."}}],
			"citations": [{"title": "Wikipedia", "url": "https://en.wikipedia.org/wiki/Paris"}],
			"related_questions": ["Is Paris large?"]
		}`)
	}))
	defer srv.Close()
	t.Setenv("PERPLEXITY_API_KEY", "test-key")
	t.Setenv("PERPLEXITY_BASE_URL", srv.URL)

	var out, errOut bytes.Buffer
	code := execute([]string{"--return-related-questions", "capital", "of", "france"}, strings.NewReader("n\n"), &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	text := out.String()
	assert.Contains(t, text, "Response:")
	assert.Contains(t, text, "Paris.\n")
	assert.NotContains(t, text, "Citations:")
	assert.Contains(t, text, "Related Questions:")
	assert.Contains(t, text, "1. Is Paris large?\n")
	assert.Contains(t, text, "Chat ended. Goodbye!")
}
