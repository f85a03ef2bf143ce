package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	configpkg "github.com/minhyannv/pplx-chat-go/pkg/config"
	"github.com/minhyannv/pplx-chat-go/pkg/prompt"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const domainFilterFlagName = "search-domain-filter"

// runFunc receives the fully resolved configuration and a non-empty query.
type runFunc func(cmd *cobra.Command, cfg configpkg.Config, query string) error

// newRootCommand builds the CLI. Settings resolve in this order, later
// winning: config file, .env / environment, flags.
func newRootCommand(run runFunc) *cobra.Command {
	defaults := configpkg.DefaultConfig()
	cfg := defaults
	domains := newDomainFilterFlag(defaults.SearchDomainFilter)
	var (
		maxTokens  int64
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "pplx [flags] query...",
		Short:         "Query Perplexity AI from the command line.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("max-tokens") {
				limit := maxTokens
				cfg.MaxTokens = &limit
			}
			cfg.SearchDomainFilter = domains.values()
			cfg = configpkg.Normalize(cfg)
			if err := configpkg.Validate(cfg); err != nil {
				return err
			}

			query := prompt.JoinQuery(args)
			if query == "" {
				return cmd.Help()
			}

			conn, err := loadConnection(configPath, flags.Changed("config"))
			if err != nil {
				return err
			}
			cfg.APIKey = conn.APIKey
			if !flags.Changed("model") {
				cfg.Model = conn.Model
			}
			if !flags.Changed("base-url") {
				cfg.BaseURL = conn.BaseURL
			}
			return run(cmd, configpkg.Normalize(cfg), query)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&maxTokens, "max-tokens", 0, "Maximum number of tokens in the response (optional)")
	f.Float64Var(&cfg.Temperature, "temperature", defaults.Temperature, "Temperature for response generation")
	f.Float64Var(&cfg.TopP, "top-p", defaults.TopP, "Top P for response generation")
	f.BoolVar(&cfg.ReturnCitations, "return-citations", false, "Return citations")
	f.Var(domains, domainFilterFlagName, fmt.Sprintf("Search domain filter (max %d domains)", configpkg.MaxDomainFilters))
	f.BoolVar(&cfg.ReturnImages, "return-images", false, "Return images")
	f.BoolVar(&cfg.ReturnRelatedQuestions, "return-related-questions", false, "Return related questions")
	f.StringVar(&cfg.SearchRecencyFilter, "search-recency-filter", defaults.SearchRecencyFilter,
		"Search recency filter ("+strings.Join(configpkg.RecencyFilters, "|")+")")
	f.IntVar(&cfg.TopK, "top-k", defaults.TopK, "Top K")
	f.Float64Var(&cfg.FrequencyPenalty, "frequency-penalty", defaults.FrequencyPenalty, "Frequency penalty")
	f.StringVar(&cfg.Model, "model", defaults.Model, "Model identifier (env PERPLEXITY_MODEL)")
	f.StringVar(&cfg.BaseURL, "base-url", defaults.BaseURL, "API base URL (env PERPLEXITY_BASE_URL)")
	f.StringVar(&configPath, "config", "", "Path to a YAML config file (default $XDG_CONFIG_HOME/pplx/config.yaml)")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose request logging")
	f.StringVar(&cfg.LogFormat, "log-format", defaults.LogFormat,
		"Diagnostic log format on stderr ("+strings.Join(configpkg.LogFormats, "|")+")")
	return cmd
}

// loadConnection resolves the credential, model and base URL from the
// config file and environment. A .env file in the working directory is
// loaded first without overriding variables already set.
func loadConnection(path string, required bool) (configpkg.Config, error) {
	_ = godotenv.Load()

	if strings.TrimSpace(path) == "" {
		path = configpkg.DefaultPath()
	}
	file, err := configpkg.LoadFile(path, required)
	if err != nil {
		return configpkg.Config{}, err
	}
	return configpkg.ApplyEnv(file.Apply(configpkg.DefaultConfig())), nil
}

// normalizeArgs prepares raw arguments for cobra. Positional tokens,
// including ones that look like negative numbers ("-5"), are moved after a
// "--" terminator in their original order so they always join the query.
// "--search-domain-filter a b c" greedily takes the following non-flag
// tokens, one "--search-domain-filter=v" each; a bare flag becomes
// "--search-domain-filter=", meaning an empty list.
func normalizeArgs(fs *pflag.FlagSet, args []string) []string {
	domainFlag := "--" + domainFilterFlagName
	flags := make([]string, 0, len(args)+1)
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			positionals = append(positionals, args[i+1:]...)
			i = len(args)
		case arg == "-" || !strings.HasPrefix(arg, "-") || negativeNumber.MatchString(arg):
			positionals = append(positionals, arg)
		case arg == domainFlag:
			j := i + 1
			for ; j < len(args) && !strings.HasPrefix(args[j], "-"); j++ {
				flags = append(flags, domainFlag+"="+args[j])
			}
			if j == i+1 {
				flags = append(flags, domainFlag+"=")
			}
			i = j - 1
		default:
			flags = append(flags, arg)
			if takesValue(fs, arg) && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
		}
	}
	return append(append(flags, "--"), positionals...)
}

var negativeNumber = regexp.MustCompile(`^-\.?\d`)

// takesValue reports whether arg is a known flag that consumes the next
// token as its value.
func takesValue(fs *pflag.FlagSet, arg string) bool {
	if fs == nil || strings.Contains(arg, "=") {
		return false
	}
	var f *pflag.Flag
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		f = fs.Lookup(name)
	} else if len(arg) == 2 {
		f = fs.ShorthandLookup(arg[1:])
	}
	return f != nil && f.NoOptDefVal == ""
}

// domainFilterFlag collects --search-domain-filter values. The first Set
// replaces the default list.
type domainFilterFlag struct {
	list    []string
	changed bool
}

func newDomainFilterFlag(defaults []string) *domainFilterFlag {
	return &domainFilterFlag{list: append([]string(nil), defaults...)}
}

func (f *domainFilterFlag) String() string {
	if f == nil {
		return ""
	}
	return strings.Join(f.list, ",")
}

func (f *domainFilterFlag) Set(value string) error {
	if !f.changed {
		f.list = []string{}
		f.changed = true
	}
	for _, domain := range strings.Split(value, ",") {
		if domain = strings.TrimSpace(domain); domain != "" {
			f.list = append(f.list, domain)
		}
	}
	return nil
}

func (f *domainFilterFlag) Type() string { return "domains" }

func (f *domainFilterFlag) values() []string {
	out := make([]string, len(f.list))
	copy(out, f.list)
	return out
}
