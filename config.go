package til

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config is the complete runtime configuration for the engine.
type Config struct {
	// ContentDir is the root directory of Markdown sources.
	ContentDir string
	// Pattern filters discovered files by base name.
	Pattern string
	// DatabaseDir is where the sqlite database lives. Empty keeps the store
	// in memory, which is what the test suites use.
	DatabaseDir string
	// BaseURL prefixes rewritten wikilink anchors and feed entry links.
	BaseURL string
	// PerPage is the default listing page size.
	PerPage int
	// DefaultTopic tags documents that carry no topics of their own.
	DefaultTopic string
	// PreviewLength is the character budget for listing previews.
	PreviewLength int

	Search  SearchConfig
	Logging LoggingConfig
	Watch   WatchConfig
	Feed    FeedConfig
}

// SearchConfig controls snippet highlighting.
type SearchConfig struct {
	MarkOpen  string
	MarkClose string
}

// LoggingConfig mirrors the go-logger options the engine exposes.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// WatchConfig controls the file watcher.
type WatchConfig struct {
	// Debounce is the quiet window changes must clear before a rebuild.
	Debounce time.Duration
}

// FeedConfig describes the Atom feed of recent documents.
type FeedConfig struct {
	Title       string
	Description string
	AuthorName  string
	AuthorEmail string
	Limit       int
}

// DefaultConfig returns the configuration local development starts from.
func DefaultConfig() Config {
	return Config{
		ContentDir:    "content",
		Pattern:       "*.md",
		DatabaseDir:   ".",
		PerPage:       20,
		DefaultTopic:  "general",
		PreviewLength: 200,
		Search: SearchConfig{
			MarkOpen:  "<mark>",
			MarkClose: "</mark>",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
		Feed: FeedConfig{
			Title: "Today I Learned",
			Limit: 20,
		},
	}
}

var (
	validLogFormats = []any{"", "json", "console", "pretty"}
	validLogLevels  = []any{"", "trace", "debug", "info", "warn", "warning", "error", "fatal"}
)

// Validate checks the configuration before the service wires anything.
func (cfg Config) Validate() error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.ContentDir, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("til.config.content_dir_required", "content dir is required")
			}
			return nil
		})),
		validation.Field(&cfg.PerPage, validation.Min(1)),
		validation.Field(&cfg.PreviewLength, validation.Min(1)),
		validation.Field(&cfg.Logging, validation.By(func(value any) error {
			lc := value.(LoggingConfig)
			if err := validation.Validate(strings.ToLower(lc.Format), validation.In(validLogFormats...)); err != nil {
				return validation.NewError("til.config.logging_format_invalid", "logging format must be json, console, or pretty")
			}
			if err := validation.Validate(strings.ToLower(lc.Level), validation.In(validLogLevels...)); err != nil {
				return validation.NewError("til.config.logging_level_invalid", "logging level is invalid")
			}
			return nil
		})),
	)
}
