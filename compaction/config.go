package compaction

import "fmt"

// Default configuration values.
const (
	// DefaultKeepRecent is the number of most recent messages preserved
	// verbatim through a compaction pass.
	DefaultKeepRecent = 6

	// DefaultSummarizerModel is the model used for summarization. A fast,
	// cheap model is deliberate: the synopsis does not need frontier quality.
	DefaultSummarizerModel = "claude-3-5-haiku-20241022"

	// DefaultSummarizerMaxTokens caps the summarizer response.
	DefaultSummarizerMaxTokens = 1024

	// DefaultSummarizerTemperature keeps summaries close to the source.
	DefaultSummarizerTemperature = 0.3
)

// eligibilityMargin is the number of messages beyond keepRecent a history
// must hold before compaction is worth the summarizer call.
const eligibilityMargin = 2

// Config holds compaction configuration.
type Config struct {
	// KeepRecent is the number of most recent messages preserved verbatim.
	// Default: 6
	KeepRecent int

	// SummarizerModel is the model used for the summarization call.
	// Default: "claude-3-5-haiku-20241022"
	SummarizerModel string

	// SummarizerMaxTokens caps the summarizer response length.
	// Default: 1024
	SummarizerMaxTokens int

	// SummarizerTemperature is the sampling temperature for summarization.
	// Default: 0.3
	SummarizerTemperature float64
}

// DefaultConfig returns a Config with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		KeepRecent:            DefaultKeepRecent,
		SummarizerModel:       DefaultSummarizerModel,
		SummarizerMaxTokens:   DefaultSummarizerMaxTokens,
		SummarizerTemperature: DefaultSummarizerTemperature,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	if c.KeepRecent == 0 {
		c.KeepRecent = DefaultKeepRecent
	}
	if c.SummarizerModel == "" {
		c.SummarizerModel = DefaultSummarizerModel
	}
	if c.SummarizerMaxTokens == 0 {
		c.SummarizerMaxTokens = DefaultSummarizerMaxTokens
	}
	if c.SummarizerTemperature == 0 {
		c.SummarizerTemperature = DefaultSummarizerTemperature
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.KeepRecent < 0 {
		return fmt.Errorf("%w: keep_recent must be non-negative, got %d", ErrInvalidConfig, c.KeepRecent)
	}
	if c.SummarizerModel == "" {
		return fmt.Errorf("%w: summarizer_model is required", ErrInvalidConfig)
	}
	if c.SummarizerMaxTokens <= 0 {
		return fmt.Errorf("%w: summarizer_max_tokens must be positive, got %d", ErrInvalidConfig, c.SummarizerMaxTokens)
	}
	if c.SummarizerTemperature < 0 || c.SummarizerTemperature > 1 {
		return fmt.Errorf("%w: summarizer_temperature must be between 0 and 1, got %f", ErrInvalidConfig, c.SummarizerTemperature)
	}
	return nil
}
