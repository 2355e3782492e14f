package sessions

import (
	"fmt"

	"github.com/modelgate/sessions/compaction"
	"github.com/modelgate/sessions/hooks"
)

type managerConfig struct {
	cacheSize       int
	systemPrompt    string
	compaction      *compaction.Config
	logger          Logger
	evictionHooks   []hooks.EvictionHook
	compactionHooks []hooks.CompactionHook
}

// Option is a functional option for configuring a Manager
type Option func(*managerConfig) error

// WithCacheSize sets the capacity of each session cache
func WithCacheSize(n int) Option {
	return func(c *managerConfig) error {
		if n <= 0 {
			return NewOpError("WithCacheSize", "",
				fmt.Errorf("%w: cache size must be positive, got %d", ErrInvalidConfig, n))
		}
		c.cacheSize = n
		return nil
	}
}

// WithSystemPrompt sets the system prompt seeded into new sessions
func WithSystemPrompt(prompt string) Option {
	return func(c *managerConfig) error {
		c.systemPrompt = prompt
		return nil
	}
}

// WithLogger sets the manager's logger
func WithLogger(logger Logger) Option {
	return func(c *managerConfig) error {
		if logger == nil {
			return NewOpError("WithLogger", "",
				fmt.Errorf("%w: logger is nil", ErrInvalidConfig))
		}
		c.logger = logger
		return nil
	}
}

// WithCompactionConfig sets the compaction configuration
func WithCompactionConfig(cfg *compaction.Config) Option {
	return func(c *managerConfig) error {
		if cfg != nil {
			if err := cfg.Validate(); err != nil {
				return NewOpError("WithCompactionConfig", "", err)
			}
		}
		c.compaction = cfg
		return nil
	}
}

// WithKeepRecent sets the number of messages preserved verbatim by compaction
func WithKeepRecent(n int) Option {
	return func(c *managerConfig) error {
		if n <= 0 {
			return NewOpError("WithKeepRecent", "",
				fmt.Errorf("%w: keep recent must be positive, got %d", ErrInvalidConfig, n))
		}
		if c.compaction == nil {
			c.compaction = compaction.DefaultConfig()
		}
		c.compaction.KeepRecent = n
		return nil
	}
}

// WithEvictionHook registers a hook observing session teardown
func WithEvictionHook(hook hooks.EvictionHook) Option {
	return func(c *managerConfig) error {
		if hook != nil {
			c.evictionHooks = append(c.evictionHooks, hook)
		}
		return nil
	}
}

// WithCompactionHook registers a hook observing compaction passes
func WithCompactionHook(hook hooks.CompactionHook) Option {
	return func(c *managerConfig) error {
		if hook != nil {
			c.compactionHooks = append(c.compactionHooks, hook)
		}
		return nil
	}
}
