package extension

import (
	"log/slog"

	"github.com/xraph/countersign"
	"github.com/xraph/countersign/plugin"
	"github.com/xraph/countersign/staging"
	"github.com/xraph/countersign/store"
)

// ExtOption configures the countersign Forge extension.
type ExtOption func(*Extension)

// WithStore sets the persistence backend.
func WithStore(s store.Store) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, countersign.WithStore(s))
	}
}

// WithConfig sets the extension configuration.
func WithConfig(cfg Config) ExtOption {
	return func(e *Extension) {
		e.config = cfg
	}
}

// WithEngineOptions adds engine-level options.
func WithEngineOptions(opts ...countersign.Option) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, opts...)
	}
}

// WithMutator registers the domain mutator for a change kind.
func WithMutator(kind staging.Kind, m countersign.Mutator) ExtOption {
	return func(e *Extension) {
		e.engOpts = append(e.engOpts, countersign.WithMutator(kind, m))
	}
}

// WithPlugin registers a lifecycle hook plugin.
func WithPlugin(x plugin.Plugin) ExtOption {
	return func(e *Extension) {
		e.plugins = append(e.plugins, x)
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) ExtOption {
	return func(e *Extension) {
		e.logger = l
	}
}

// WithDisableRoutes disables the registration of HTTP routes.
func WithDisableRoutes() ExtOption {
	return func(e *Extension) {
		e.config.DisableRoutes = true
	}
}

// WithDisableMigrate disables auto-migration on start.
func WithDisableMigrate() ExtOption {
	return func(e *Extension) {
		e.config.DisableMigrate = true
	}
}
