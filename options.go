package countersign

import (
	"log/slog"

	"github.com/xraph/countersign/plugin"
	"github.com/xraph/countersign/staging"
	"github.com/xraph/countersign/store"
)

// Option is a functional option for the Engine.
type Option func(*Engine)

// WithStore sets the composite store.
func WithStore(s store.Store) Option { return func(e *Engine) { e.store = s } }

// WithEvaluator sets the authorization evaluator.
func WithEvaluator(ev Evaluator) Option { return func(e *Engine) { e.evaluator = ev } }

// WithCache wraps the evaluator with a decoded-permission-set cache.
func WithCache(c Cache) Option { return func(e *Engine) { e.evaluator = CachedEvaluator(c) } }

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithConfig sets the engine configuration.
func WithConfig(c Config) Option { return func(e *Engine) { e.config = c } }

// WithMutator registers the domain mutator for a change kind. Approvals of
// that kind fail with ErrNoMutator until one is registered.
func WithMutator(kind staging.Kind, m Mutator) Option {
	return func(e *Engine) { e.mutators[kind] = m }
}

// WithPlugin registers a plugin with the engine.
func WithPlugin(x plugin.Plugin) Option {
	return func(e *Engine) {
		if e.plugins == nil {
			e.plugins = plugin.NewRegistry(e.logger)
		}
		e.plugins.Register(x)
	}
}
