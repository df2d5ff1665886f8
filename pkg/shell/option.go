package shell

import (
	"github.com/lthibault/log"

	"github.com/wetware/greet/pkg/app"
)

// Option type for Shell
type Option func(*Shell)

// WithLogger sets the logger.  If l == nil, a default logger is used.
func WithLogger(l log.Logger) Option {
	if l == nil {
		l = log.New()
	}

	return func(s *Shell) {
		s.log = l
	}
}

// WithMetrics sets the metrics sink.  If m == nil, metrics are discarded.
func WithMetrics(m app.Metrics) Option {
	if m == nil {
		m = app.NopMetrics{}
	}

	return func(s *Shell) {
		s.metrics = m
	}
}

// WithProvider sets the provider used for connections that originate
// from the shell itself, i.e. Launch.  If p == nil, a provider.Local
// is used.
func WithProvider(p app.Provider) Option {
	return func(s *Shell) {
		s.prov = p
	}
}

// WithLoader sets the loader for a specific locator.  It takes precedence
// over scheme loaders and aliases.
func WithLoader(locator string, l Loader) Option {
	return func(s *Shell) {
		s.loaders[locator] = l
	}
}

// WithSchemeLoader sets the loader for all locators with the given scheme.
func WithSchemeLoader(scheme string, l Loader) Option {
	return func(s *Shell) {
		s.schemeLoaders[scheme] = l
	}
}

// WithDefaultLoader sets the loader used when no other loader matches.
func WithDefaultLoader(l Loader) Option {
	return func(s *Shell) {
		s.defaultLoader = l
	}
}

// WithArgs sets the startup arguments for the application at locator.
func WithArgs(locator string, args ...string) Option {
	return func(s *Shell) {
		s.args[locator] = append([]string(nil), args...)
	}
}

// WithAlias causes requests for locator 'from' to be served by the
// application at 'to', unless a locator or scheme loader matches 'from'.
func WithAlias(from, to string) Option {
	return func(s *Shell) {
		s.alias[from] = to
	}
}

// WithConfig applies the arguments and aliases in c.
func WithConfig(c Config) Option {
	return func(s *Shell) {
		for _, option := range c.Options() {
			option(s)
		}
	}
}

func withDefault(opt []Option) []Option {
	return append([]Option{
		WithLogger(nil),
		WithMetrics(nil),
	}, opt...)
}
