package shell

import (
	"net/url"

	"github.com/wetware/greet/pkg/app"
)

// Loader starts the application at locator.  The connector is bound to
// the new application, and should be passed to it.
type Loader interface {
	Load(conn app.Connector, locator string) (app.Application, error)
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc func(app.Connector, string) (app.Application, error)

func (load LoaderFunc) Load(conn app.Connector, locator string) (app.Application, error) {
	return load(conn, locator)
}

// loaderFor first looks for a loader matching the requested locator
// exactly, or by scheme.  Failing that, it resolves aliases and tries
// again, falling back on the default loader.
func (s *Shell) loaderFor(requested string) (Loader, string) {
	if l := s.lookup(requested); l != nil {
		return l, requested
	}

	resolved := s.resolve(requested)
	if l := s.lookup(resolved); l != nil {
		return l, resolved
	}

	return s.defaultLoader, resolved
}

func (s *Shell) lookup(locator string) Loader {
	if l, ok := s.loaders[locator]; ok {
		return l
	}

	return s.schemeLoaders[scheme(locator)]
}

// resolve follows aliases until a locator with no alias is reached.
// Cycles are broken at the first repeated locator.
func (s *Shell) resolve(locator string) string {
	seen := map[string]struct{}{}
	for {
		next, ok := s.alias[locator]
		if !ok {
			return locator
		}

		if _, loop := seen[next]; loop {
			return locator
		}

		seen[locator] = struct{}{}
		locator = next
	}
}

func scheme(locator string) string {
	if u, err := url.Parse(locator); err == nil {
		return u.Scheme
	}

	return ""
}
