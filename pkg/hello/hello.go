// Package hello provides an application that greets, then connects to the
// application named by its only argument.
package hello

import (
	"github.com/lthibault/log"

	"github.com/wetware/greet/pkg/app"
	"github.com/wetware/greet/pkg/provider"
)

var _ app.Application = (*Greeter)(nil)

// Greeter logs a greeting when it is created.  When initialized with
// exactly two arguments, it asks its connector to connect it to the
// application located by the second.
type Greeter struct {
	log  log.Logger
	self string
	conn app.Connector
	prov app.Provider
}

// New greeter for the application located at self.
func New(conn app.Connector, self string, opt ...Option) *Greeter {
	g := &Greeter{
		self: self,
		conn: conn,
	}

	for _, option := range withDefault(opt) {
		option(g)
	}

	if g.prov == nil {
		g.prov = &provider.Local{Log: g.log.With(g)}
	}

	g.log.Info(self + ": Hello")
	return g
}

func (g *Greeter) Loggable() map[string]interface{} {
	return map[string]interface{}{
		"app": g.self,
	}
}

// Initialize expects args to hold the greeter's own locator, followed by
// the target locator.  Any other argument count is a usage error, which
// is logged and otherwise ignored.
//
// Initialize does not guard against repeated calls; each call validates
// its arguments and connects independently.
func (g *Greeter) Initialize(args []string) {
	if len(args) != 2 {
		g.log.
			WithField("args", args).
			Error("expected target locator argument")
		return
	}

	g.conn.ConnectToApplication(args[1], g.prov.NewEndpoint())
}

// AcceptConnection discards inbound connections.
func (g *Greeter) AcceptConnection(string, app.Endpoint) {}

// Option configures a Greeter.
type Option func(*Greeter)

// WithLogger sets the logger.  If l == nil, a default logger is used.
func WithLogger(l log.Logger) Option {
	if l == nil {
		l = log.New()
	}

	return func(g *Greeter) {
		g.log = l
	}
}

// WithProvider sets the provider from which the greeter obtains new
// endpoints.  If p == nil, a provider.Local is used.
func WithProvider(p app.Provider) Option {
	return func(g *Greeter) {
		g.prov = p
	}
}

func withDefault(opt []Option) []Option {
	return append([]Option{
		WithLogger(nil),
		WithProvider(nil),
	}, opt...)
}
