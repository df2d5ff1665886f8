// Package world provides an application that answers every inbound
// connection with a greeting.
package world

import (
	"github.com/lthibault/log"

	"github.com/wetware/greet/pkg/app"
	"github.com/wetware/greet/pkg/wire"
)

var _ app.Application = (*World)(nil)

const greeting = "World"

type World struct {
	log    log.Logger
	self   string
	conn   app.Connector
	packed bool
}

func New(conn app.Connector, self string, opt ...Option) *World {
	w := &World{
		self: self,
		conn: conn,
		log:  log.New(),
	}

	for _, option := range opt {
		option(w)
	}

	w.log.With(w).Debug("application created")
	return w
}

func (w *World) Loggable() map[string]interface{} {
	return map[string]interface{}{
		"app": w.self,
	}
}

func (w *World) Initialize(args []string) {
	w.log.With(w).
		WithField("args", args).
		Debug("initialized")
}

// AcceptConnection logs the greeting and writes it to ep, then closes
// ep.  The write happens in the background.
func (w *World) AcceptConnection(requestor string, ep app.Endpoint) {
	if ep == nil {
		return
	}

	w.log.
		WithField("requestor", requestor).
		Info(w.self + ": " + greeting)

	go w.reply(ep)
}

func (w *World) reply(ep app.Endpoint) {
	defer ep.Close()

	err := wire.NewEncoder(ep, w.packed).Encode(wire.Greeting{
		From: w.self,
		Text: greeting,
	})
	if err != nil {
		w.log.With(w).
			WithError(err).
			WithField("endpoint", ep.ID()).
			Debug("failed to send greeting")
	}
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger.  If l == nil, a default logger is used.
func WithLogger(l log.Logger) Option {
	if l == nil {
		l = log.New()
	}

	return func(w *World) {
		w.log = l
	}
}

// WithPacked selects the packed frame encoding.
func WithPacked(packed bool) Option {
	return func(w *World) {
		w.packed = packed
	}
}
