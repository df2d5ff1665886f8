// Package provider implements the local side of application connections.
package provider

import (
	"errors"
	"io"

	"github.com/lthibault/log"

	"github.com/wetware/greet/pkg/app"
	"github.com/wetware/greet/pkg/endpoint"
	"github.com/wetware/greet/pkg/wire"
)

var _ app.Provider = (*Local)(nil)

// Local creates endpoint pairs.  It hands out one half of each pair and
// reads greeting frames from the other until the remote side hangs up.
type Local struct {
	Log    log.Logger
	Packed bool

	// Received, if non-nil, is sent each greeting frame as it arrives.
	// Frames are dropped if the channel is not ready.
	Received chan<- wire.Greeting
}

// NewEndpoint returns the remote half of a fresh endpoint pair.
func (p *Local) NewEndpoint() app.Endpoint {
	local, remote := endpoint.New()
	go p.serve(local)
	return remote
}

func (p *Local) serve(ep *endpoint.Endpoint) {
	defer ep.Close()

	logger := p.logger().With(ep)
	dec := wire.NewDecoder(ep, p.Packed)

	for {
		g, err := dec.Decode()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.WithError(err).Debug("connection terminated")
			}

			return
		}

		logger.With(g).Info(g.String())

		if p.Received != nil {
			select {
			case p.Received <- g:
			default:
			}
		}
	}
}

func (p *Local) logger() log.Logger {
	if p.Log == nil {
		return log.New()
	}

	return p.Log
}
