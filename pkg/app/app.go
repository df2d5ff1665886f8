// Package app defines the contract between the shell and the applications
// it hosts.
package app

import (
	"io"

	"github.com/google/uuid"
)

const Version = "0.1.0"

// Application is implemented by anything the shell can host.  The shell
// calls Initialize exactly once per instance, before any call to
// AcceptConnection.  Neither method may block.
type Application interface {
	// Initialize the application with its startup arguments.  By
	// convention, args[0] locates the application itself.
	Initialize(args []string)

	// AcceptConnection is called when the application designated
	// by requestor connects to this one.  Ownership of ep passes
	// to the application.
	AcceptConnection(requestor string, ep Endpoint)
}

// Connector asks the host to connect the caller to another application.
// The call is one-way:  no result is reported, and ownership of ep passes
// to the host.
type Connector interface {
	ConnectToApplication(target string, ep Endpoint)
}

// Endpoint is one half of a bidirectional communication channel.
type Endpoint interface {
	io.ReadWriteCloser
	ID() uuid.UUID
}

// Provider creates the local side of a new connection.  The returned
// endpoint is the half to be handed to the remote application; the
// provider keeps, and serves, the other.
type Provider interface {
	NewEndpoint() Endpoint
}

// Metrics reports counters to a metrics sink.
type Metrics interface {
	Incr(bucket string)
	Decr(bucket string)
	Gauge(bucket string, value interface{})
	Flush()
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) Incr(string)               {}
func (NopMetrics) Decr(string)               {}
func (NopMetrics) Gauge(string, interface{}) {}
func (NopMetrics) Flush()                    {}
