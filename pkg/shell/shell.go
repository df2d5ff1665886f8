// Package shell hosts applications in-process and connects them to one
// another by locator.
package shell

import (
	"context"
	"sync"

	"github.com/lthibault/log"
	"github.com/pkg/errors"
	"github.com/thejerf/suture/v4"
	"go.uber.org/multierr"

	"github.com/wetware/greet/pkg/app"
	"github.com/wetware/greet/pkg/provider"
)

// ErrNotFound is reported when no loader can be found for a locator.
var ErrNotFound = errors.New("could not find loader")

var _ suture.Service = (*Shell)(nil)

// Shell is a minimal application manager.  Applications are started
// lazily, when a first connection is made to them, and remain running
// until the process exits.  At most one instance exists per resolved
// locator.
//
// All calls into hosted applications are made from the goroutine that
// runs Serve.
type Shell struct {
	log     log.Logger
	metrics app.Metrics
	prov    app.Provider

	loaders       map[string]Loader // by locator
	schemeLoaders map[string]Loader // by locator scheme
	defaultLoader Loader
	alias         map[string]string

	mu       sync.RWMutex
	args     map[string][]string
	launched []app.Endpoint // closed with the shell

	table instances
	mb    *mailbox

	once sync.Once
	done chan struct{}
}

// New shell.
func New(opt ...Option) (*Shell, error) {
	table, err := newInstances()
	if err != nil {
		return nil, errors.Wrap(err, "instance table")
	}

	s := &Shell{
		loaders:       make(map[string]Loader),
		schemeLoaders: make(map[string]Loader),
		alias:         make(map[string]string),
		args:          make(map[string][]string),
		table:         table,
		mb:            newMailbox(),
		done:          make(chan struct{}),
	}

	for _, option := range withDefault(opt) {
		option(s)
	}

	if s.prov == nil {
		s.prov = &provider.Local{Log: s.log}
	}

	return s, nil
}

func (s *Shell) String() string { return "shell" }

func (s *Shell) Loggable() map[string]interface{} {
	return map[string]interface{}{
		"instances": s.table.Len(),
	}
}

// Connector returns a connector for the application at requestor.  The
// requestor is reported to the target application's AcceptConnection.
func (s *Shell) Connector(requestor string) app.Connector {
	return binding{shell: s, requestor: requestor}
}

// Launch connects to the application located by args[0], starting it
// with args if it is not already running.  The shell keeps its side of
// the connection until Close, since the application may discard it.
func (s *Shell) Launch(args ...string) error {
	if len(args) == 0 {
		return errors.New("no application specified")
	}

	ep := s.prov.NewEndpoint()

	s.mu.Lock()
	s.args[args[0]] = append([]string(nil), args...)
	s.launched = append(s.launched, ep)
	s.mu.Unlock()

	s.Connector("").ConnectToApplication(args[0], ep)
	return nil
}

// SetArgs sets the startup arguments for the application at locator.  It
// only affects instances started after the call.
func (s *Shell) SetArgs(locator string, args ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.args[locator] = append([]string(nil), args...)
}

// Instances returns the sorted locators of running applications.
func (s *Shell) Instances() []string {
	return s.table.List()
}

// Serve processes connection requests until ctx expires or the shell is
// closed.
func (s *Shell) Serve(ctx context.Context) error {
	s.log.Debug("shell started")
	defer s.log.Debug("shell stopped")

	for {
		select {
		case <-s.mb.Ready():
			for _, req := range s.mb.Take() {
				s.handle(req)
			}

		case <-s.done:
			return suture.ErrDoNotRestart

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close the shell.  Pending requests are dropped and their endpoints
// closed, as are endpoints handed out by Launch.  Running applications
// are otherwise unaffected.
func (s *Shell) Close() (err error) {
	s.once.Do(func() {
		close(s.done)
	})

	for _, req := range s.mb.Close() {
		err = multierr.Append(err, release(req.ep))
	}

	s.mu.Lock()
	launched := s.launched
	s.launched = nil
	s.mu.Unlock()

	for _, ep := range launched {
		err = multierr.Append(err, release(ep))
	}

	return
}

func (s *Shell) enqueue(req request) {
	if !s.mb.Put(req) {
		s.log.
			WithField("target", req.target).
			Debug("shell closed; dropping connection")
		release(req.ep)
	}
}

func (s *Shell) handle(req request) {
	inst, err := s.instance(req.target)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.Incr("shell.unresolved")
			s.log.WithField("target", req.target).Warn(err)
		} else {
			s.metrics.Incr("shell.failed")
			s.log.WithError(err).
				WithField("target", req.target).
				Error("failed to load application")
		}

		release(req.ep)
		return
	}

	s.metrics.Incr("shell.connect")
	s.log.With(inst).
		WithField("requestor", req.requestor).
		Trace("connecting")

	inst.App.AcceptConnection(req.requestor, req.ep)
}

// instance returns the running instance for the requested locator,
// loading and initializing it if needed.
func (s *Shell) instance(requested string) (*Instance, error) {
	if requested == "" {
		return nil, errors.Wrap(ErrNotFound, "empty locator")
	}

	loader, resolved := s.loaderFor(requested)
	if loader == nil || resolved == "" {
		return nil, errors.Wrapf(ErrNotFound, "%s", requested)
	}

	if inst, ok := s.table.Get(resolved); ok {
		return inst, nil
	}

	a, err := loader.Load(s.Connector(resolved), resolved)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", resolved)
	}

	inst := &Instance{
		Locator:   resolved,
		Requested: requested,
		App:       a,
	}

	if err = s.table.Insert(inst); err != nil {
		return nil, err
	}

	s.metrics.Incr("shell.launch")
	s.metrics.Gauge("shell.instances", s.table.Len())
	s.log.With(inst).Debug("application started")

	a.Initialize(s.argsFor(requested, resolved))
	return inst, nil
}

// argsFor returns the arguments set for the requested locator, falling
// back on those of the resolved locator.
func (s *Shell) argsFor(requested, resolved string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	args, ok := s.args[requested]
	if !ok {
		args = s.args[resolved]
	}

	return append([]string(nil), args...)
}

func release(ep app.Endpoint) error {
	if ep == nil {
		return nil
	}

	return ep.Close()
}

type request struct {
	target, requestor string
	ep                app.Endpoint
}

type binding struct {
	shell     *Shell
	requestor string
}

func (b binding) ConnectToApplication(target string, ep app.Endpoint) {
	b.shell.enqueue(request{
		target:    target,
		requestor: b.requestor,
		ep:        ep,
	})
}
