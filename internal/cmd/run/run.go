// Package run contains the `greet run` command implementation.
package run

import (
	"context"
	"strings"
	"time"

	"github.com/lthibault/log"
	"github.com/pkg/errors"
	"github.com/thejerf/suture/v4"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	ctxutil "github.com/wetware/greet/internal/util/ctx"
	logutil "github.com/wetware/greet/internal/util/log"
	serviceutil "github.com/wetware/greet/internal/util/service"
	statsdutil "github.com/wetware/greet/internal/util/statsd"
	"github.com/wetware/greet/pkg/app"
	"github.com/wetware/greet/pkg/hello"
	"github.com/wetware/greet/pkg/provider"
	"github.com/wetware/greet/pkg/shell"
	"github.com/wetware/greet/pkg/world"
)

var flags = []cli.Flag{
	&cli.PathFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "load application arguments and aliases from `path`",
		EnvVars: []string{"GREET_CONFIG"},
	},
	&cli.BoolFlag{
		Name:    "packed",
		Usage:   "use packed encoding for greeting frames",
		EnvVars: []string{"GREET_PACKED"},
	},
}

// Command constructor
func Command() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "launch an application and connect it to its peers",
		ArgsUsage: "\"<app> [args...]\"",
		Flags:     flags,
		Action:    run(),
	}
}

func run() cli.ActionFunc {
	return func(c *cli.Context) error {
		args := strings.Fields(strings.Join(c.Args().Slice(), " "))
		if len(args) == 0 {
			return errors.New("expected application locator")
		}

		var (
			sh  *shell.Shell
			sup *suture.Supervisor
		)

		rt := fx.New(fx.NopLogger,
			fx.Supply(c),
			fx.Provide(
				logutil.New,
				newMetrics,
				newConfig,
				newProvider,
				newSupervisor,
				newShell),
			fx.Populate(&sh, &sup))

		if err := start(c, rt); err != nil {
			return err
		}

		ctx, cancel := ctxutil.WithLifetime(c.Context)
		defer cancel()

		sup.Add(sh)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return sup.Serve(ctx)
		})
		g.Go(func() error {
			return errors.Wrap(sh.Launch(args...), "launch")
		})

		err := g.Wait()
		if expired(err) {
			logutil.New(c).Debug("shutting down")
			err = nil
		}

		return multierr.Append(err, shutdown(rt))
	}
}

func expired(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctxutil.IsSignal(err)
}

func start(c *cli.Context, rt *fx.App) error {
	ctx, cancel := context.WithTimeout(c.Context, time.Second*15)
	defer cancel()

	return rt.Start(ctx)
}

func shutdown(rt *fx.App) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()

	return rt.Stop(ctx)
}

func newMetrics(c *cli.Context, log log.Logger) app.Metrics {
	return statsdutil.New(c, log)
}

func newSupervisor(c *cli.Context, log log.Logger) *suture.Supervisor {
	return serviceutil.New(c, log)
}

func newConfig(c *cli.Context) (cfg shell.Config, err error) {
	if c.IsSet("config") {
		if cfg, err = shell.LoadConfig(c.Path("config")); err != nil {
			return
		}
	}

	cfg.Packed = cfg.Packed || c.Bool("packed")
	return
}

func newProvider(log log.Logger, cfg shell.Config) app.Provider {
	return &provider.Local{
		Log:    log,
		Packed: cfg.Packed,
	}
}

type shellConfig struct {
	fx.In

	Lifecycle fx.Lifecycle

	Logger   log.Logger
	Metrics  app.Metrics
	Config   shell.Config
	Provider app.Provider
}

// Loaders for the builtin 'hello' and 'world' schemes.
func (config shellConfig) Loaders() []shell.Option {
	return []shell.Option{
		shell.WithSchemeLoader("hello", shell.LoaderFunc(config.hello)),
		shell.WithSchemeLoader("world", shell.LoaderFunc(config.world)),
	}
}

func (config shellConfig) hello(conn app.Connector, locator string) (app.Application, error) {
	return hello.New(conn, locator,
		hello.WithLogger(logutil.ForApp(config.Logger, locator)),
		hello.WithProvider(config.Provider)), nil
}

func (config shellConfig) world(conn app.Connector, locator string) (app.Application, error) {
	return world.New(conn, locator,
		world.WithLogger(logutil.ForApp(config.Logger, locator)),
		world.WithPacked(config.Config.Packed)), nil
}

func newShell(config shellConfig) (*shell.Shell, error) {
	sh, err := shell.New(append(config.Loaders(),
		shell.WithLogger(config.Logger),
		shell.WithMetrics(config.Metrics),
		shell.WithProvider(config.Provider),
		shell.WithConfig(config.Config))...)
	if err != nil {
		return nil, err
	}

	config.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			defer config.Metrics.Flush()
			return sh.Close()
		},
	})

	return sh, nil
}
