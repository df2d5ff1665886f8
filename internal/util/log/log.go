// Package logutil builds the greet logger from global cli flags.
package logutil

import (
	"io"
	"io/ioutil"

	"github.com/lthibault/log"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/wetware/greet/pkg/app"
)

var levels = map[string]log.Option{
	"trace":   log.WithLevel(log.TraceLevel),
	"t":       log.WithLevel(log.TraceLevel),
	"debug":   log.WithLevel(log.DebugLevel),
	"d":       log.WithLevel(log.DebugLevel),
	"info":    log.WithLevel(log.InfoLevel),
	"i":       log.WithLevel(log.InfoLevel),
	"warn":    log.WithLevel(log.WarnLevel),
	"warning": log.WithLevel(log.WarnLevel),
	"w":       log.WithLevel(log.WarnLevel),
	"error":   log.WithLevel(log.ErrorLevel),
	"err":     log.WithLevel(log.ErrorLevel),
	"e":       log.WithLevel(log.ErrorLevel),
	"fatal":   log.WithLevel(log.FatalLevel),
	"f":       log.WithLevel(log.FatalLevel),
}

// New returns the logger bound to the cli application, creating it on
// first use.  Every logger carries the greet version.
func New(c *cli.Context) log.Logger {
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}

	if logger, ok := c.App.Metadata[key].(log.Logger); ok {
		return logger
	}

	logger := log.New(
		WithLevel(c),
		WithFormat(c),
		WithWriter(c)).
		WithField("version", app.Version)

	c.App.Metadata[key] = logger
	return logger
}

// ForApp returns a logger for the application at locator.
func ForApp(logger log.Logger, locator string) log.Logger {
	return logger.WithField("app", locator)
}

// WithLevel parses the 'loglvl' flag.  Unknown levels default to info.
func WithLevel(c *cli.Context) log.Option {
	if opt, ok := levels[c.String("loglvl")]; ok {
		return opt
	}

	return log.WithLevel(log.InfoLevel)
}

// WithFormat parses the 'logfmt' flag.
func WithFormat(c *cli.Context) log.Option {
	if c.String("logfmt") == "json" {
		return log.WithFormatter(&logrus.JSONFormatter{
			PrettyPrint: c.Bool("prettyprint"),
		})
	}

	return log.WithFormatter(new(logrus.TextFormatter))
}

// WithWriter sends logs to the application's error writer, or nowhere if
// 'logfmt' is "none".
func WithWriter(c *cli.Context) log.Option {
	var w io.Writer = c.App.ErrWriter
	if c.String("logfmt") == "none" {
		w = ioutil.Discard
	}

	return log.WithWriter(w)
}

// key with random component to avoid collision
const key = "greet.util.log:q7#Vd(e+>2Lw}T!m"
