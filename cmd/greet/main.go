/*
	greet - launch greeting applications and watch them connect
	Copyright 2020, Louis Thibault.  All rights reserved.
*/

package main

import (
	"os"

	"github.com/lthibault/log"
	"github.com/urfave/cli/v2"

	"github.com/wetware/greet/internal/cmd/run"
	"github.com/wetware/greet/pkg/app"
)

var flags = []cli.Flag{
	// Logging
	&cli.StringFlag{
		Name:    "logfmt",
		Aliases: []string{"f"},
		Usage:   "`format` logs as text, json or none",
		Value:   "text",
		EnvVars: []string{"GREET_LOGFMT"},
	},
	&cli.StringFlag{
		Name:    "loglvl",
		Usage:   "set logging `level` to trace, debug, info, warn, error or fatal",
		Value:   "info",
		EnvVars: []string{"GREET_LOGLVL"},
	},
	// Statsd
	&cli.StringFlag{
		Name:        "metrics",
		Aliases:     []string{"statsd"},
		Usage:       "send metrics to udp `host:port`",
		EnvVars:     []string{"GREET_METRICS", "GREET_STATSD"},
		DefaultText: "disabled",
	},
	// Misc.
	&cli.BoolFlag{
		Name:    "prettyprint",
		Aliases: []string{"pp"},
		Usage:   "pretty-print JSON output",
		Hidden:  true,
	},
}

var commands = []*cli.Command{
	run.Command(),
}

func main() {
	serve(&cli.App{
		Name:                 "greet",
		HelpName:             "greet",
		Usage:                "hello, world between applications",
		UsageText:            "greet [global options] command [command options] [arguments...]",
		Copyright:            "2020 The Wetware Project",
		Version:              app.Version,
		EnableBashCompletion: true,
		Flags:                flags,
		Commands:             commands,
		Metadata: map[string]interface{}{
			"version": app.Version,
		},
	})
}

func serve(app *cli.App) {
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
