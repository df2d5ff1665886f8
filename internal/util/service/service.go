// Package serviceutil builds suture supervisors that report to a logger.
package serviceutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lthibault/log"
	"github.com/thejerf/suture/v4"
	"github.com/urfave/cli/v2"
)

// New supervisor named after the cli application.
func New(c *cli.Context, log log.Logger) *suture.Supervisor {
	return suture.New(c.App.Name, suture.Spec{
		EventHook: NewEventHook(log, c.App),
		Timeout:   time.Second * 5,
	})
}

// NewEventHook logs supervisor events.  Panic stack traces are written
// to the application's error writer.
func NewEventHook(logger log.Logger, app *cli.App) suture.EventHook {
	return func(e suture.Event) {
		switch ev := e.(type) {
		case suture.EventBackoff:
			logger.WithFields(ev.Map()).Debugf("%s suspended", ev.SupervisorName)

		case suture.EventResume:
			logger.
				WithField("parent", ev.SupervisorName).
				Infof("%s resumed", ev.SupervisorName)

		case suture.EventServiceTerminate:
			logger.With(Exception{
				Value:        ev.Err,
				Parent:       ev.SupervisorName,
				Restart:      ev.Restarting,
				Backpressure: backpressure(ev.CurrentFailures, ev.FailureThreshold),
			}).
				Warnf("encountered exception in %s", ev.ServiceName)

		case suture.EventServicePanic:
			logger.With(Exception{
				Value:        ev.PanicMsg,
				Parent:       ev.SupervisorName,
				Restart:      ev.Restarting,
				Backpressure: backpressure(ev.CurrentFailures, ev.FailureThreshold),
			}).
				Warnf("unhandled exception in %s", ev.ServiceName)

			fmt.Fprintf(app.ErrWriter, "%s\n%s\n",
				ev.PanicMsg,
				ev.Stacktrace)

		case suture.EventStopTimeout:
			logger.
				WithField("parent", ev.SupervisorName).
				Errorf("%s failed to stop in time", ev.ServiceName)
		}
	}
}

func backpressure(failures, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}

	return failures / threshold
}

// Exception is thrown asynchronously from services.
type Exception struct {
	Value        interface{} `json:"value"`
	Parent       string      `json:"parent"`
	Restart      bool        `json:"restart"`
	Backpressure float64     `json:"backpressure"`
}

func (e Exception) GoString() string {
	return fmt.Sprintf(strings.TrimSpace(`
Exception{
	Value:        %#v,
	Parent:       %s,
	Restart:      %t,
	Backpressure: %.2f,
}`),
		e.Value,
		strconv.Quote(e.Parent),
		e.Restart,
		e.Backpressure)
}

func (e Exception) Loggable() map[string]interface{} {
	return map[string]interface{}{
		"value":        e.Value,
		"parent":       e.Parent,
		"restart":      e.Restart,
		"backpressure": e.Backpressure,
	}
}
