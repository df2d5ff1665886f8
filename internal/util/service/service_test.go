package serviceutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lthibault/log"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thejerf/suture/v4"
	"github.com/urfave/cli/v2"

	serviceutil "github.com/wetware/greet/internal/util/service"
)

func TestEventHook(t *testing.T) {
	t.Parallel()

	var buf, errbuf bytes.Buffer
	hook := serviceutil.NewEventHook(log.New(
		log.WithLevel(log.DebugLevel),
		log.WithFormatter(&logrus.JSONFormatter{}),
		log.WithWriter(&buf)), &cli.App{ErrWriter: &errbuf})

	hook(suture.EventServiceTerminate{
		SupervisorName:   "greet",
		ServiceName:      "shell",
		CurrentFailures:  1,
		FailureThreshold: 4,
		Restarting:       true,
		Err:              errors.New("test"),
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "should be json")
	assert.Equal(t, "encountered exception in shell", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "greet", entry["parent"])
	assert.Equal(t, .25, entry["backpressure"])
	assert.Zero(t, errbuf.Len(), "should not write stack trace")
}

func TestEventHookPanic(t *testing.T) {
	t.Parallel()

	var buf, errbuf bytes.Buffer
	hook := serviceutil.NewEventHook(log.New(
		log.WithFormatter(&logrus.JSONFormatter{}),
		log.WithWriter(&buf)), &cli.App{ErrWriter: &errbuf})

	hook(suture.EventServicePanic{
		SupervisorName: "greet",
		ServiceName:    "shell",
		PanicMsg:       "boom",
		Stacktrace:     "goroutine 1 [running]:",
	})

	assert.Contains(t, buf.String(), "unhandled exception in shell")
	assert.Contains(t, errbuf.String(), "boom")
	assert.Contains(t, errbuf.String(), "goroutine 1 [running]:")
}

func TestExceptionGoString(t *testing.T) {
	t.Parallel()

	e := serviceutil.Exception{
		Value:        "test",
		Parent:       "greet",
		Restart:      true,
		Backpressure: .5,
	}

	assert.Contains(t, e.GoString(), `Parent:       "greet"`)
	assert.Contains(t, e.GoString(), "Backpressure: 0.50")
}
