package logutil_test

import (
	"bytes"
	"encoding/json"
	"flag"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	logutil "github.com/wetware/greet/internal/util/log"
	"github.com/wetware/greet/pkg/app"
)

func TestNew(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := newContext(t, &buf, "--logfmt", "json", "--loglvl", "debug")

	logutil.New(c).Debug("test")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "should be json")
	assert.Equal(t, "test", entry["msg"])
	assert.Equal(t, app.Version, entry["version"])
}

func TestNone(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := newContext(t, &buf, "--logfmt", "none", "--loglvl", "debug")

	logutil.New(c).Error("test")
	assert.Zero(t, buf.Len(), "should not write log")
}

func TestLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := newContext(t, &buf, "--loglvl", "warn")

	logutil.New(c).Info("test")
	assert.Zero(t, buf.Len(), "should filter info logs")

	logutil.New(c).Warn("test")
	assert.Contains(t, buf.String(), "msg=test")
}

func newContext(t *testing.T, buf *bytes.Buffer, args ...string) *cli.Context {
	t.Helper()

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("logfmt", "text", "")
	fs.String("loglvl", "info", "")
	fs.Bool("prettyprint", false, "")
	require.NoError(t, fs.Parse(args))

	return cli.NewContext(&cli.App{ErrWriter: buf}, fs, nil)
}

func TestForApp(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := newContext(t, &buf, "--logfmt", "json")

	logutil.ForApp(logutil.New(c), "hello:a").Info("test")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "should be json")
	assert.Equal(t, "hello:a", entry["app"])
	assert.Equal(t, app.Version, entry["version"])
}

func TestCached(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	c := newContext(t, &buf, "--loglvl", "error")

	logutil.New(c)
	c.App.ErrWriter = ioutil.Discard

	logutil.New(c).Error("test")
	assert.Contains(t, buf.String(), "msg=test", "should reuse first logger")
}
