package hello_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/lthibault/log"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mock_app "github.com/wetware/greet/internal/mock/pkg/app"
	"github.com/wetware/greet/pkg/app"
	"github.com/wetware/greet/pkg/endpoint"
	"github.com/wetware/greet/pkg/hello"
)

const (
	self   = "hello:a"
	target = "world:b"
)

func TestNew(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger, buf := newTestLogger()
	hello.New(mock_app.NewMockConnector(ctrl), self,
		hello.WithLogger(logger),
		hello.WithProvider(mock_app.NewMockProvider(ctrl)))

	lines := entries(t, buf)
	require.Len(t, lines, 1, "construction should emit exactly one line")
	assert.Equal(t, "hello:a: Hello", lines[0]["msg"])
	assert.Equal(t, "info", lines[0]["level"])
}

func TestInitialize(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, ep := endpoint.New()

	prov := mock_app.NewMockProvider(ctrl)
	prov.EXPECT().
		NewEndpoint().
		Return(ep).
		Times(1)

	conn := mock_app.NewMockConnector(ctrl)
	conn.EXPECT().
		ConnectToApplication(target, ep).
		Times(1)

	logger, buf := newTestLogger()
	g := hello.New(conn, self,
		hello.WithLogger(logger),
		hello.WithProvider(prov))

	g.Initialize([]string{self, target})
	assert.Len(t, entries(t, buf), 1, "successful initialization should not log")
}

func TestInitializeUsageError(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		args []string
	}{
		{name: "Nil"},
		{name: "Empty", args: []string{}},
		{name: "One", args: []string{self}},
		{name: "Three", args: []string{self, target, "extra"}},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			// no expectations:  any call to the connector or
			// the provider fails the test.
			conn := mock_app.NewMockConnector(ctrl)
			prov := mock_app.NewMockProvider(ctrl)

			logger, buf := newTestLogger()
			g := hello.New(conn, self,
				hello.WithLogger(logger),
				hello.WithProvider(prov))

			g.Initialize(tt.args)

			lines := entries(t, buf)
			require.Len(t, lines, 2, "should emit exactly one usage error")
			assert.Equal(t, "error", lines[1]["level"])
			assert.Contains(t, lines[1]["msg"], "expected target locator")
		})
	}
}

func TestInitializeTwice(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, first := endpoint.New()
	_, second := endpoint.New()

	prov := mock_app.NewMockProvider(ctrl)
	gomock.InOrder(
		prov.EXPECT().NewEndpoint().Return(first),
		prov.EXPECT().NewEndpoint().Return(second))

	conn := mock_app.NewMockConnector(ctrl)
	gomock.InOrder(
		conn.EXPECT().ConnectToApplication(target, first),
		conn.EXPECT().ConnectToApplication("world:c", second))

	logger, buf := newTestLogger()
	g := hello.New(conn, self,
		hello.WithLogger(logger),
		hello.WithProvider(prov))

	g.Initialize([]string{self, target})
	g.Initialize([]string{self})
	g.Initialize([]string{self, "world:c"})

	assert.Len(t, entries(t, buf), 2,
		"each call should validate arguments independently")
}

func TestDefaultProvider(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var eps []app.Endpoint
	conn := mock_app.NewMockConnector(ctrl)
	conn.EXPECT().
		ConnectToApplication(target, gomock.Not(gomock.Nil())).
		Do(func(_ string, ep app.Endpoint) { eps = append(eps, ep) }).
		Times(2)

	logger, _ := newTestLogger()
	g := hello.New(conn, self, hello.WithLogger(logger))

	g.Initialize([]string{self, target})
	g.Initialize([]string{self, target})

	require.Len(t, eps, 2)
	assert.NotEqual(t, eps[0].ID(), eps[1].ID(), "endpoints should be fresh")

	for _, ep := range eps {
		assert.NoError(t, ep.Close())
	}
}

func TestAcceptConnection(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logger, buf := newTestLogger()
	g := hello.New(mock_app.NewMockConnector(ctrl), self,
		hello.WithLogger(logger),
		hello.WithProvider(mock_app.NewMockProvider(ctrl)))

	// no expectations:  the endpoint must not be touched
	ep := mock_app.NewMockEndpoint(ctrl)

	assert.NotPanics(t, func() {
		g.AcceptConnection("world:b", ep)
		g.AcceptConnection("", nil)
	})
	assert.Len(t, entries(t, buf), 1, "should not log")
}

func newTestLogger() (log.Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return log.New(
		log.WithLevel(log.InfoLevel),
		log.WithFormatter(&logrus.JSONFormatter{}),
		log.WithWriter(buf)), buf
}

func entries(t *testing.T, buf *bytes.Buffer) (es []map[string]interface{}) {
	t.Helper()

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}

		var e map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &e), "malformed log line")
		es = append(es, e)
	}

	return
}
