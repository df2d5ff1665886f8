package wire_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wetware/greet/pkg/wire"
)

func TestGreeting(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name   string
		packed bool
	}{
		{name: "Plain"},
		{name: "Packed", packed: true},
	} {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			enc := wire.NewEncoder(&buf, tt.packed)

			err := enc.Encode(wire.Greeting{From: "world:b", Text: "World"})
			require.NoError(t, err, "should encode first frame")

			err = enc.Encode(wire.Greeting{From: "world:b", Text: "again"})
			require.NoError(t, err, "should encode second frame")

			dec := wire.NewDecoder(&buf, tt.packed)

			g, err := dec.Decode()
			require.NoError(t, err, "should decode first frame")
			assert.Equal(t, "world:b", g.From)
			assert.Equal(t, "World", g.Text)
			assert.Equal(t, "world:b: World", g.String())

			g, err = dec.Decode()
			require.NoError(t, err, "should decode second frame")
			assert.Equal(t, "again", g.Text)

			_, err = dec.Decode()
			assert.True(t, errors.Is(err, io.EOF), "should report EOF, got %v", err)
		})
	}
}

func TestEmptyFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, wire.NewEncoder(&buf, false).Encode(wire.Greeting{}))

	g, err := wire.NewDecoder(&buf, false).Decode()
	require.NoError(t, err)
	assert.Zero(t, g, "empty greeting should round-trip")
}
