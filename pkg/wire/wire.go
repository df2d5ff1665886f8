// Package wire encodes greeting frames exchanged over an endpoint.
//
// A frame is a Cap'n Proto message whose root is a struct with two text
// pointers:  the sender's locator and the greeting text.
package wire

import (
	"io"

	"capnproto.org/go/capnp/v3"
)

var greetingSize = capnp.ObjectSize{DataSize: 0, PointerCount: 2}

// Greeting is sent by an application to the peer of a connection.
type Greeting struct {
	From string
	Text string
}

func (g Greeting) String() string {
	return g.From + ": " + g.Text
}

func (g Greeting) Loggable() map[string]interface{} {
	return map[string]interface{}{
		"from": g.From,
		"text": g.Text,
	}
}

// Encoder writes greeting frames to a stream.
type Encoder struct{ enc *capnp.Encoder }

// NewEncoder returns an encoder that writes to w.  If packed is true,
// frames are written using the Cap'n Proto packing scheme.
func NewEncoder(w io.Writer, packed bool) Encoder {
	if packed {
		return Encoder{enc: capnp.NewPackedEncoder(w)}
	}

	return Encoder{enc: capnp.NewEncoder(w)}
}

func (e Encoder) Encode(g Greeting) error {
	msg, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return err
	}

	root, err := capnp.NewRootStruct(seg, greetingSize)
	if err != nil {
		return err
	}

	if err = root.SetText(0, g.From); err != nil {
		return err
	}

	if err = root.SetText(1, g.Text); err != nil {
		return err
	}

	return e.enc.Encode(msg)
}

// Decoder reads greeting frames from a stream.
type Decoder struct{ dec *capnp.Decoder }

// NewDecoder returns a decoder that reads from r.  The packed flag MUST
// match the one used by the remote encoder.
func NewDecoder(r io.Reader, packed bool) Decoder {
	if packed {
		return Decoder{dec: capnp.NewPackedDecoder(r)}
	}

	return Decoder{dec: capnp.NewDecoder(r)}
}

// Decode the next frame.  It returns io.EOF when the stream ends on a
// frame boundary.
func (d Decoder) Decode() (g Greeting, err error) {
	msg, err := d.dec.Decode()
	if err != nil {
		return
	}

	root, err := msg.Root()
	if err != nil {
		return
	}

	st := root.Struct()

	if g.From, err = text(st, 0); err == nil {
		g.Text, err = text(st, 1)
	}

	return
}

func text(st capnp.Struct, i uint16) (string, error) {
	p, err := st.Ptr(i)
	return p.Text(), err
}
