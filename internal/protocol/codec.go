package protocol

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/pion/sdp/v3"
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/roomsignal/internal/core"
)

var (
	ErrMalformed   = errors.New("malformed envelope")
	ErrUnknownType = errors.New("unknown envelope type")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Decoder turns raw frames into Inbound variants.
type Decoder struct {
	// StrictSDP additionally parses offer/answer bodies.
	StrictSDP bool
}

// Decode uses a non-strict Decoder.
func Decode(data []byte) (Inbound, error) {
	return Decoder{}.Decode(data)
}

func (d Decoder) Decode(data []byte) (Inbound, error) {
	var env struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	var msg Inbound
	switch env.Type {
	case TypeJoinRoom:
		msg = &JoinRoom{}
	case TypeUserCall:
		msg = &UserCall{}
	case TypeCallAccepted:
		msg = &CallAccepted{}
	case TypeICECandidate:
		msg = &ICECandidate{}
	case TypePing:
		return &Ping{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, env.Type, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, env.Type, err)
	}
	if err := d.check(msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, env.Type, err)
	}
	return msg, nil
}

func (d Decoder) check(msg Inbound) error {
	switch m := msg.(type) {
	case *UserCall:
		return d.checkDescription(m.Offer, webrtc.SDPTypeOffer)
	case *CallAccepted:
		return d.checkDescription(m.Ans, webrtc.SDPTypeAnswer)
	}
	return nil
}

func (d Decoder) checkDescription(desc *webrtc.SessionDescription, want webrtc.SDPType) error {
	if desc.Type != want {
		return fmt.Errorf("session description type %q, want %q", desc.Type, want)
	}
	if desc.SDP == "" {
		return errors.New("empty sdp")
	}
	if !d.StrictSDP {
		return nil
	}
	var parsed sdp.SessionDescription
	if err := parsed.Unmarshal([]byte(desc.SDP)); err != nil {
		return fmt.Errorf("parse sdp: %w", err)
	}
	return nil
}

// Encode marshals an outbound envelope.
func Encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return core.Frame(b), nil
}
