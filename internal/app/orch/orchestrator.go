package orch

import (
	"errors"

	"github.com/dkeye/roomsignal/internal/app"
	"github.com/dkeye/roomsignal/internal/core"
	"github.com/dkeye/roomsignal/internal/domain"
	"github.com/dkeye/roomsignal/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Orchestrator is the single entry point for inbound envelopes. It owns no
// state of its own: connections live in Registry and room membership in
// Rooms, and every directory mutation goes through Rooms' lock.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.Directory
	Policy   app.Policy
	Limiter  *app.JoinLimiter
	Decoder  protocol.Decoder
}

// Connect registers a freshly accepted transport endpoint.
func (o *Orchestrator) Connect(ch core.SignalConnection) domain.ConnID {
	return o.Registry.Register(ch)
}

// Dispatch handles one raw envelope from sid. Bad input is logged and
// dropped; nothing is reported back to the sender.
func (o *Orchestrator) Dispatch(sid domain.ConnID, data []byte) {
	msg, err := o.Decoder.Decode(data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownType) {
			log.Warn().Str("module", "orch").Str("sid", string(sid)).Err(err).Msg("unknown signal")
			return
		}
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Err(err).Msg("bad envelope")
		return
	}

	switch m := msg.(type) {
	case *protocol.JoinRoom:
		o.Join(sid, m)
	case *protocol.UserCall:
		o.relay(sid, m.To, m.Kind(), protocol.NewIncomingCall(sid, m.Offer))
	case *protocol.CallAccepted:
		o.relay(sid, m.To, m.Kind(), protocol.NewCallAccepted(sid, m.Ans))
	case *protocol.ICECandidate:
		o.relay(sid, m.To, m.Kind(), protocol.NewICECandidate(sid, m.Candidate))
	case *protocol.Ping:
		o.reply(sid, protocol.NewPong())
	}
}

// Disconnect runs leave cleanup and forgets the connection. Safe to call
// more than once.
func (o *Orchestrator) Disconnect(sid domain.ConnID) {
	o.Rooms.Leave(sid, func(res app.LeaveResult) {
		o.announceLeave(res.Room, sid, res.Remaining)
	})
	o.Limiter.Forget(sid)
	if o.Registry.Unregister(sid) {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("disconnected")
	}
}

// RoomPeers lists a room's members in join order.
func (o *Orchestrator) RoomPeers(room domain.RoomID) ([]domain.Peer, bool) {
	members := o.Rooms.Members(room)
	if members == nil {
		return nil, false
	}
	return peersOf(members), true
}

func (o *Orchestrator) reply(sid domain.ConnID, v any) {
	ch, ok := o.Registry.Get(sid)
	if !ok {
		return
	}
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("encode reply")
		return
	}
	_ = ch.TrySend(frame)
}

// deliver fans frame out and applies the backpressure policy to members
// that could not take it.
func (o *Orchestrator) deliver(room domain.RoomID, to []core.Member, frame core.Frame) {
	if len(to) == 0 {
		return
	}
	res := core.Fanout(to, frame)
	for _, slow := range res.Dropped {
		action := app.DropFrame
		if o.Policy != nil {
			action = o.Policy.OnBackPressure(room, slow)
		}
		switch action {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow.Peer.ID)).Str("room", string(room)).Msg("kicking slow member")
			if slow.Signal != nil {
				slow.Signal.Close()
			}
		case app.DropFrame:
			log.Debug().Str("module", "orch").Str("sid", string(slow.Peer.ID)).Str("room", string(room)).Msg("dropped frame for slow member")
		}
	}
}

func peersOf(members []core.Member) []domain.Peer {
	out := make([]domain.Peer, 0, len(members))
	for _, m := range members {
		out = append(out, m.Peer)
	}
	return out
}
