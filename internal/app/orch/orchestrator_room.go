package orch

import (
	"github.com/dkeye/roomsignal/internal/app"
	"github.com/dkeye/roomsignal/internal/core"
	"github.com/dkeye/roomsignal/internal/domain"
	"github.com/dkeye/roomsignal/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Join moves sid into the requested room, leaving its previous one first.
func (o *Orchestrator) Join(sid domain.ConnID, p *protocol.JoinRoom) {
	ch, ok := o.Registry.Get(sid)
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Msg("join from unknown connection")
		return
	}
	if !o.Limiter.Allow(sid) {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("join rate limited")
		return
	}
	peer, err := domain.NewPeer(sid, p.Email)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad join payload")
		return
	}
	room, err := domain.ParseRoomID(p.Room)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad join payload")
		return
	}

	me := core.Member{Peer: *peer, Signal: ch}
	// Presence is queued under the directory lock so every peer sees joins
	// and leaves in the order the directory applied them.
	o.Rooms.Join(me, room, func(res app.JoinResult) {
		if res.Left != "" {
			log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(res.Left)).Msg("switched room")
			o.announceLeave(res.Left, sid, res.Remaining)
		}
		o.announceJoin(room, me, res.Others)
	})
}

// relay unicasts v to `to` if it shares the sender's room.
func (o *Orchestrator) relay(sid, to domain.ConnID, kind protocol.Type, v any) {
	room, target, ok := o.Rooms.Target(sid, to)
	if room == "" {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("type", string(kind)).Msg("signal outside a room dropped")
		return
	}
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sid)).Str("to", string(to)).Str("type", string(kind)).Msg("signal target not in room")
		return
	}
	frame, err := protocol.Encode(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", string(kind)).Msg("encode signal")
		return
	}
	o.deliver(room, []core.Member{target}, frame)
}
