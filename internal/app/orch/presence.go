package orch

import (
	"github.com/dkeye/roomsignal/internal/core"
	"github.com/dkeye/roomsignal/internal/domain"
	"github.com/dkeye/roomsignal/internal/protocol"
	"github.com/rs/zerolog/log"
)

// announceJoin sends user:joined to the members already present, then the
// room:join roster to the newcomer.
func (o *Orchestrator) announceJoin(room domain.RoomID, joiner core.Member, others []core.Member) {
	joined, err := protocol.Encode(protocol.NewUserJoined(joiner.Peer))
	if err != nil {
		log.Error().Err(err).Str("module", "orch.presence").Msg("encode user:joined")
		return
	}
	o.deliver(room, others, joined)

	roster, err := protocol.Encode(protocol.NewRoomJoin(room, peersOf(others)))
	if err != nil {
		log.Error().Err(err).Str("module", "orch.presence").Msg("encode room:join")
		return
	}
	o.deliver(room, []core.Member{joiner}, roster)
	log.Debug().Str("module", "orch.presence").Str("sid", string(joiner.Peer.ID)).Str("room", string(room)).Int("notified", len(others)).Msg("announced join")
}

// announceLeave tells the remaining members that id is gone.
func (o *Orchestrator) announceLeave(room domain.RoomID, id domain.ConnID, remaining []core.Member) {
	if len(remaining) == 0 {
		return
	}
	left, err := protocol.Encode(protocol.NewUserLeft(id))
	if err != nil {
		log.Error().Err(err).Str("module", "orch.presence").Msg("encode user:left")
		return
	}
	o.deliver(room, remaining, left)
	log.Debug().Str("module", "orch.presence").Str("sid", string(id)).Str("room", string(room)).Int("notified", len(remaining)).Msg("announced leave")
}
