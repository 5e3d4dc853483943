package app

import (
	"github.com/dkeye/roomsignal/internal/core"
	"github.com/dkeye/roomsignal/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func mem(id string) core.Member {
	return core.Member{
		Peer:   domain.Peer{ID: domain.ConnID(id), Email: id + "@x.com"},
		Signal: nopConn{},
	}
}

func peerIDs(ms []core.Member) []domain.ConnID {
	out := make([]domain.ConnID, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Peer.ID)
	}
	return out
}
