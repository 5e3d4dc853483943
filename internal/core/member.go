package core

import "github.com/dkeye/roomsignal/internal/domain"

// Member binds a peer identity and its transport endpoint.
// This is what a room stores and fans out to.
type Member struct {
	Peer   domain.Peer
	Signal SignalConnection
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []Member
}

// Fanout offers data to every member and never waits on a slow one.
func Fanout(members []Member, data Frame) PublishResult {
	res := PublishResult{}
	for _, m := range members {
		if m.Signal == nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		if err := m.Signal.TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, m)
			continue
		}
		res.SendTo++
	}
	return res
}

type RoomInfo struct {
	Name        domain.RoomID `json:"name"`
	MemberCount int           `json:"client_count"`
}
