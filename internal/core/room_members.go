package core

import (
	"github.com/dkeye/roomsignal/internal/domain"
)

// RoomMembers is an insertion-ordered member set.
// Not safe for concurrent use; the owning directory serializes access.
// It never closes adapter-owned resources.
type RoomMembers struct {
	id    domain.RoomID
	order []domain.ConnID
	byID  map[domain.ConnID]Member
}

func NewRoomMembers(id domain.RoomID) *RoomMembers {
	return &RoomMembers{
		id:   id,
		byID: make(map[domain.ConnID]Member),
	}
}

func (r *RoomMembers) ID() domain.RoomID { return r.id }

func (r *RoomMembers) Len() int { return len(r.order) }

// Add inserts m at the tail. An existing member keeps its position and gets
// its metadata replaced.
func (r *RoomMembers) Add(m Member) {
	if _, ok := r.byID[m.Peer.ID]; !ok {
		r.order = append(r.order, m.Peer.ID)
	}
	r.byID[m.Peer.ID] = m
}

func (r *RoomMembers) Remove(id domain.ConnID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, cur := range r.order {
		if cur == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *RoomMembers) Get(id domain.ConnID) (Member, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// Snapshot copies members in join order, skipping except.
func (r *RoomMembers) Snapshot(except domain.ConnID) []Member {
	out := make([]Member, 0, len(r.order))
	for _, id := range r.order {
		if id == except {
			continue
		}
		out = append(out, r.byID[id])
	}
	return out
}
