package app

import (
	"sort"
	"sync"

	"github.com/dkeye/roomsignal/internal/core"
	"github.com/dkeye/roomsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinResult describes one atomic room switch.
type JoinResult struct {
	// Others are the target room's members before the join, in join order.
	Others []core.Member
	// Left is the room the connection was moved out of, if any.
	Left domain.RoomID
	// Remaining are the members still in Left.
	Remaining []core.Member
}

type LeaveResult struct {
	Room      domain.RoomID
	Remaining []core.Member
}

// Directory maps room names to member sets. A connection belongs to at most
// one room; empty rooms are deleted immediately.
//
// Every method runs under one mutex and returns copies. Join and Leave take an
// optional notify hook that runs before the mutex is released; presence frames
// queued there reach each peer in directory order. notify must not call back
// into the Directory.
type Directory struct {
	mu       sync.Mutex
	rooms    map[domain.RoomID]*core.RoomMembers
	memberOf map[domain.ConnID]domain.RoomID
}

func NewDirectory() *Directory {
	return &Directory{
		rooms:    make(map[domain.RoomID]*core.RoomMembers),
		memberOf: make(map[domain.ConnID]domain.RoomID),
	}
}

func (d *Directory) Join(m core.Member, room domain.RoomID, notify func(JoinResult)) JoinResult {
	id := m.Peer.ID
	d.mu.Lock()
	defer d.mu.Unlock()

	res := JoinResult{}
	if prev, ok := d.memberOf[id]; ok && prev != room {
		res.Left = prev
		res.Remaining = d.removeLocked(id, prev)
	}

	r, ok := d.rooms[room]
	if !ok {
		r = core.NewRoomMembers(room)
		d.rooms[room] = r
		log.Debug().Str("module", "app.directory").Str("room", string(room)).Msg("room created")
	}
	res.Others = r.Snapshot(id)
	r.Add(m)
	d.memberOf[id] = room
	log.Info().Str("module", "app.directory").Str("sid", string(id)).Str("room", string(r.ID())).Int("members", r.Len()).Msg("joined")
	if notify != nil {
		notify(res)
	}
	return res
}

// Leave is a no-op for connections outside any room.
func (d *Directory) Leave(id domain.ConnID, notify func(LeaveResult)) (LeaveResult, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.memberOf[id]
	if !ok {
		return LeaveResult{}, false
	}
	res := LeaveResult{Room: room, Remaining: d.removeLocked(id, room)}
	if notify != nil {
		notify(res)
	}
	return res, true
}

func (d *Directory) removeLocked(id domain.ConnID, room domain.RoomID) []core.Member {
	delete(d.memberOf, id)
	r, ok := d.rooms[room]
	if !ok {
		return nil
	}
	r.Remove(id)
	log.Info().Str("module", "app.directory").Str("sid", string(id)).Str("room", string(r.ID())).Int("members", r.Len()).Msg("left")
	if r.Len() == 0 {
		delete(d.rooms, room)
		log.Debug().Str("module", "app.directory").Str("room", string(r.ID())).Msg("room deleted")
		return nil
	}
	return r.Snapshot("")
}

// Members returns nil for rooms that do not exist.
func (d *Directory) Members(room domain.RoomID) []core.Member {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rooms[room]
	if !ok {
		return nil
	}
	return r.Snapshot("")
}

func (d *Directory) RoomOf(id domain.ConnID) (domain.RoomID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.memberOf[id]
	return room, ok
}

// Target finds `to` inside the room `from` currently belongs to. The room is
// empty when `from` is not in any room.
func (d *Directory) Target(from, to domain.ConnID) (domain.RoomID, core.Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, ok := d.memberOf[from]
	if !ok {
		return "", core.Member{}, false
	}
	r, ok := d.rooms[room]
	if !ok {
		return room, core.Member{}, false
	}
	m, ok := r.Get(to)
	return room, m, ok
}

// Rooms lists rooms sorted by name.
func (d *Directory) Rooms() []core.RoomInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]core.RoomInfo, 0, len(d.rooms))
	for name, r := range d.rooms {
		out = append(out, core.RoomInfo{Name: name, MemberCount: r.Len()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
