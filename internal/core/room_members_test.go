package core

import (
	"errors"
	"testing"

	"github.com/dkeye/roomsignal/internal/domain"
)

type stubConn struct {
	sent [][]byte
	err  error
}

func (s *stubConn) TrySend(f Frame) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, f)
	return nil
}

func (s *stubConn) Close() {}

func member(id string) Member {
	return Member{Peer: domain.Peer{ID: domain.ConnID(id), Email: id + "@x.com"}, Signal: &stubConn{}}
}

func ids(ms []Member) []domain.ConnID {
	out := make([]domain.ConnID, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Peer.ID)
	}
	return out
}

func TestRoomMembersOrder(t *testing.T) {
	r := NewRoomMembers("abc")
	if r.ID() != "abc" {
		t.Fatalf("id=%q", r.ID())
	}
	r.Add(member("a"))
	r.Add(member("b"))
	r.Add(member("c"))

	got := ids(r.Snapshot("b"))
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("snapshot=%v, want [a c]", got)
	}

	if !r.Remove("a") {
		t.Fatalf("remove a: want true")
	}
	if r.Remove("a") {
		t.Fatalf("second remove a: want false")
	}
	r.Add(member("a"))
	got = ids(r.Snapshot(""))
	if len(got) != 3 || got[0] != "b" || got[1] != "c" || got[2] != "a" {
		t.Fatalf("snapshot=%v, want [b c a]", got)
	}
}

func TestRoomMembersReAddKeepsPosition(t *testing.T) {
	r := NewRoomMembers("abc")
	r.Add(member("a"))
	r.Add(member("b"))

	renamed := member("a")
	renamed.Peer.Email = "new@x.com"
	r.Add(renamed)

	if r.Len() != 2 {
		t.Fatalf("len=%d, want 2", r.Len())
	}
	snap := r.Snapshot("")
	if snap[0].Peer.ID != "a" || snap[0].Peer.Email != "new@x.com" {
		t.Fatalf("first=%+v", snap[0].Peer)
	}
}

func TestFanout(t *testing.T) {
	ok := member("ok")
	slow := Member{Peer: domain.Peer{ID: "slow"}, Signal: &stubConn{err: errors.New("full")}}
	gone := Member{Peer: domain.Peer{ID: "gone"}}

	res := Fanout([]Member{ok, slow, gone}, Frame(`{"type":"pong"}`))
	if res.SendTo != 1 {
		t.Fatalf("sent=%d, want 1", res.SendTo)
	}
	if got := ids(res.Dropped); len(got) != 2 || got[0] != "slow" || got[1] != "gone" {
		t.Fatalf("dropped=%v", got)
	}
	if n := len(ok.Signal.(*stubConn).sent); n != 1 {
		t.Fatalf("ok received %d frames, want 1", n)
	}
}
