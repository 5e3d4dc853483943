// Package protocol is the wire format of the signaling channel: one JSON
// object per websocket message, tagged by its "type" field.
package protocol

import (
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/roomsignal/internal/domain"
)

type Type string

// Client to server.
const (
	TypeJoinRoom     Type = "join-room"
	TypeUserCall     Type = "user:call"
	TypeCallAccepted Type = "call:accepted"
	TypeICECandidate Type = "ice-candidate"
	TypePing         Type = "ping"
)

// Server to client. call:accepted and ice-candidate keep their inbound names.
const (
	TypeUserJoined   Type = "user:joined"
	TypeRoomJoin     Type = "room:join"
	TypeIncomingCall Type = "incoming:call"
	TypeUserLeft     Type = "user:left"
	TypePong         Type = "pong"
)

// Inbound is one decoded client envelope. The set of implementations is
// closed: JoinRoom, UserCall, CallAccepted, ICECandidate and Ping.
type Inbound interface {
	Kind() Type
	inbound()
}

type JoinRoom struct {
	Email string `json:"email" validate:"required"`
	Room  string `json:"room" validate:"required"`
}

type UserCall struct {
	To    domain.ConnID              `json:"to" validate:"required"`
	Offer *webrtc.SessionDescription `json:"offer" validate:"required"`
}

type CallAccepted struct {
	To  domain.ConnID              `json:"to" validate:"required"`
	Ans *webrtc.SessionDescription `json:"ans" validate:"required"`
}

type ICECandidate struct {
	To        domain.ConnID            `json:"to" validate:"required"`
	Candidate *webrtc.ICECandidateInit `json:"candidate" validate:"required"`
}

type Ping struct{}

func (*JoinRoom) Kind() Type     { return TypeJoinRoom }
func (*UserCall) Kind() Type     { return TypeUserCall }
func (*CallAccepted) Kind() Type { return TypeCallAccepted }
func (*ICECandidate) Kind() Type { return TypeICECandidate }
func (*Ping) Kind() Type         { return TypePing }

func (*JoinRoom) inbound()     {}
func (*UserCall) inbound()     {}
func (*CallAccepted) inbound() {}
func (*ICECandidate) inbound() {}
func (*Ping) inbound()         {}

// UserJoined tells existing members about a newcomer.
type UserJoined struct {
	Type     Type          `json:"type"`
	Email    string        `json:"email"`
	SocketID domain.ConnID `json:"socketId"`
}

// RoomJoin is the roster handed to a newcomer.
type RoomJoin struct {
	Type  Type          `json:"type"`
	Room  domain.RoomID `json:"room"`
	Users []domain.Peer `json:"users"`
}

type IncomingCall struct {
	Type  Type                       `json:"type"`
	From  domain.ConnID              `json:"from"`
	Offer *webrtc.SessionDescription `json:"offer"`
}

type CallAcceptedOut struct {
	Type Type                       `json:"type"`
	From domain.ConnID              `json:"from"`
	Ans  *webrtc.SessionDescription `json:"ans"`
}

type ICECandidateOut struct {
	Type      Type                     `json:"type"`
	From      domain.ConnID            `json:"from"`
	Candidate *webrtc.ICECandidateInit `json:"candidate"`
}

type UserLeft struct {
	Type     Type          `json:"type"`
	SocketID domain.ConnID `json:"socketId"`
}

type Pong struct {
	Type Type `json:"type"`
}

func NewUserJoined(p domain.Peer) UserJoined {
	return UserJoined{Type: TypeUserJoined, Email: p.Email, SocketID: p.ID}
}

func NewRoomJoin(room domain.RoomID, users []domain.Peer) RoomJoin {
	if users == nil {
		users = []domain.Peer{}
	}
	return RoomJoin{Type: TypeRoomJoin, Room: room, Users: users}
}

func NewIncomingCall(from domain.ConnID, offer *webrtc.SessionDescription) IncomingCall {
	return IncomingCall{Type: TypeIncomingCall, From: from, Offer: offer}
}

func NewCallAccepted(from domain.ConnID, ans *webrtc.SessionDescription) CallAcceptedOut {
	return CallAcceptedOut{Type: TypeCallAccepted, From: from, Ans: ans}
}

func NewICECandidate(from domain.ConnID, c *webrtc.ICECandidateInit) ICECandidateOut {
	return ICECandidateOut{Type: TypeICECandidate, From: from, Candidate: c}
}

func NewUserLeft(id domain.ConnID) UserLeft {
	return UserLeft{Type: TypeUserLeft, SocketID: id}
}

func NewPong() Pong { return Pong{Type: TypePong} }
