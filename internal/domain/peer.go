// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxEmailLen = 254
)

var (
	ErrEmailTooLong = errors.New("email too long")
	ErrEmailEmpty   = errors.New("email empty")
)

// ConnID addresses one live connection. Peers use it as `socketId`.
type ConnID string

// NewConnID returns a random 128-bit identifier.
func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}

// Peer is what other room members learn about a connection.
type Peer struct {
	ID    ConnID `json:"socketId"`
	Email string `json:"email"`
}

func NewPeer(id ConnID, email string) (*Peer, error) {
	if err := checkEmail(email); err != nil {
		return nil, err
	}
	return &Peer{ID: id, Email: email}, nil
}

func checkEmail(email string) error {
	if len(email) == 0 {
		return ErrEmailEmpty
	}
	if len(email) > MaxEmailLen {
		return ErrEmailTooLong
	}
	return nil
}
