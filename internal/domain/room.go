package domain

import (
	"errors"
	"strings"
)

const MaxRoomLen = 64

var (
	ErrRoomEmpty   = errors.New("room name empty")
	ErrRoomTooLong = errors.New("room name too long")
)

type RoomID string

// ParseRoomID trims surrounding whitespace, so " abc " and "abc" name the
// same room.
func ParseRoomID(raw string) (RoomID, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == 0 {
		return "", ErrRoomEmpty
	}
	if len(raw) > MaxRoomLen {
		return "", ErrRoomTooLong
	}
	return RoomID(raw), nil
}
