package app

import (
	"fmt"

	"github.com/dkeye/roomsignal/internal/core"
	"github.com/dkeye/roomsignal/internal/domain"
)

type BackpressureAction int

const (
	// DropFrame skips the slow member for this envelope only.
	DropFrame BackpressureAction = iota
	// KickMember closes the slow member's connection.
	KickMember
)

const (
	PolicyDrop = "drop"
	PolicyKick = "kick"
)

type Policy interface {
	OnBackPressure(room domain.RoomID, member core.Member) BackpressureAction
}

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.RoomID, core.Member) BackpressureAction {
	return DropFrame
}

type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.RoomID, core.Member) BackpressureAction {
	return KickMember
}

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(mode string) (Policy, error) {
	switch mode {
	case "", PolicyDrop:
		return DropPolicy{}, nil
	case PolicyKick:
		return KickPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown backpressure policy %q", mode)
}
