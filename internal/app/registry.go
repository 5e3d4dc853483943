package app

import (
	"sync"

	"github.com/dkeye/roomsignal/internal/core"
	"github.com/dkeye/roomsignal/internal/domain"
	"github.com/rs/zerolog/log"
)

// Registry binds live connection ids to their transport endpoints.
// It knows nothing about rooms.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]core.SignalConnection
	newID func() domain.ConnID
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnID]core.SignalConnection),
		newID: domain.NewConnID,
	}
}

// Register allocates a fresh id for ch.
func (r *Registry) Register(ch core.SignalConnection) domain.ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.newID()
	for {
		if _, taken := r.conns[id]; !taken {
			break
		}
		id = r.newID()
	}
	r.conns[id] = ch
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("registered connection")
	return id
}

// Unregister is idempotent and reports whether a binding was removed.
func (r *Registry) Unregister(id domain.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return false
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("unregistered connection")
	return true
}

func (r *Registry) Get(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.conns[id]
	return ch, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
