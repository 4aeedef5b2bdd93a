package realtime

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Channel is a live connection to one display.
type Channel interface {
	// Send queues msg. It reports false when the channel is closed or cannot
	// accept more messages.
	Send(msg Message) bool
	// Close shuts the channel down. Safe to call more than once.
	Close()
}

// Registry maps a display id to at most one live channel. All methods are safe
// for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Channel)}
}

// Register makes ch the channel for displayID, replacing any previous one.
// The replaced channel is not notified; it just stops receiving traffic.
func (r *Registry) Register(displayID string, ch Channel) {
	r.mu.Lock()
	previous, replaced := r.channels[displayID]
	r.channels[displayID] = ch
	r.mu.Unlock()

	if replaced && previous != ch {
		log.Info().Str("display_id", displayID).Msg("display channel superseded by newer registration")
	}
}

// Unregister removes the entry for displayID only if it still points at ch, so a
// late close from a superseded channel cannot evict a newer registration.
func (r *Registry) Unregister(displayID string, ch Channel) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.channels[displayID]
	if !ok || current != ch {
		return false
	}
	delete(r.channels, displayID)
	return true
}

// Drop removes whatever channel is registered for displayID and closes it.
func (r *Registry) Drop(displayID string) {
	r.mu.Lock()
	ch, ok := r.channels[displayID]
	delete(r.channels, displayID)
	r.mu.Unlock()

	if ok {
		ch.Close()
		log.Info().Str("display_id", displayID).Msg("display channel dropped")
	}
}

// Lookup returns the channel registered for displayID.
func (r *Registry) Lookup(displayID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[displayID]
	return ch, ok
}

// Len returns the number of registered displays.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.channels)
}
