package realtime

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Mirror is an additional, best-effort delivery path for refresh events.
type Mirror interface {
	PublishRefresh(ctx context.Context, displayID string, payload []byte) error
}

// Dispatcher pushes refresh events to displays. Delivery is best effort: an
// absent or closed channel is not an error and nothing is queued or retried,
// since displays poll on their own as a fallback.
type Dispatcher struct {
	registry *Registry
	mirrors  []Mirror
}

func NewDispatcher(registry *Registry, mirrors ...Mirror) *Dispatcher {
	return &Dispatcher{registry: registry, mirrors: mirrors}
}

// NotifyRefresh tells displayID to reload its content. It reports whether the
// event reached the display's live channel. Mirrors publish whether or not the
// display holds a channel here: an MQTT subscriber never registers on /ws.
func (d *Dispatcher) NotifyRefresh(ctx context.Context, displayID string) bool {
	msg := refreshMessage(displayID)

	delivered := false
	if ch, ok := d.registry.Lookup(displayID); ok {
		delivered = ch.Send(msg)
	}

	if len(d.mirrors) > 0 {
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Error().Err(err).Msg("failed to encode refresh event")
			return delivered
		}
		for _, m := range d.mirrors {
			if err := m.PublishRefresh(ctx, displayID, payload); err != nil {
				log.Warn().Err(err).Str("display_id", displayID).Msg("refresh mirror publish failed")
			}
		}
	}

	log.Debug().Str("display_id", displayID).Bool("delivered", delivered).Msg("refresh dispatched")
	return delivered
}
