package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/signage/internal/auth"
	"github.com/Nixie-Tech-LLC/signage/internal/model"
)

const (
	writeWait           = 10 * time.Second
	pongWait            = 60 * time.Second
	pingPeriod          = 30 * time.Second
	registrationTimeout = 30 * time.Second
	maxMessageSize      = 4096
	sendQueueSize       = 16
)

const (
	msgInvalidCredentials  = "Invalid credentials - unauthorized"
	msgNotRegistered       = "Not authenticated - send register message first"
	msgInvalidFormat       = "Invalid message format"
	msgRegistrationTimeout = "Registration timed out"
)

// State is the lifecycle position of one display channel.
type State int32

const (
	StateConnecting State = iota
	StateAwaitingRegistration
	StateRegistered
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingRegistration:
		return "awaiting_registration"
	case StateRegistered:
		return "registered"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Authenticator resolves an access token to a display.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Display, error)
}

// Hub accepts display channels, authenticates their register message and
// records them in the registry.
type Hub struct {
	registry      *Registry
	authenticator Authenticator
	upgrader      websocket.Upgrader

	registrationTimeout time.Duration
	pingPeriod          time.Duration
	pongWait            time.Duration
}

type HubOption func(*Hub)

// WithTimings overrides registration timeout, ping period and pong wait.
func WithTimings(registration, ping, pong time.Duration) HubOption {
	return func(h *Hub) {
		h.registrationTimeout = registration
		h.pingPeriod = ping
		h.pongWait = pong
	}
}

func NewHub(registry *Registry, authenticator Authenticator, opts ...HubOption) *Hub {
	h := &Hub{
		registry:      registry,
		authenticator: authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Players are native apps, not browsers; origin carries no meaning here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		registrationTimeout: registrationTimeout,
		pingPeriod:          pingPeriod,
		pongWait:            pongWait,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Registry returns the registry this hub writes to.
func (h *Hub) Registry() *Registry { return h.registry }

// ServeWS upgrades the request and runs the channel until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	ch := newWSChannel(conn)
	s := &session{hub: h, ch: ch}
	s.state.Store(int32(StateConnecting))

	go ch.writePump(h.pingPeriod)
	s.run(r.Context())
}

// wsChannel is the Channel implementation over a gorilla connection. Only
// writePump writes to conn.
type wsChannel struct {
	conn      *websocket.Conn
	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
}

var _ Channel = (*wsChannel)(nil)

func newWSChannel(conn *websocket.Conn) *wsChannel {
	return &wsChannel{
		conn: conn,
		send: make(chan Message, sendQueueSize),
		done: make(chan struct{}),
	}
}

func (c *wsChannel) Send(msg Message) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		log.Warn().Str("type", string(msg.Type)).Msg("display channel send queue full, dropping message")
		return false
	}
}

func (c *wsChannel) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// writePump serialises all writes. After Close it flushes queued messages, sends
// a close frame and closes the connection, which also ends the read loop.
func (c *wsChannel) writePump(pingEvery time.Duration) {
	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			c.flush()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *wsChannel) flush() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *wsChannel) write(msg Message) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// session owns the state machine of one channel. Only run mutates displayID;
// state is atomic because the registration timer reads it.
type session struct {
	hub       *Hub
	ch        *wsChannel
	state     atomic.Int32
	displayID string
}

func (s *session) State() State { return State(s.state.Load()) }

func (s *session) run(ctx context.Context) {
	conn := s.ch.conn
	defer func() {
		s.state.Store(int32(StateClosed))
		if s.displayID != "" && s.hub.registry.Unregister(s.displayID, s.ch) {
			log.Info().Str("display_id", s.displayID).Msg("display channel disconnected")
		}
		s.ch.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.hub.pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.hub.pongWait))
		return nil
	})

	s.state.Store(int32(StateAwaitingRegistration))
	timer := time.AfterFunc(s.hub.registrationTimeout, func() { s.expireRegistration() })
	defer timer.Stop()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("display_id", s.displayID).Msg("display channel read error")
			}
			return
		}
		if !s.handle(ctx, raw) {
			return
		}
	}
}

// expireRegistration closes a channel that is still waiting for its register
// message. It loses to a concurrent successful register.
func (s *session) expireRegistration() bool {
	if !s.state.CompareAndSwap(int32(StateAwaitingRegistration), int32(StateClosed)) {
		return false
	}
	log.Debug().Msg("display channel registration timed out")
	s.ch.Send(errorMessage(msgRegistrationTimeout))
	s.ch.Close()
	return true
}

// handle applies one inbound frame and reports whether the channel stays open.
func (s *session) handle(ctx context.Context, raw []byte) bool {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.ch.Send(errorMessage(msgInvalidFormat))
		return true
	}

	isRegister := msg.Type == TypeRegister && msg.DisplayID != "" && msg.AccessToken != ""
	if !isRegister {
		if s.State() != StateRegistered {
			s.ch.Send(errorMessage(msgNotRegistered))
		}
		return true
	}

	display, err := s.hub.authenticator.Authenticate(ctx, msg.AccessToken)
	if err != nil || display.ID != msg.DisplayID {
		if err != nil && !errors.Is(err, auth.ErrUnauthenticated) {
			log.Error().Err(err).Msg("display channel authentication failed")
		}
		log.Warn().Str("claimed_display_id", msg.DisplayID).Msg("display channel rejected")
		s.ch.Send(errorMessage(msgInvalidCredentials))
		s.ch.Close()
		return false
	}

	// A first register races the registration timer; only one transition wins.
	if !s.state.CompareAndSwap(int32(StateAwaitingRegistration), int32(StateRegistered)) &&
		s.State() != StateRegistered {
		return false
	}

	if s.displayID != "" && s.displayID != display.ID {
		s.hub.registry.Unregister(s.displayID, s.ch)
	}
	s.displayID = display.ID
	s.hub.registry.Register(display.ID, s.ch)

	log.Info().Str("display_id", display.ID).Msg("display registered for live updates")
	s.ch.Send(Message{Type: TypeRegistered, DisplayID: display.ID})
	return true
}
