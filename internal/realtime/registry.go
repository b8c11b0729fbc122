// Package realtime multiplexes websocket connections per user and
// fans notification payloads out to them.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sender is one outbound channel to a connected client. Send must
// be safe for concurrent use.
type Sender interface {
	Send(v any) error
	Close() error
}

// DeliveryResult reports the outcome of one fan-out send.
type DeliveryResult struct {
	Target Sender
	Err    error
}

const connectedMessage = "Connected to TrackMasterPro WebSocket server"

// Registry maps user IDs to their live connections. All methods are
// safe for concurrent use. State is purely in-memory: after a
// restart clients must reconnect.
type Registry struct {
	logger zerolog.Logger

	mu    sync.Mutex
	conns map[int64]map[Sender]struct{}
}

func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		logger: logger,
		conns:  make(map[int64]map[Sender]struct{}),
	}
}

// Register adds the connection to the user's set and acknowledges
// the open session on it.
func (r *Registry) Register(userID int64, s Sender) {
	r.mu.Lock()
	set, ok := r.conns[userID]
	if !ok {
		set = make(map[Sender]struct{})
		r.conns[userID] = set
	}
	set[s] = struct{}{}
	count := len(set)
	r.mu.Unlock()

	r.logger.Info().
		Int64("user_id", userID).
		Int("connections", count).
		Msg("registered connection")

	err := s.Send(Envelope{
		Type:    TypeConnectionEstablished,
		Message: connectedMessage,
	})
	if err != nil {
		// The read loop owns disconnect detection; a failed ack
		// will surface there.
		r.logger.Warn().
			Err(err).
			Int64("user_id", userID).
			Msg("failed to send connection ack")
	}
}

// Unregister removes the connection. It is a no-op if the
// connection is already gone, so calling it twice is safe.
func (r *Registry) Unregister(userID int64, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.conns[userID]
	if !ok {
		return
	}
	if _, ok = set[s]; !ok {
		return
	}

	delete(set, s)
	if len(set) == 0 {
		delete(r.conns, userID)
	}

	r.logger.Info().
		Int64("user_id", userID).
		Int("connections", len(set)).
		Msg("unregistered connection")
}

// Notify delivers payload to every live connection for the user and
// returns one result per connection. A failed send never prevents
// delivery to siblings; failed connections are unregistered after
// the fan-out.
func (r *Registry) Notify(userID int64, payload any) []DeliveryResult {
	r.mu.Lock()
	set := r.conns[userID]
	targets := make([]Sender, 0, len(set))
	for s := range set {
		targets = append(targets, s)
	}
	r.mu.Unlock()

	if len(targets) == 0 {
		return nil
	}

	results := make([]DeliveryResult, 0, len(targets))
	var failed []Sender
	for _, s := range targets {
		err := s.Send(payload)
		results = append(results, DeliveryResult{Target: s, Err: err})
		if err != nil {
			failed = append(failed, s)
		}
	}

	for _, s := range failed {
		r.logger.Warn().
			Int64("user_id", userID).
			Msg("dropping connection after failed delivery")
		r.Unregister(userID, s)
	}

	r.logger.Debug().
		Int64("user_id", userID).
		Int("delivered", len(targets)-len(failed)).
		Int("failed", len(failed)).
		Msg("fanned out notification")
	return results
}

// Connections reports how many live connections the user has.
func (r *Registry) Connections(userID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns[userID])
}
