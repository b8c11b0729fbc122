package realtime

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

const (
	TypeConnectionEstablished = "connection_established"
	TypePing                  = "ping"
	TypePong                  = "pong"
	TypeError                 = "error"

	TypeTaskCreated = "task_created"
	TypeTaskUpdated = "task_updated"
	TypeTaskDeleted = "task_deleted"
)

// Envelope is the frame format both directions of the channel use.
type Envelope struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
}

// HandleInbound processes one text frame from a client. Frames that
// don't parse as JSON get an error reply; pings get a pong; every
// other type is ignored so newer clients stay compatible.
func HandleInbound(logger zerolog.Logger, data []byte, reply Sender) {
	var msg Envelope
	err := json.Unmarshal(data, &msg)
	if err != nil {
		logger.Debug().
			Err(err).
			Msg("received malformed frame")
		_ = reply.Send(Envelope{
			Type:    TypeError,
			Message: "Invalid JSON format",
		})
		return
	}

	switch msg.Type {
	case TypePing:
		_ = reply.Send(Envelope{Type: TypePong})
	default:
		logger.Debug().
			Str("type", msg.Type).
			Msg("ignoring unknown frame type")
	}
}
