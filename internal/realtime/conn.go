package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeTimeout = 10 * time.Second

// Conn adapts a gorilla websocket connection to the Sender
// interface. Gorilla connections allow only one concurrent writer,
// so every send goes through a mutex.
type Conn struct {
	logger zerolog.Logger

	mu sync.Mutex
	ws *websocket.Conn
}

func NewConn(logger zerolog.Logger, ws *websocket.Conn) *Conn {
	return &Conn{
		logger: logger,
		ws:     ws,
	}
}

func (c *Conn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err != nil {
		return err
	}
	return c.ws.WriteJSON(v)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}

// ReadLoop pumps inbound frames through the channel protocol until
// the peer goes away. It blocks for the lifetime of the connection.
func (c *Conn) ReadLoop() {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				c.logger.Debug().
					Err(err).
					Msg("websocket closed unexpectedly")
			}
			return
		}
		HandleInbound(c.logger, data, c)
	}
}
