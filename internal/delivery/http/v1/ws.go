package v1

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mek0124/TrackMasterPro/internal/realtime"
)

// HandleWebSocket upgrades the connection and registers it for the
// user's notification stream.
//
// Browsers cannot set headers on websocket dials, so the bearer
// token arrives as a query parameter instead. The path user id must
// match the token's identity; an unverified caller-supplied id is
// not accepted.
func (h *handlerImpl) HandleWebSocket(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		abort(c, newBadRequestError("Invalid user id"))
		return
	}

	token := c.Query("token")
	if token == "" {
		abort(c, newUnauthorizedError("Not authenticated"))
		return
	}

	user, err := h.auth.VerifyToken(c, token)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to verify websocket token")
		abort(c, newUnauthorizedError("Could not validate credentials"))
		return
	}
	if user.ID != userID {
		abort(c, newForbiddenError("Not authorized to subscribe for this user"))
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		h.logger.Warn().
			Err(err).
			Msg("failed to upgrade websocket")
		return
	}

	conn := realtime.NewConn(h.logger, ws)
	h.registry.Register(userID, conn)
	defer func() {
		h.registry.Unregister(userID, conn)
		_ = conn.Close()
	}()

	conn.ReadLoop()
}
