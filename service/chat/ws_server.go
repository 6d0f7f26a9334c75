package chat

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"conecta/logger"
	errs "conecta/tools/errs"
	ids "conecta/tools/ids"
	safe "conecta/tools/safe"
)

// newUpgrader leaves CheckOrigin nil unless AllowAllOrigin is set, so
// gorilla's same-origin default applies in production.
func newUpgrader(cfg Config) websocket.Upgrader {
	up := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
	if cfg.AllowAllOrigin {
		up.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return up
}

// HandleWS upgrades the request to a websocket session. The bearer
// credential is required at connect time; a missing or invalid token
// refuses the connection before any event is dispatched.
func (s *Server) HandleWS(c *gin.Context) {
	token := bearerToken(c)
	userID, err := s.auth.Verify(token)
	if err != nil {
		status := http.StatusUnauthorized
		codeErr, ok := err.(*errs.CodeError)
		if !ok {
			codeErr = errs.ErrTokenInvalid
		}
		c.AbortWithStatusJSON(status, codeErr)
		return
	}

	ws, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade failed: %v", err)
		return
	}

	client := NewClient(ids.GenerateString(), userID, ws, s.cfg.SendQueueSize)
	logger.Info("user connected", zapConn(client.ConnID, client.UserID)...)

	go client.writePump()
	s.readLoop(client, ws)
}

// readLoop reads and dispatches inbound frames until the transport
// fails or closes. Cleanup runs on every exit path, abrupt transport
// failure included: leave the room, announce offline, release the
// connection.
func (s *Server) readLoop(client *Client, ws *websocket.Conn) {
	defer func() {
		t := s.reg.Leave(client)
		s.presence.OnTransition(t)
		client.Close()
		logger.Info("user disconnected", zapConn(client.ConnID, client.UserID)...)
	}()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, raw, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] read err conn=%s: %v", client.ConnID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(raw)
		if perr != nil {
			sample := raw
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[ws] drop malformed frame conn=%s err=%v sample=%q", client.ConnID, perr, sample)
			continue
		}

		s.dispatchSafe(client, frame)
	}
}

// dispatchSafe isolates one connection's handler: a panic or error is
// logged and the event dropped, other connections are unaffected.
func (s *Server) dispatchSafe(client *Client, frame *Frame) {
	defer safe.Recover("ws.dispatch")
	if err := s.disp.Dispatch(client, frame); err != nil {
		logger.Warn("event dropped",
			append(zapConn(client.ConnID, client.UserID),
				zap.String("event", frame.Event), zap.Error(err))...)
	}
}

// bearerToken pulls the credential from the Authorization header or,
// for browser websocket clients that cannot set headers, the token
// query parameter.
func bearerToken(c *gin.Context) string {
	if authz := strings.TrimSpace(c.GetHeader("Authorization")); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return strings.TrimSpace(authz[len("bearer "):])
		}
		return authz
	}
	return strings.TrimSpace(c.Query("token"))
}
