package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	security "conecta/tools/security"
)

func wsTestServer(t *testing.T) (*Server, *httptest.Server, security.Options) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	opts := security.DefaultOptions([]byte("ws-test-secret"))
	s := NewServer(Config{AllowAllOrigin: true, FanoutWorkers: 1},
		JWTAuthenticator{Opts: opts}, nil)

	r := gin.New()
	r.GET("/ws", s.HandleWS)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		srv.Close()
		s.Close()
	})
	return s, srv, opts
}

func wsDial(t *testing.T, srv *httptest.Server, opts security.Options, userID string) *websocket.Conn {
	t.Helper()
	token, _, err := security.Generate(opts, userID, "")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func wsSend(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func wsRead(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var f Frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestHandleWSRejectsBadToken(t *testing.T) {
	_, srv, _ := wsTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandleWSRejectsMissingToken(t *testing.T) {
	_, srv, _ := wsTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebsocketJoinTypingFlow(t *testing.T) {
	_, srv, opts := wsTestServer(t)

	alice := wsDial(t, srv, opts, "1")
	bob := wsDial(t, srv, opts, "2")

	wsSend(t, alice, `{"event":"join_conversation","data":{"conversationId":"42"}}`)
	f := wsRead(t, alice) // own online announce
	assert.Equal(t, EventUserStatusUpdate, f.Event)
	assert.Equal(t, "1", f.Data["userId"])
	assert.Equal(t, StatusOnline, f.Data["status"])

	wsSend(t, bob, `{"event":"join_conversation","data":{"conversationId":"42"}}`)
	f = wsRead(t, alice)
	assert.Equal(t, EventUserStatusUpdate, f.Event)
	assert.Equal(t, "2", f.Data["userId"])
	wsRead(t, bob) // bob's own announce

	wsSend(t, bob, `{"event":"typing","data":{"conversationId":"42","isTyping":true}}`)
	f = wsRead(t, alice)
	assert.Equal(t, EventTyping, f.Event)
	assert.Equal(t, "2", f.Data["userId"])
	assert.Equal(t, true, f.Data["isTyping"])
}

func TestWebsocketDisconnectAnnouncesOffline(t *testing.T) {
	s, srv, opts := wsTestServer(t)

	alice := wsDial(t, srv, opts, "1")
	bob := wsDial(t, srv, opts, "2")

	wsSend(t, alice, `{"event":"join_conversation","data":{"conversationId":"42"}}`)
	wsRead(t, alice)
	wsSend(t, bob, `{"event":"join_conversation","data":{"conversationId":"42"}}`)
	wsRead(t, alice)
	wsRead(t, bob)

	require.NoError(t, bob.Close())

	f := wsRead(t, alice)
	assert.Equal(t, EventUserStatusUpdate, f.Event)
	assert.Equal(t, "2", f.Data["userId"])
	assert.Equal(t, StatusOffline, f.Data["status"])

	// registry cleaned up behind the dead transport
	require.Eventually(t, func() bool {
		return len(s.reg.MembersOf("42")) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebsocketMalformedFrameIsDroppedNotFatal(t *testing.T) {
	_, srv, opts := wsTestServer(t)

	alice := wsDial(t, srv, opts, "1")
	wsSend(t, alice, `this is not json`)

	// the connection survives; a valid frame still works
	wsSend(t, alice, `{"event":"join_conversation","data":{"conversationId":"7"}}`)
	f := wsRead(t, alice)
	assert.Equal(t, EventUserStatusUpdate, f.Event)
}
