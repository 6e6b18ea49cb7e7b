package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var secret = []byte("hub-test-secret-0123456789abcdefghij")

func token(t *testing.T, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1", "role": role, "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestHub_PublishEnvelope(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t), nil)
	hub.Publish("stock_update", map[string]int{"Toner": 3})

	var msg struct {
		Event string         `json:"event"`
		Data  map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(<-hub.Broadcast, &msg))
	assert.Equal(t, "stock_update", msg.Event)
	assert.Equal(t, 3, msg.Data["Toner"])
}

func TestHub_PublishNeverBlocks(t *testing.T) {
	hub := NewHub(zaptest.NewLogger(t), nil)
	for i := 0; i < cap(hub.Broadcast)+10; i++ {
		hub.Publish("invoice_changed", i)
	}
	assert.Len(t, hub.Broadcast, cap(hub.Broadcast))
}

func newServer(t *testing.T) (*Hub, *httptest.Server) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(zaptest.NewLogger(t), []string{"http://allowed.test"})
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { hub.ServeWs(c, secret) })
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

func TestServeWs_DeliversEvents(t *testing.T) {
	hub, srv := newServer(t)

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL(srv, "?token="+token(t, "staff")), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("invoice_changed", map[string]string{"invoice_no": "INV-20250310-001"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"invoice_changed","data":{"invoice_no":"INV-20250310-001"}}`, string(raw))
}

func TestServeWs_Rejections(t *testing.T) {
	_, srv := newServer(t)

	tests := []struct {
		name   string
		query  string
		header http.Header
		status int
	}{
		{name: "missing token", status: http.StatusUnauthorized},
		{name: "garbage token", query: "?token=abc", status: http.StatusUnauthorized},
		{name: "unknown role", query: "?token=" + token(t, "admin"), status: http.StatusForbidden},
		{name: "foreign origin", query: "?token=" + token(t, "manager"), header: http.Header{"Origin": {"http://evil.test"}}, status: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := gorillaws.DefaultDialer.Dial(wsURL(srv, tt.query), tt.header)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHub_StopsCleanly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zaptest.NewLogger(t), nil)
	go hub.Run(ctx)

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) { hub.ServeWs(c, secret) })
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL(srv, "?token="+token(t, "staff")), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)

	left := make(chan struct{})
	go func() {
		hub.leave(&Client{Hub: hub})
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
	assert.False(t, hub.join(&Client{Hub: hub}))

	_, resp, err := gorillaws.DefaultDialer.Dial(wsURL(srv, "?token="+token(t, "staff")), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
