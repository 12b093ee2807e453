package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/protocol"
)

// echoServer upgrades and echoes every frame back to the client.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(messageType, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSource(t *testing.T) {
	t.Run("Source: round trip through a live connection", func(t *testing.T) {
		server := echoServer(t)

		source, err := Dial(context.Background(), DefaultConfig(wsURL(server)), log.Provide())
		require.NoError(t, err)
		defer source.Close()

		env, err := protocol.NewEnvelope(protocol.TypePing, protocol.Ping{SentAt: 1234})
		require.NoError(t, err)
		require.NoError(t, source.Send(env))

		select {
		case received := <-source.Receive():
			require.Equal(t, protocol.TypePing, received.Type)
			var msg protocol.Ping
			require.NoError(t, received.Decode(&msg))
			require.Equal(t, int64(1234), msg.SentAt)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for echoed envelope")
		}
	})

	t.Run("Source: send after close fails", func(t *testing.T) {
		server := echoServer(t)

		source, err := Dial(context.Background(), DefaultConfig(wsURL(server)), log.Provide())
		require.NoError(t, err)
		require.NoError(t, source.Close())

		env, err := protocol.NewEnvelope(protocol.TypePing, protocol.Ping{SentAt: 1})
		require.NoError(t, err)
		require.ErrorIs(t, source.Send(env), protocol.ErrSourceClosed)

		// Close is idempotent.
		require.NoError(t, source.Close())
	})

	t.Run("Source: dial failure surfaces", func(t *testing.T) {
		cfg := DefaultConfig("ws://127.0.0.1:1")
		cfg.DialTimeout = time.Second
		_, err := Dial(context.Background(), cfg, log.Provide())
		require.Error(t, err)
	})
}
