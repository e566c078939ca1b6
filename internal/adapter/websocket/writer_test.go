package websocket

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/piezorelay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConnPair(t *testing.T) (server *ws.Conn, client *ws.Conn) {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	ready := make(chan *ws.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		ready <- conn
	}))
	t.Cleanup(func() { srv.Close() })

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn := <-ready
	t.Cleanup(func() { serverConn.Close() })
	return serverConn, clientConn
}

func testWriterConfig() WriterConfig {
	return WriterConfig{
		BufferSize:   16,
		WriteTimeout: 5 * time.Second,
		PingInterval: 30 * time.Second,
		PongTimeout:  60 * time.Second,
	}
}

func readText(t *testing.T, conn *ws.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	msgType, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, ws.TextMessage, msgType)
	return string(msg)
}

func TestClientWriter_WritesFramesInOrder(t *testing.T) {
	server, client := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock(), testWriterConfig(), nil)
	t.Cleanup(func() { cw.Close("") })

	require.NoError(t, cw.Send([]byte(`{"n":1}`)))
	require.NoError(t, cw.Send([]byte(`{"n":2}`)))
	require.NoError(t, cw.Send([]byte(`{"n":3}`)))

	assert.Equal(t, `{"n":1}`, readText(t, client))
	assert.Equal(t, `{"n":2}`, readText(t, client))
	assert.Equal(t, `{"n":3}`, readText(t, client))
}

func TestClientWriter_FullQueueFailsFast(t *testing.T) {
	// No run goroutine drains this writer, so the queue fills up.
	cw := &clientWriter{
		sendChannel: make(chan []byte, 2),
		doneChannel: make(chan struct{}),
		exited:      make(chan struct{}),
	}

	require.NoError(t, cw.Send([]byte("a")))
	require.NoError(t, cw.Send([]byte("b")))

	start := time.Now()
	err := cw.Send([]byte("c"))
	assert.ErrorIs(t, err, domain.ErrSendQueueFull)
	assert.ErrorIs(t, err, domain.ErrSubscriberUnreachable)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestClientWriter_SendAfterCloseFails(t *testing.T) {
	server, _ := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock(), testWriterConfig(), nil)

	cw.Close("")

	assert.ErrorIs(t, cw.Send([]byte(`{}`)), domain.ErrSubscriberClosed)
}

func TestClientWriter_CloseIdempotent(t *testing.T) {
	server, _ := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock(), testWriterConfig(), nil)

	assert.NotPanics(t, func() {
		cw.Close("")
		cw.Close("")
		cw.Close("Server shutting down")
	})
}

func TestClientWriter_WriteFailureMakesSubscriberUnreachable(t *testing.T) {
	server, _ := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock(), testWriterConfig(), nil)
	t.Cleanup(func() { cw.Close("") })

	// Break the socket underneath the writer.
	_ = server.Close()

	assert.Eventually(t, func() bool {
		return errors.Is(cw.Send([]byte(`{}`)), domain.ErrSubscriberClosed)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClientWriter_GracefulCloseSendsReason(t *testing.T) {
	server, client := newTestConnPair(t)
	cw := newClientWriter(server, clockwork.NewRealClock(), testWriterConfig(), nil)

	require.NoError(t, cw.Send([]byte(`{"n":1}`)))
	assert.Equal(t, `{"n":1}`, readText(t, client))

	cw.Close("Server shutting down")

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := client.ReadMessage()

	var closeErr *ws.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, ws.CloseNormalClosure, closeErr.Code)
	assert.Equal(t, "Server shutting down", closeErr.Text)
}

func TestClientWriter_PingsOnInterval(t *testing.T) {
	fakeClock := clockwork.NewFakeClock()
	server, client := newTestConnPair(t)

	pinged := make(chan struct{}, 1)
	client.SetPingHandler(func(string) error {
		select {
		case pinged <- struct{}{}:
		default:
		}
		return nil
	})
	go func() {
		for {
			if _, _, err := client.ReadMessage(); err != nil {
				return
			}
		}
	}()

	cfg := testWriterConfig()
	cw := newClientWriter(server, fakeClock, cfg, nil)
	t.Cleanup(func() { cw.Close("") })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, fakeClock.BlockUntilContext(ctx, 1))

	select {
	case <-pinged:
		t.Fatal("ping before the interval elapsed")
	case <-time.After(50 * time.Millisecond):
	}

	fakeClock.Advance(cfg.PingInterval)

	select {
	case <-pinged:
	case <-time.After(2 * time.Second):
		t.Fatal("no ping after the interval elapsed")
	}
}
