package websocket

import (
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/piezorelay/internal/adapter/metrics"
	"github.com/pscheid92/piezorelay/internal/domain"
)

// WriterConfig bounds what a single subscriber may cost the server.
type WriterConfig struct {
	BufferSize   int           // queued frames before the subscriber counts as slow
	WriteTimeout time.Duration // deadline for every frame written to the socket
	PingInterval time.Duration
	PongTimeout  time.Duration // read deadline extension granted by each pong
}

// clientWriter owns all writes to one connection. Frames arrive through a bounded
// channel and are written by a single goroutine, which keeps gorilla's one-writer rule.
type clientWriter struct {
	connection  *ws.Conn
	clock       clockwork.Clock
	config      WriterConfig
	metrics     *metrics.WebSocketMetrics
	sendChannel chan []byte
	doneChannel chan struct{}
	exited      chan struct{}
	stopOnce    sync.Once
}

func newClientWriter(connection *ws.Conn, clock clockwork.Clock, config WriterConfig, m *metrics.WebSocketMetrics) *clientWriter {
	cw := &clientWriter{
		connection:  connection,
		clock:       clock,
		config:      config,
		metrics:     m,
		sendChannel: make(chan []byte, config.BufferSize),
		doneChannel: make(chan struct{}),
		exited:      make(chan struct{}),
	}
	cw.configurePongHandler()
	go cw.run()
	return cw
}

// Send enqueues frame without blocking.
func (cw *clientWriter) Send(frame []byte) error {
	select {
	case <-cw.doneChannel:
		return domain.ErrSubscriberClosed
	case <-cw.exited:
		return domain.ErrSubscriberClosed
	default:
	}

	select {
	case cw.sendChannel <- frame:
		return nil
	default:
		return domain.ErrSendQueueFull
	}
}

// Close stops the writer. With a reason, a close frame is sent first; without one the
// socket is torn down immediately so an in-flight write cannot hold the caller.
func (cw *clientWriter) Close(reason string) {
	cw.stopOnce.Do(func() {
		close(cw.doneChannel)

		if reason == "" {
			_ = cw.connection.Close()
			<-cw.exited
			return
		}

		// The run goroutine must be gone before we write the close frame.
		<-cw.exited
		closeMsg := ws.FormatCloseMessage(ws.CloseNormalClosure, reason)
		cw.updateWriteDeadline()
		_ = cw.connection.WriteMessage(ws.CloseMessage, closeMsg)
		_ = cw.connection.Close()
	})
}

func (cw *clientWriter) run() {
	defer close(cw.exited)

	ticker := cw.clock.NewTicker(cw.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg := <-cw.sendChannel:
			start := cw.clock.Now()
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(ws.TextMessage, msg); err != nil {
				_ = cw.connection.Close()
				return
			}
			if cw.metrics != nil {
				cw.metrics.WriteDuration.Observe(cw.clock.Since(start).Seconds())
			}
		case <-ticker.Chan():
			cw.updateWriteDeadline()
			if err := cw.connection.WriteMessage(ws.PingMessage, nil); err != nil {
				if cw.metrics != nil {
					cw.metrics.PingFailures.Inc()
				}
				_ = cw.connection.Close()
				return
			}
		case <-cw.doneChannel:
			return
		}
	}
}

func (cw *clientWriter) configurePongHandler() {
	cw.updateReadDeadline()
	cw.connection.SetPongHandler(func(string) error {
		cw.updateReadDeadline()
		return nil
	})
}

// Socket deadlines are wall-clock instants, so they use time.Now rather than cw.clock.
func (cw *clientWriter) updateWriteDeadline() {
	_ = cw.connection.SetWriteDeadline(time.Now().Add(cw.config.WriteTimeout))
}

func (cw *clientWriter) updateReadDeadline() {
	_ = cw.connection.SetReadDeadline(time.Now().Add(cw.config.PongTimeout))
}
