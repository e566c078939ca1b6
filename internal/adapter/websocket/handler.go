package websocket

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/piezorelay/internal/adapter/metrics"
	"github.com/pscheid92/piezorelay/internal/domain"
	"github.com/pscheid92/piezorelay/internal/platform/correlation"
	apperrors "github.com/pscheid92/piezorelay/internal/platform/errors"
)

// Inbound frames are read only to detect disconnects.
const maxInboundMessageSize = 4096

type subscriberRegistry interface {
	Register(sub domain.Subscriber) uuid.UUID
	Unregister(id uuid.UUID)
}

// HandlerConfig configures the subscription endpoint.
type HandlerConfig struct {
	AllowedOrigins []string
	IsDevelopment  bool
	Writer         WriterConfig
	Limits         *ConnectionLimits // nil disables connection limits
}

// Handler upgrades clients to WebSocket subscribers and keeps them registered
// until they disconnect.
type Handler struct {
	registry subscriberRegistry
	upgrader ws.Upgrader
	clock    clockwork.Clock
	writer   WriterConfig
	limits   *ConnectionLimits
	metrics  *metrics.WebSocketMetrics
}

// NewHandler creates the subscription handler. m may be nil.
func NewHandler(registry subscriberRegistry, clock clockwork.Clock, cfg HandlerConfig, m *metrics.WebSocketMetrics) *Handler {
	return &Handler{
		registry: registry,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     NewCheckOrigin(cfg.AllowedOrigins, cfg.IsDevelopment),
		},
		clock:   clock,
		writer:  cfg.Writer,
		limits:  cfg.Limits,
		metrics: m,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ip := clientIP(r)
	if h.limits != nil {
		if ok, reason := h.limits.Acquire(ip); !ok {
			h.reject(w, r, ip, reason)
			return
		}
		defer h.limits.Release(ip)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written an HTTP error response.
		slog.Debug("WebSocket upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}
	conn.SetReadLimit(maxInboundMessageSize)

	sub := newClientWriter(conn, h.clock, h.writer, h.metrics)
	// Queued before registration, so the greeting precedes any relayed reading.
	if err := sub.Send(domain.WelcomeFrame()); err != nil {
		slog.Warn("Welcome frame not queued", "remote_addr", ip, "error", err)
	}
	id := h.registry.Register(sub)

	ctx := correlation.WithConnection(r.Context(), id.String())
	slog.InfoContext(ctx, "Client connected", "remote_addr", ip)
	if h.metrics != nil {
		h.metrics.ActiveConnections.Inc()
	}

	defer func() {
		h.registry.Unregister(id)
		sub.Close("")
		if h.metrics != nil {
			h.metrics.ActiveConnections.Dec()
		}
		slog.InfoContext(ctx, "Client disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if ws.IsUnexpectedCloseError(err, ws.CloseGoingAway, ws.CloseNormalClosure, ws.CloseNoStatusReceived) {
				slog.DebugContext(ctx, "Client connection lost", "error", err)
			}
			return
		}
	}
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request, ip string, reason LimitReason) {
	if h.metrics != nil {
		h.metrics.RejectedConnections.WithLabelValues(string(reason)).Inc()
	}
	slog.Warn("WebSocket connection rejected", "remote_addr", ip, "reason", reason, "path", r.URL.Path)

	var rejection *apperrors.Error
	if reason == LimitReasonGlobal {
		rejection = apperrors.UnavailableError("subscriber capacity reached")
	} else {
		rejection = apperrors.RateLimitedError("too many connections from this address")
	}
	rejection.WithContext("reason", string(reason))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rejection.HTTPStatus())
	_ = json.NewEncoder(w).Encode(rejection.ToResponse())
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
