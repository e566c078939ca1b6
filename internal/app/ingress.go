package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"unicode/utf8"

	"github.com/pscheid92/piezorelay/internal/adapter/metrics"
	"github.com/pscheid92/piezorelay/internal/broadcast"
	"github.com/pscheid92/piezorelay/internal/domain"
	apperrors "github.com/pscheid92/piezorelay/internal/platform/errors"
)

// StatusSuccess is the acknowledgement value for an accepted submission.
const StatusSuccess = "success"

// Ack is returned synchronously to the publisher.
type Ack struct {
	Status string `json:"status"`
}

type fanout interface {
	Fanout(frame []byte) broadcast.FanoutResult
}

// Ingress validates submissions and relays them on the piezo_data channel.
type Ingress struct {
	registry fanout
	metrics  *metrics.IngressMetrics
}

// NewIngress creates the ingress service. m may be nil.
func NewIngress(registry fanout, m *metrics.IngressMetrics) *Ingress {
	return &Ingress{registry: registry, metrics: m}
}

// Submit relays payload to every current subscriber exactly once.
// Malformed payloads fail with a bad_request error and are never fanned out.
func (i *Ingress) Submit(ctx context.Context, payload []byte) (Ack, error) {
	if err := validate(payload); err != nil {
		i.record(metrics.SubmissionRejected)
		return Ack{}, err
	}

	frame, err := domain.EncodeEnvelope(domain.EventPiezoData, domain.Message(payload))
	if err != nil {
		i.record(metrics.SubmissionRejected)
		return Ack{}, apperrors.BadRequestError("payload could not be encoded", err)
	}

	result := i.registry.Fanout(frame)
	i.record(metrics.SubmissionAccepted)
	if i.metrics != nil {
		i.metrics.Recipients.Observe(float64(result.Recipients))
	}

	slog.DebugContext(ctx, "Submission relayed",
		"bytes", len(payload),
		"recipients", result.Recipients,
		"delivered", result.Delivered,
		"evicted", result.Evicted,
	)

	return Ack{Status: StatusSuccess}, nil
}

func (i *Ingress) record(result string) {
	if i.metrics != nil {
		i.metrics.SubmissionsTotal.WithLabelValues(result).Inc()
	}
}

func validate(payload []byte) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return apperrors.BadRequestError("request body is empty", nil)
	}
	if !utf8.Valid(trimmed) {
		return apperrors.BadRequestError("request body is not valid UTF-8", nil)
	}
	if !json.Valid(trimmed) {
		return apperrors.BadRequestError("request body is not valid JSON", nil)
	}
	if trimmed[0] != '{' {
		return apperrors.BadRequestError("request body must be a JSON object", nil).
			WithContext("kind", jsonKind(trimmed[0]))
	}
	return nil
}

func jsonKind(first byte) string {
	switch first {
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
