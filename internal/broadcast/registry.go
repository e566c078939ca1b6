package broadcast

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/piezorelay/internal/adapter/metrics"
	"github.com/pscheid92/piezorelay/internal/domain"
)

// closeTimeout bounds how long CloseAll waits for subscribers to say goodbye.
const closeTimeout = 5 * time.Second

// FanoutResult summarizes one fan-out.
type FanoutResult struct {
	Recipients int // members in the snapshot
	Delivered  int // frames accepted by subscriber queues
	Evicted    int // members removed because their send failed
}

type member struct {
	id         uuid.UUID
	subscriber domain.Subscriber
}

// Registry is the authoritative set of reachable subscribers.
type Registry struct {
	mu      sync.RWMutex
	members map[uuid.UUID]domain.Subscriber

	clock   clockwork.Clock
	metrics *metrics.BroadcastMetrics
}

// NewRegistry creates an empty registry. m may be nil.
func NewRegistry(clock clockwork.Clock, m *metrics.BroadcastMetrics) *Registry {
	return &Registry{
		members: make(map[uuid.UUID]domain.Subscriber),
		clock:   clock,
		metrics: m,
	}
}

// Register adds sub and returns its identifier. Every call creates a new entry.
func (r *Registry) Register(sub domain.Subscriber) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	for {
		if _, taken := r.members[id]; !taken {
			break
		}
		id = uuid.New()
	}

	r.members[id] = sub
	r.updateActive()

	slog.Debug("Subscriber registered", "connection_id", id.String(), "total_subscribers", len(r.members))
	return id
}

// Unregister removes and closes the subscriber with id. Absent ids are a no-op.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	sub, ok := r.members[id]
	if ok {
		delete(r.members, id)
		r.updateActive()
	}
	remaining := len(r.members)
	r.mu.Unlock()

	if !ok {
		return
	}

	sub.Close("")
	slog.Debug("Subscriber unregistered", "connection_id", id.String(), "remaining_subscribers", remaining)
}

// Fanout hands frame to every subscriber registered when the call began.
func (r *Registry) Fanout(frame []byte) FanoutResult {
	start := r.clock.Now()
	snapshot := r.snapshot()

	result := FanoutResult{Recipients: len(snapshot)}
	for _, m := range snapshot {
		err := m.subscriber.Send(frame)
		if err == nil {
			result.Delivered++
			continue
		}

		if r.evict(m, err) {
			result.Evicted++
		}
	}

	if r.metrics != nil {
		r.metrics.FanoutsTotal.Inc()
		r.metrics.DeliveriesTotal.Add(float64(result.Delivered))
		r.metrics.FanoutDuration.Observe(r.clock.Since(start).Seconds())
	}

	return result
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Contains reports whether id is currently registered.
func (r *Registry) Contains(id uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

// CloseAll removes every subscriber, passing reason to each.
func (r *Registry) CloseAll(reason string) int {
	r.mu.Lock()
	members := r.members
	r.members = make(map[uuid.UUID]domain.Subscriber)
	r.updateActive()
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, sub := range members {
		wg.Add(1)
		go func(sub domain.Subscriber) {
			defer wg.Done()
			sub.Close(reason)
		}(sub)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-r.clock.After(closeTimeout):
		slog.Warn("Registry close timeout exceeded", "timeout", closeTimeout, "subscribers", len(members))
	}

	slog.Info("Registry closed", "disconnected_subscribers", len(members), "reason", reason)
	return len(members)
}

func (r *Registry) snapshot() []member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]member, 0, len(r.members))
	for id, sub := range r.members {
		snapshot = append(snapshot, member{id: id, subscriber: sub})
	}
	return snapshot
}

// evict removes m unless a concurrent Unregister got there first.
func (r *Registry) evict(m member, cause error) bool {
	r.mu.Lock()
	if _, ok := r.members[m.id]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.members, m.id)
	r.updateActive()
	r.mu.Unlock()

	reason := metrics.EvictionClosed
	if errors.Is(cause, domain.ErrSendQueueFull) {
		reason = metrics.EvictionQueueFull
		slog.Warn("Evicting slow subscriber", "connection_id", m.id.String(), "error", cause)
	} else {
		slog.Debug("Evicting unreachable subscriber", "connection_id", m.id.String(), "error", cause)
	}
	if r.metrics != nil {
		r.metrics.EvictionsTotal.WithLabelValues(reason).Inc()
	}

	m.subscriber.Close("")
	return true
}

// updateActive must be called with mu held.
func (r *Registry) updateActive() {
	if r.metrics != nil {
		r.metrics.ActiveSubscribers.Set(float64(len(r.members)))
	}
}
