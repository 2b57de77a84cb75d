// Package notify owns the single short-lived notification describing the
// outcome of the last completed operation.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"tonpocket/internal/domain"
	"tonpocket/internal/events"
)

const DefaultTTL = 4 * time.Second

// Notifier keeps at most one active notification. A new Emit replaces the
// prior notification and restarts the expiry timer; after the TTL the
// notification transitions to invisible on its own.
type Notifier struct {
	mu          sync.Mutex
	current     *domain.Notification
	timer       *time.Timer
	ttl         time.Duration
	broadcaster *events.NotificationBroadcaster
	logger      *zap.Logger
	closed      bool
}

// New creates a notifier with the given visibility TTL. The broadcaster is
// optional; when set, every emit and expiry is published to it.
func New(ttl time.Duration, broadcaster *events.NotificationBroadcaster, logger *zap.Logger) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		ttl:         ttl,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Emit replaces the active notification with a new visible one and arms the
// expiry timer. The prior notification's timer is cancelled so an old expiry
// can never hide a newer message.
func (n *Notifier) Emit(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	if n.timer != nil {
		n.timer.Stop()
	}

	created := time.Now()
	n.current = &domain.Notification{
		Message:   message,
		Visible:   true,
		CreatedAt: created,
	}
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(created) })

	n.logger.Info("notification emitted", zap.String("message", message))
	if n.broadcaster != nil {
		n.broadcaster.Publish(events.NotificationEvent{
			Message:   message,
			Visible:   true,
			Timestamp: created,
		})
	}
}

// expire hides the notification created at the given time. A replacement
// emitted in the meantime carries a newer CreatedAt and is left alone.
func (n *Notifier) expire(createdAt time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || n.current == nil || !n.current.CreatedAt.Equal(createdAt) {
		return
	}

	n.current.Visible = false
	if n.broadcaster != nil {
		n.broadcaster.Publish(events.NotificationEvent{
			Message:   n.current.Message,
			Visible:   false,
			Timestamp: time.Now(),
		})
	}
}

// Current returns a copy of the active notification and whether one exists.
// An expired notification is still returned with Visible=false until the
// next Emit replaces it.
func (n *Notifier) Current() (domain.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return domain.Notification{}, false
	}
	return *n.current, true
}

// Close cancels the pending expiry timer. Emit becomes a no-op afterwards.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
