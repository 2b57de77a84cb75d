package events

import (
	"sync"
	"time"
)

// AssetView is one ledger row prepared for the web/UI layer. String fields
// avoid float precision issues on the wire.
type AssetView struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Balance   string `json:"balance"`
	PriceUsd  string `json:"price_usd"`
	Change24h string `json:"change_24h"`
	ValueUsd  string `json:"value_usd"`
}

// WalletSnapshot is a domain event representing full wallet state at a point
// in time: assets, totals and the display rate.
type WalletSnapshot struct {
	Timestamp    time.Time   `json:"ts"`
	Nickname     string      `json:"nickname"`
	Assets       []AssetView `json:"assets"`
	TotalUsd     string      `json:"total_usd"`
	TotalDisplay string      `json:"total_display"`
	Rate         string      `json:"rate"`
	Hidden       bool        `json:"hidden"`
}

// SnapshotRecord pairs a snapshot with its journal index for SSE resume.
type SnapshotRecord struct {
	Index    uint64
	Snapshot WalletSnapshot
}

// NotificationEvent is pushed when an operation completes or the active
// notification expires.
type NotificationEvent struct {
	Message   string    `json:"message"`
	Visible   bool      `json:"visible"`
	Timestamp time.Time `json:"ts"`
}

// NotificationBroadcaster fans out notification events to all subscribers via
// buffered channels, dropping events for slow readers.
type NotificationBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan NotificationEvent]struct{}
	buffer int
}

// NewNotificationBroadcaster creates a broadcaster with the given
// per-subscriber buffer.
func NewNotificationBroadcaster(buffer int) *NotificationBroadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &NotificationBroadcaster{
		subs:   make(map[chan NotificationEvent]struct{}),
		buffer: buffer,
	}
}

// Publish sends the event to all subscribers, dropping if a reader is slow.
func (b *NotificationBroadcaster) Publish(e NotificationEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives events until Unsubscribe is called.
func (b *NotificationBroadcaster) Subscribe() chan NotificationEvent {
	ch := make(chan NotificationEvent, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *NotificationBroadcaster) Unsubscribe(ch chan NotificationEvent) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
