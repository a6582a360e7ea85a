// DeliveryHeat - Order Heat Map and Delivery Radius Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/deliveryheat

package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/deliveryheat/internal/logging"
	"github.com/tomtom215/deliveryheat/internal/metrics"
)

// Topic is the Watermill topic notifications are published on.
const Topic = "heatmap.notifications"

// ErrBusClosed is returned by Subscribe after Close.
var ErrBusClosed = errors.New("notification bus closed")

// Bus is a Notifier backed by a Watermill Go channel pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
	now    func() time.Time

	mu     sync.RWMutex
	closed bool
}

var _ Notifier = (*Bus)(nil)

// NewBus creates a bus. bufferSize is the per-subscriber output buffer.
func NewBus(bufferSize int64) *Bus {
	logger := logging.NewWatermillAdapter()
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            bufferSize,
			BlockPublishUntilSubscriberAck: false,
		}, logger),
		logger: logger,
		now:    time.Now,
	}
}

// Notify publishes n. Failures are logged and otherwise ignored.
func (b *Bus) Notify(ctx context.Context, n Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = b.now()
	}

	if err := b.publish(n); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("level", string(n.Level)).Msg("failed to publish notification")
		return
	}
	metrics.NotificationsPublished.WithLabelValues(string(n.Level)).Inc()
}

func (b *Bus) publish(n Notification) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	msg := message.NewMessage(n.ID, payload)
	msg.Metadata.Set("level", string(n.Level))
	if n.SessionID != "" {
		msg.Metadata.Set("session_id", n.SessionID)
	}
	return b.pubsub.Publish(Topic, msg)
}

// Subscribe returns a channel of notifications that is closed when ctx is
// done or the bus is closed. Undecodable messages are skipped.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Notification, error) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return nil, ErrBusClosed
	}

	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", Topic, err)
	}

	out := make(chan Notification)
	go func() {
		defer close(out)
		for msg := range messages {
			var n Notification
			if err := json.Unmarshal(msg.Payload, &n); err != nil {
				b.logger.Error("dropping undecodable notification", err, watermill.LogFields{"message_uuid": msg.UUID})
				msg.Ack()
				continue
			}
			select {
			case out <- n:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close stops the bus and closes every subscription.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	return b.pubsub.Close()
}
