package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	nc "github.com/nats-io/nats.go"
)

// ErrSubscribeUnsupported is returned by Subscribe when the bus was built without a subscriber.
var ErrSubscribeUnsupported = errors.New("eventbus: no subscriber configured")

// Publisher is what services depend on to emit domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// EventBus publishes JSON-encoded domain events through a Watermill publisher.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

// New connects to NATS when natsURL is set, otherwise keeps events in-process.
func New(natsURL string, logger *slog.Logger) (*EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	if natsURL == "" {
		logger.Info("No NATS URL configured, using in-process event bus")
		ch := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		return &EventBus{publisher: ch, subscriber: ch, logger: logger}, nil
	}

	options := []nc.Option{
		nc.Name("gamezone-api"),
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
		nc.ErrorHandler(func(_ *nc.Conn, s *nc.Subscription, err error) {
			if s != nil {
				logger.Error("Error in NATS subscription", slog.String("subject", s.Subject), slog.Any("error", err))
				return
			}
			logger.Error("Error in NATS connection", slog.Any("error", err))
		}),
	}

	pub, err := wmnats.NewPublisher(wmnats.PublisherConfig{
		URL:         natsURL,
		NatsOptions: options,
		Marshaler:   &wmnats.NATSMarshaler{},
		JetStream:   wmnats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	sub, err := wmnats.NewSubscriber(wmnats.SubscriberConfig{
		URL:         natsURL,
		NatsOptions: options,
		Unmarshaler: &wmnats.NATSMarshaler{},
		JetStream:   wmnats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	logger.Info("Connected event bus to NATS", slog.String("url", natsURL))
	return &EventBus{publisher: pub, subscriber: sub, logger: logger}, nil
}

// NewWithPublisher wraps an existing Watermill publisher.
func NewWithPublisher(pub message.Publisher, logger *slog.Logger) *EventBus {
	return &EventBus{publisher: pub, logger: logger}
}

// Publish encodes payload as JSON and sends it on topic.
func (b *EventBus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set("topic", topic)
	msg.Metadata.Set("published_at", time.Now().UTC().Format(time.RFC3339Nano))
	msg.SetContext(ctx)

	if err := b.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	b.logger.DebugContext(ctx, "Published event",
		slog.String("topic", topic),
		slog.String("message_id", msg.UUID),
	)
	return nil
}

// Subscribe returns a channel of messages for topic.
func (b *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if b.subscriber == nil {
		return nil, ErrSubscribeUnsupported
	}
	return b.subscriber.Subscribe(ctx, topic)
}

// Close releases the underlying publisher and subscriber.
func (b *EventBus) Close() error {
	err := b.publisher.Close()
	if b.subscriber != nil && any(b.subscriber) != any(b.publisher) {
		err = errors.Join(err, b.subscriber.Close())
	}
	return err
}
