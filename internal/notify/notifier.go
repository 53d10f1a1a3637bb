// Package notify carries the "data changed" signal from module actions to
// any mounted dashboard stream. Delivery is in-process first, with Redis
// pub/sub and NATS fanning events across gateway instances.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const subscriberBufferSize = 16

// Event announces that one user's history changed. Subscribers re-read the
// stores on receipt; the event itself carries no payload beyond provenance.
type Event struct {
	UserID string    `json:"user_id"`
	Module string    `json:"module"`
	SentAt time.Time `json:"sent_at"`
}

// Notifier publishes and streams data-changed events.
type Notifier interface {
	Publish(ctx context.Context, event Event)
	Subscribe(userID string) (<-chan Event, func())
	Start(ctx context.Context)
}

type notifier struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	broker       *broker
	nodeID       string
}

type envelope struct {
	Source string `json:"source"`
	Event  Event  `json:"event"`
}

type broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// New constructs a notifier. Redis and NATS connections are both optional;
// without them events still reach subscribers in this process.
func New(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) Notifier {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &notifier{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "notifier").Logger(),
		broker:       &broker{subscribers: make(map[string]map[chan Event]struct{})},
		nodeID:       uuid.NewString(),
	}
}

func (n *notifier) Start(ctx context.Context) {
	if n.redis != nil && n.redisChannel != "" {
		go n.consumeRedis(ctx)
	}
	if n.nats != nil && n.natsSubject != "" {
		n.consumeNATS(ctx)
	}
}

// Publish broadcasts the event. Callers invoke it only after the history
// change is persisted, so a subscriber that re-reads on receipt always
// observes the already-written state.
func (n *notifier) Publish(ctx context.Context, event Event) {
	if event.SentAt.IsZero() {
		event.SentAt = time.Now().UTC()
	}

	n.broker.broadcast(event)

	wrapped := envelope{Source: n.nodeID, Event: event}
	payload, err := json.Marshal(wrapped)
	if err != nil {
		n.logger.Warn().Err(err).Msg("failed to encode event")
		return
	}

	if n.redis != nil && n.redisChannel != "" {
		if err := n.redis.Publish(ctx, n.redisChannel, payload).Err(); err != nil {
			n.logger.Warn().Err(err).Msg("failed to publish event to redis")
		}
	}

	if n.nats != nil && n.natsSubject != "" {
		if err := n.nats.Publish(n.natsSubject, payload); err != nil {
			n.logger.Warn().Err(err).Msg("failed to publish event to nats")
		}
	}
}

func (n *notifier) Subscribe(userID string) (<-chan Event, func()) {
	channel := make(chan Event, subscriberBufferSize)
	n.broker.subscribe(userID, channel)

	cleanup := func() {
		n.broker.unsubscribe(userID, channel)
	}

	return channel, cleanup
}

func (n *notifier) consumeRedis(ctx context.Context) {
	pubsub := n.redis.Subscribe(ctx, n.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			n.logger.Error().Err(err).Msg("event redis subscription closed")
			return
		}
		n.handleRemote([]byte(msg.Payload))
	}
}

func (n *notifier) consumeNATS(ctx context.Context) {
	sub, err := n.nats.Subscribe(n.natsSubject, func(msg *nats.Msg) {
		n.handleRemote(msg.Data)
	})
	if err != nil {
		n.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			n.logger.Warn().Err(err).Msg("failed to drain nats event subscription")
		}
	}()
}

func (n *notifier) handleRemote(payload []byte) {
	var wrapped envelope
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		n.logger.Warn().Err(err).Msg("invalid event payload")
		return
	}
	if wrapped.Source == n.nodeID {
		return
	}
	n.broker.broadcast(wrapped.Event)
}

func (b *broker) subscribe(userID string, channel chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribers[userID] == nil {
		b.subscribers[userID] = make(map[chan Event]struct{})
	}
	b.subscribers[userID][channel] = struct{}{}
}

func (b *broker) unsubscribe(userID string, channel chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if channels, ok := b.subscribers[userID]; ok {
		delete(channels, channel)
		if len(channels) == 0 {
			delete(b.subscribers, userID)
		}
	}
}

func (b *broker) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for channel := range b.subscribers[event.UserID] {
		select {
		case channel <- event:
		default:
			// Slow subscribers drop events; the next one triggers a re-read anyway.
		}
	}
}
