package bus

import (
	"context"
	"encoding/json"
	"time"

	"delegation-service/pkg/logger"
	"delegation-service/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRelayChannel is the redis channel used when none is configured
const DefaultRelayChannel = "delegations:invalidations"

// relayMessage is the wire form of an invalidation shared between instances
type relayMessage struct {
	ServerID    string    `json:"serverId"`
	Topic       Topic     `json:"topic"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Relay fans local publishes out over redis and replays publishes from other
// instances on the local bus.
type Relay struct {
	client   *redis.Client
	bus      *Bus
	channel  string
	serverID string
	pubsub   *redis.PubSub
	logger   logger.Logger
	metrics  *metrics.Metrics
}

// NewRelay creates a relay for the local bus
func NewRelay(client *redis.Client, local *Bus, channel string, log logger.Logger, m *metrics.Metrics) *Relay {
	if channel == "" {
		channel = DefaultRelayChannel
	}
	return &Relay{
		client:   client,
		bus:      local,
		channel:  channel,
		serverID: uuid.New().String(),
		logger:   log,
		metrics:  m,
	}
}

// ServerID identifies this instance on the channel
func (r *Relay) ServerID() string {
	return r.serverID
}

// Start begins listening for invalidations from other instances
func (r *Relay) Start(ctx context.Context) error {
	r.pubsub = r.client.Subscribe(ctx, r.channel)
	if _, err := r.pubsub.Receive(ctx); err != nil {
		return err
	}

	r.logger.Info("Invalidation relay started", "server_id", r.serverID, "channel", r.channel)

	go r.listen(ctx)
	return nil
}

// Stop closes the subscription
func (r *Relay) Stop() error {
	if r.pubsub != nil {
		return r.pubsub.Close()
	}
	return nil
}

func (r *Relay) listen(ctx context.Context) {
	ch := r.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			r.handleMessage(msg.Payload)
		}
	}
}

// handleMessage replays a remote invalidation locally
func (r *Relay) handleMessage(payload string) {
	var msg relayMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		r.logger.Error("Failed to unmarshal relay message", "error", err, "payload", payload)
		return
	}

	// Ignore messages from this server instance
	if msg.ServerID == r.serverID {
		return
	}
	if _, err := ParseTopic(string(msg.Topic)); err != nil {
		r.logger.Warn("Ignoring relay message", "error", err, "server_id", msg.ServerID)
		return
	}

	r.count("in")
	r.bus.Publish(msg.Topic)
}

// Publish signals the local bus and every other instance
func (r *Relay) Publish(topic Topic) {
	r.bus.Publish(topic)

	data, err := json.Marshal(relayMessage{
		ServerID:    r.serverID,
		Topic:       topic,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		r.logger.Error("Failed to marshal relay message", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		// local subscribers are already notified
		r.logger.Warn("Failed to relay invalidation", "topic", topic, "error", err)
		return
	}
	r.count("out")
}

func (r *Relay) count(direction string) {
	if r.metrics != nil {
		r.metrics.RelayMessages.WithLabelValues(direction).Inc()
	}
}
