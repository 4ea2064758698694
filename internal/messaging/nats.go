package messaging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/stan.go"
)

const (
	defaultAckWait     = 30 * time.Second
	defaultMaxInflight = 1
)

type Config struct {
	Enabled   bool
	URL       string
	ClusterID string
	ClientID  string
}

// NATSClient publishes domain events and owns the durable queue
// subscriptions of a process.
type NATSClient struct {
	conn stan.Conn

	mu   sync.Mutex
	subs []stan.Subscription
}

func NewNATSClient(cfg Config) (*NATSClient, error) {
	// Streaming rejects a second connection with the same client id, so every
	// process instance gets its own suffix
	clientID := fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])

	conn, err := stan.Connect(cfg.ClusterID, clientID,
		stan.NatsURL(cfg.URL),
		stan.Pings(stan.DefaultPingInterval, stan.DefaultPingMaxOut),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			slog.Error("NATS Streaming connection lost", "client", clientID, "error", reason)
		}))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS Streaming: %w", err)
	}

	slog.Info("Connected to NATS Streaming",
		"url", cfg.URL,
		"cluster", cfg.ClusterID,
		"client", clientID)

	return &NATSClient{conn: conn}, nil
}

// Publish encodes event as JSON and waits for the server ack
func (nc *NATSClient) Publish(subject string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}

	if err := nc.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}

	slog.Debug("Published event", "subject", subject, "bytes", len(payload))
	return nil
}

// SubscribeQueue joins a durable queue group in manual ack mode. Messages that
// are not acked are redelivered after the ack wait.
func (nc *NATSClient) SubscribeQueue(subject, queue string, handler stan.MsgHandler) error {
	sub, err := nc.conn.QueueSubscribe(subject, queue, handler,
		stan.DurableName(subject+"-"+queue),
		stan.DeliverAllAvailable(),
		stan.SetManualAckMode(),
		stan.AckWait(defaultAckWait),
		stan.MaxInflight(defaultMaxInflight))
	if err != nil {
		return fmt.Errorf("failed to queue subscribe to subject %s: %w", subject, err)
	}

	nc.mu.Lock()
	nc.subs = append(nc.subs, sub)
	nc.mu.Unlock()

	slog.Info("Subscribed to subject", "subject", subject, "queue", queue)
	return nil
}

// Close detaches subscriptions without removing their durable state, then
// closes the connection.
func (nc *NATSClient) Close() error {
	if nc.conn == nil {
		return nil
	}

	nc.mu.Lock()
	subs := nc.subs
	nc.subs = nil
	nc.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			slog.Warn("Failed to close subscription", "error", err)
		}
	}

	return nc.conn.Close()
}
