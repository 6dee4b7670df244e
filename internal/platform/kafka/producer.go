// Package kafka publishes custody audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	id "foodsupply/pkg/domain"
	audit "foodsupply/pkg/platform/audit"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer implements audit.Store on top of a franz-go client. Records are
// keyed by listing id so one listing's trail stays on one partition, in order.
type Producer struct {
	client *kgo.Client
	topic  string
}

// message is the wire form of an audit event.
type message struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	Action    string `json:"action"`
	ListingID string `json:"listing_id,omitempty"`
	PartyID   string `json:"party_id,omitempty"`
	Role      string `json:"role,omitempty"`
	Status    string `json:"status,omitempty"`
	Decision  string `json:"decision,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
}

// NewProducer connects to brokers. The client dials lazily; Ping verifies
// connectivity.
func NewProducer(brokers []string, topic string, opts ...kgo.Opt) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka: audit topic is required")
	}
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(1 << 20),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("kafka: create client: %w", err)
	}
	return &Producer{client: client, topic: topic}, nil
}

func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// EnsureTopic creates the audit topic if it does not exist.
func (p *Producer) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	admin := kadm.NewClient(p.client)
	_, err := admin.CreateTopic(ctx, partitions, replicationFactor, nil, p.topic)
	return createTopicErr(p.topic, err)
}

// createTopicErr treats an existing topic as success. kadm reports the
// per-topic error as the returned error.
func createTopicErr(topic string, err error) error {
	if err == nil || errors.Is(err, kerr.TopicAlreadyExists) {
		return nil
	}
	return fmt.Errorf("kafka: create topic %s: %w", topic, err)
}

// Append publishes one event and waits for the broker acknowledgement.
func (p *Producer) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(message{
		ID:        event.ID,
		Category:  string(event.Category),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:    event.Action,
		ListingID: event.ListingID.String(),
		PartyID:   event.PartyID.String(),
		Role:      event.Role,
		Status:    event.Status,
		Decision:  event.Decision,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ActorID:   event.ActorID,
	})
	if err != nil {
		return fmt.Errorf("kafka: marshal audit event: %w", err)
	}
	key := event.ListingID.String()
	if key == "" {
		key = event.PartyID.String()
	}
	record := &kgo.Record{
		Key:   []byte(key),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the client.
func (p *Producer) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

// DecodeMessage parses a record value produced by Append.
func DecodeMessage(value []byte) (audit.Event, error) {
	var m message
	if err := json.Unmarshal(value, &m); err != nil {
		return audit.Event{}, fmt.Errorf("kafka: decode audit event: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return audit.Event{}, fmt.Errorf("kafka: decode audit timestamp: %w", err)
	}
	return audit.Event{
		ID:        m.ID,
		Category:  audit.EventCategory(m.Category),
		Timestamp: ts,
		Action:    m.Action,
		ListingID: id.ListingID(m.ListingID),
		PartyID:   id.PartyID(m.PartyID),
		Role:      m.Role,
		Status:    m.Status,
		Decision:  m.Decision,
		Reason:    m.Reason,
		RequestID: m.RequestID,
		ActorID:   m.ActorID,
	}, nil
}
