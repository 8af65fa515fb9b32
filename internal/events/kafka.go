package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/dropDatabas3/earlyaccess/internal/observability/logger"
)

// KafkaConfig del publisher.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	ClientID          string
	Partitions        int32
	ReplicationFactor int16
	EnsureTopic       bool
	ProduceTimeout    time.Duration
}

// KafkaPublisher publica eventos con franz-go. La key del record es el
// registration_id para mantener el orden por inscripción.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	timeout time.Duration
}

// NewKafkaPublisher conecta el cliente y, si EnsureTopic, crea el topic vía kadm.
func NewKafkaPublisher(ctx context.Context, cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("events: no kafka brokers configured")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "earlyaccess"
	}
	if cfg.ProduceTimeout <= 0 {
		cfg.ProduceTimeout = 5 * time.Second
	}

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("events: kafka client: %w", err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("events: kafka ping: %w", err)
	}

	if cfg.EnsureTopic {
		if err := ensureTopic(ctx, kadm.NewClient(cl), cfg); err != nil {
			cl.Close()
			return nil, err
		}
	}
	return &KafkaPublisher{client: cl, topic: cfg.Topic, timeout: cfg.ProduceTimeout}, nil
}

func ensureTopic(ctx context.Context, adm *kadm.Client, cfg KafkaConfig) error {
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	rf := cfg.ReplicationFactor
	if rf <= 0 {
		rf = 1
	}
	resps, err := adm.CreateTopics(ctx, partitions, rf, nil, cfg.Topic)
	if err != nil {
		return fmt.Errorf("events: create topic: %w", err)
	}
	for _, r := range resps.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("events: create topic %s: %w", r.Topic, r.Err)
		}
	}
	logger.From(ctx).Info("kafka topic ready",
		logger.Component("events"),
		logger.String("topic", cfg.Topic),
	)
	return nil
}

// Publish produce el evento de forma síncrona.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rec := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.RegistrationID),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: "type", Value: []byte(e.Type)},
		},
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("events: produce %s: %w", e.Type, err)
	}
	return nil
}

// Close hace flush y cierra el cliente.
func (p *KafkaPublisher) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}
