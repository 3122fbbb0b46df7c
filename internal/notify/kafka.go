package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/account-lifecycle-server/internal/lifecycle"
)

// StatusEvent is the payload published for every committed transition.
type StatusEvent struct {
	AccountID string    `json:"accountId"`
	Number    string    `json:"number"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	At        time.Time `json:"at"`
}

func NewStatusEvent(ev lifecycle.Event) StatusEvent {
	return StatusEvent{
		AccountID: ev.Account.ID.String(),
		Number:    ev.Account.Number,
		Kind:      string(ev.Kind),
		Status:    string(ev.Account.Status),
		Version:   ev.Account.Metadata.Version,
		At:        ev.At,
	}
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
	topic  string
	log    *logrus.Logger
}

// NewKafkaPublisher builds a publisher backed by a kafka-go Writer.
func NewKafkaPublisher(brokers []string, topic string, log *logrus.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	log.WithFields(logrus.Fields{
		"brokers": brokers,
		"topic":   topic,
	}).Info("Notify.Kafka.Initialized")
	return NewKafkaPublisherWithWriter(writer, topic, log)
}

func NewKafkaPublisherWithWriter(writer MessageWriter, topic string, log *logrus.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, topic: topic, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev lifecycle.Event) error {
	payload, err := json.Marshal(NewStatusEvent(ev))
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(ev.Account.ID.String()),
		Value: payload,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish status event: %w", err)
	}
	p.log.WithFields(logrus.Fields{
		"accountID": ev.Account.ID.String(),
		"event":     ev.Kind,
	}).Debug("Notify.Kafka.Published")
	return nil
}

// Hook exposes Publish as a post-commit hook.
func (p *KafkaPublisher) Hook() lifecycle.Hook {
	return lifecycle.Hook{Name: "kafka", Fn: p.Publish}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
