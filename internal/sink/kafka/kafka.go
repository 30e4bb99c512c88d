// Package kafka publishes events as structured messages to a topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/IBM/sarama"

	"github.com/crimson-sun/oomnotify/internal/model"
	"github.com/crimson-sun/oomnotify/internal/sink"
)

func init() {
	sink.Register("kafka", func(cfg sink.Config) (sink.Sink, error) {
		return New(strings.Split(cfg.Extra["brokers"], ","), cfg.Extra["topic"])
	})
}

// Sink publishes one JSON message per event through a synchronous producer.
type Sink struct {
	producer sarama.SyncProducer
	topic    string
}

// New connects a producer to the broker set.
func New(brokers []string, topic string) (*Sink, error) {
	if topic == "" {
		return nil, fmt.Errorf("kafka sink: topic is required")
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true // required by SyncProducer
	config.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka sink: connect %v: %w", brokers, err)
	}
	return newWithProducer(producer, topic), nil
}

func newWithProducer(producer sarama.SyncProducer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

// Deliver publishes the event keyed by victim pid, so kills of the same pid
// land in one partition. sarama's sync producer carries its own timeouts;
// the dispatcher's delivery timeout bounds the attempt from outside.
func (s *Sink) Deliver(_ context.Context, event model.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka sink: marshal: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(strconv.Itoa(event.PID)),
		Value: sarama.ByteEncoder(value),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka sink: publish to %s: %w", s.topic, err)
	}
	return nil
}

func (s *Sink) Name() string { return "kafka" }

func (s *Sink) Close() error {
	return s.producer.Close()
}
