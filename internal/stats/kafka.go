package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/coinsniper/coinsniper/internal/models"
)

// KafkaSink publishes trade and failure events to a Kafka topic, keyed by
// symbol so per-asset ordering is preserved.
type KafkaSink struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaSink creates a sink writing to the given brokers and topic.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &KafkaSink{
		writer: writer,
		topic:  topic,
	}
}

// RecordTrade publishes a TRADE_EXECUTED event. Errors are logged, never
// returned.
func (k *KafkaSink) RecordTrade(ctx context.Context, trade *models.Trade) {
	event := models.TradeEvent{
		EventType: models.EventTradeExecuted,
		Symbol:    trade.Symbol,
		Trade:     trade,
		Timestamp: time.Now(),
	}
	if err := k.publish(ctx, trade.Symbol, event); err != nil {
		log.Printf("Failed to publish trade event for %s: %v", trade.Symbol, err)
	}
}

// RecordFailure publishes a failure event. Errors are logged, never
// returned.
func (k *KafkaSink) RecordFailure(ctx context.Context, event *models.FailureEvent) {
	if err := k.publish(ctx, event.Symbol, event); err != nil {
		log.Printf("Failed to publish failure event for %s: %v", event.Symbol, err)
	}
}

func (k *KafkaSink) publish(ctx context.Context, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka writer.
func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
