package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	CheckoutTopic     = "cart-checkout"
	checkoutEventType = "checkout_requested"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSubmitter hands finalized carts to the order pipeline.
type KafkaSubmitter struct {
	writer MessageWriter
	logger *zap.Logger
}

func NewKafkaWriter(brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  CheckoutTopic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaSubmitter(writer MessageWriter, logger *zap.Logger) *KafkaSubmitter {
	return &KafkaSubmitter{writer: writer, logger: logger}
}

func (k *KafkaSubmitter) Submit(ctx context.Context, order domain.OrderRequest) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order request failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(order.SessionID), // keeps a shopper's requests ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(checkoutEventType)},
		},
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order request failed: %w", err)
	}

	k.logger.Info("order request published",
		zap.String("session_id", order.SessionID),
		zap.String("user_id", order.UserID),
		zap.Int("lines", len(order.Items)),
		zap.Float64("total", order.Total))
	return nil
}

func (k *KafkaSubmitter) Close() error {
	return k.writer.Close()
}

// LogSubmitter only logs order requests; used when no broker is configured.
type LogSubmitter struct {
	logger *zap.Logger
}

func NewLogSubmitter(logger *zap.Logger) *LogSubmitter {
	return &LogSubmitter{logger: logger}
}

func (l *LogSubmitter) Submit(_ context.Context, order domain.OrderRequest) error {
	l.logger.Info("order request (no broker configured)",
		zap.String("session_id", order.SessionID),
		zap.String("user_id", order.UserID),
		zap.Float64("total", order.Total))
	return nil
}
