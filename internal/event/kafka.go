package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           50 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		log: log.With(zap.String("publisher", "kafka"), zap.String("topic", topic)),
	}
}

// Publish keys messages by flight so events of one flight stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, e BookingEvent) error {
	data, err := Encode(e)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(e.Key()),
		Value: data,
		Time:  e.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write kafka message: %w", err)
	}

	p.log.Debug("Booking event published",
		zap.String("type", string(e.Type)),
		zap.String("booking_id", e.BookingID.String()),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type KafkaConsumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewKafkaConsumer(brokers []string, groupID, topic string, log *zap.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log.With(zap.String("consumer", "kafka"), zap.String("topic", topic)),
	}
}

// Consume commits a message only after h accepted it. Messages that do not
// decode are logged and committed so they cannot block the partition.
func (c *KafkaConsumer) Consume(ctx context.Context, h Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return fmt.Errorf("fetch kafka message: %w", err)
		}

		e, err := Decode(msg.Value)
		if err != nil {
			c.log.Warn("Skipping malformed booking event",
				zap.Error(err),
				zap.Int64("offset", msg.Offset),
			)
		} else if err := h(ctx, e); err != nil {
			return fmt.Errorf("handle booking event %s: %w", e.BookingID, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit kafka message: %w", err)
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}
