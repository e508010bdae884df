// Package event publishes and consumes booking lifecycle events over Kafka
// or RabbitMQ.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flight-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Type string

const (
	BookingConfirmed Type = "booking.confirmed"
	BookingCanceled  Type = "booking.canceled"
)

const (
	DriverKafka    = "kafka"
	DriverRabbitMQ = "rabbitmq"
	DriverNone     = "none"
)

type BookingEvent struct {
	Type       Type      `json:"type"`
	BookingID  uuid.UUID `json:"booking_id"`
	FlightID   uuid.UUID `json:"flight_id"`
	UserID     uuid.UUID `json:"user_id"`
	Seats      []string  `json:"seats"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e BookingEvent) Key() string {
	return e.FlightID.String()
}

func Encode(e BookingEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal booking event: %w", err)
	}
	return data, nil
}

func Decode(data []byte) (BookingEvent, error) {
	var e BookingEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return BookingEvent{}, fmt.Errorf("unmarshal booking event: %w", err)
	}
	if e.Type != BookingConfirmed && e.Type != BookingCanceled {
		return BookingEvent{}, fmt.Errorf("unknown booking event type %q", e.Type)
	}
	return e, nil
}

type Publisher interface {
	Publish(ctx context.Context, e BookingEvent) error
	Close() error
}

type Handler func(ctx context.Context, e BookingEvent) error

type Consumer interface {
	// Consume blocks, passing every event to h, until ctx is done or the
	// broker connection fails.
	Consume(ctx context.Context, h Handler) error
	Close() error
}

// NewPublisher picks the publisher for cfg.Driver.
func NewPublisher(cfg utils.BrokerConfig, log *zap.Logger) (Publisher, error) {
	switch cfg.Driver {
	case DriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log), nil
	case DriverRabbitMQ:
		return NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue, log)
	case DriverNone, "":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.Driver)
	}
}

func NewConsumer(cfg utils.BrokerConfig, log *zap.Logger) (Consumer, error) {
	switch cfg.Driver {
	case DriverKafka:
		return NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, log), nil
	case DriverRabbitMQ:
		return NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQQueue, log)
	default:
		return nil, fmt.Errorf("event broker %q cannot be consumed", cfg.Driver)
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, BookingEvent) error { return nil }
func (NopPublisher) Close() error                                { return nil }
