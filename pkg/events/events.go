// Package events publishes booking lifecycle events.
package events

import (
	"context"
	"fmt"
	"time"

	"dormitory/pkg/kafka"
	"dormitory/pkg/middleware"
	"dormitory/pkg/model"
)

type Type string

const (
	BookingCreated Type = "booking.created"
	BookingUpdated Type = "booking.updated"
	BookingDeleted Type = "booking.deleted"
)

const (
	Source        = "dormitory"
	SchemaVersion = "1"
)

// BookingEvent is the payload written to the bookings topic.
type BookingEvent struct {
	Type        Type        `json:"type"`
	BookingID   string      `json:"bookingId"`
	Room        string      `json:"room"`
	Tenant      string      `json:"tenant"`
	StartDate   model.Date  `json:"startDate"`
	EndDate     model.Date  `json:"endDate"`
	TotalAmount model.Money `json:"totalAmount"`
	OccurredAt  time.Time   `json:"occurredAt"`
}

func NewBookingEvent(eventType Type, booking *model.Booking) BookingEvent {
	return BookingEvent{
		Type:        eventType,
		BookingID:   booking.ID,
		Room:        booking.Room.Hex(),
		Tenant:      booking.Tenant.Hex(),
		StartDate:   booking.StartDate,
		EndDate:     booking.EndDate,
		TotalAmount: booking.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}

// Publisher delivers booking events. Callers treat failures as non-fatal.
type Publisher interface {
	PublishBooking(ctx context.Context, eventType Type, booking *model.Booking) error
	Close() error
}

type kafkaPublisher struct {
	producer *kafka.Producer
}

// NewKafkaPublisher publishes events keyed by booking id.
func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) PublishBooking(ctx context.Context, eventType Type, booking *model.Booking) error {
	msg, err := NewMessage(ctx, NewBookingEvent(eventType, booking))
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NewMessage builds the Kafka message for event. The request id, when present,
// travels as the correlation id.
func NewMessage(ctx context.Context, event BookingEvent) (kafka.Message, error) {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		Build()
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	return msg, nil
}

type noopPublisher struct{}

// NewNoopPublisher is used when no broker is configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishBooking(context.Context, Type, *model.Booking) error {
	return nil
}

func (noopPublisher) Close() error {
	return nil
}
