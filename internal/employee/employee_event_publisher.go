package employee

import (
	"context"
	"encoding/json"
	"go-employee/internal/events"
	"go-employee/internal/messaging/kafka"

	"github.com/google/uuid"
)

//go:generate mockgen -source=employee_event_publisher.go -destination=mock/employee_event_publisher_mock.go -package=mock
type EventPublisher interface {
	Publish(ctx context.Context, event events.EmployeeEvent) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, events.EmployeeEvent) error {
	return nil
}

// outboxEventPublisher queues events in the outbox; cmd/worker relays them
// to Kafka.
type outboxEventPublisher struct {
	outbox kafka.OutboxRepository
}

func NewOutboxEventPublisher(outbox kafka.OutboxRepository) EventPublisher {
	return &outboxEventPublisher{outbox: outbox}
}

func (p *outboxEventPublisher) Publish(ctx context.Context, event events.EmployeeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "employee",
		AggregateID:   event.EmployeeID,
		EventType:     event.EventType,
		Topic:         events.EmployeeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
		CreatedAt:     event.OccurredAt,
	})
}
