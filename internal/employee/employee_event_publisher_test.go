package employee_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go-employee/internal/employee"
	"go-employee/internal/events"
	"go-employee/internal/messaging/kafka"
	kafkaMock "go-employee/internal/messaging/kafka/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestOutboxEventPublisher_Publish(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := kafkaMock.NewMockOutboxRepository(ctrl)
	publisher := employee.NewOutboxEventPublisher(outbox)
	ctx := context.Background()

	ev := events.EmployeeEvent{
		EventType:  events.EmployeeCreated,
		RequestID:  "rid-1",
		EmployeeID: "E1",
		Department: "Eng",
		OccurredAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	outbox.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, row kafka.OutboxEvent) error {
			assert.NotEmpty(t, row.ID)
			assert.Equal(t, "employee", row.AggregateType)
			assert.Equal(t, "E1", row.AggregateID)
			assert.Equal(t, events.EmployeeLifecycleTopic, row.Topic)
			assert.Equal(t, kafka.OutboxStatusPending, row.Status)
			assert.Equal(t, "rid-1", row.RequestID)
			assert.NoError(t, kafka.ValidateOutboxEvent(row))

			var decoded events.EmployeeEvent
			require.NoError(t, json.Unmarshal(row.Payload, &decoded))
			assert.Equal(t, ev, decoded)
			return nil
		})

	assert.NoError(t, publisher.Publish(ctx, ev))
}
