package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"

	OutboxCollectionName = "outbox_events"

	maxErrorMessageLen = 500
)

type OutboxEvent struct {
	ID            string     `bson:"_id"`
	RequestID     string     `bson:"request_id,omitempty"`
	AggregateType string     `bson:"aggregate_type"`
	AggregateID   string     `bson:"aggregate_id"`
	EventType     string     `bson:"event_type"`
	Topic         string     `bson:"topic"`
	Payload       []byte     `bson:"payload"`
	Status        string     `bson:"status"`
	RetryCount    int        `bson:"retry_count"`
	ErrorMessage  string     `bson:"error_message,omitempty"`
	NextRetryAt   *time.Time `bson:"next_retry_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
	ProcessedAt   *time.Time `bson:"processed_at,omitempty"`
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	Create(ctx context.Context, event OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
}

type outboxRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewOutboxRepository(db *mongo.Database) OutboxRepository {
	return &outboxRepository{
		coll: db.Collection(OutboxCollectionName),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// EnsureOutboxIndexes backs the pending scan of ListPending.
func EnsureOutboxIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(OutboxCollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
		Options: options.Index().SetName("status_created_at_index"),
	})
	return err
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	now := r.now()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, event)
	return err
}

func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	filter := bson.D{
		{Key: "status", Value: bson.D{{Key: "$in", Value: bson.A{OutboxStatusPending, OutboxStatusFailed}}}},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "next_retry_at", Value: nil}},
			bson.D{{Key: "next_retry_at", Value: bson.D{{Key: "$lte", Value: r.now()}}}},
		}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	events := make([]OutboxEvent, 0, limit)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	now := r.now()
	_, err := r.coll.UpdateByID(ctx, id, bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: OutboxStatusSent},
			{Key: "processed_at", Value: now},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$unset", Value: bson.D{{Key: "error_message", Value: ""}}},
	})
	return err
}

// MarkFailed schedules a retry after min(retry_count+1, 10) * 15 seconds.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	if len(reason) > maxErrorMessageLen {
		reason = reason[:maxErrorMessageLen]
	}

	nextRetry := bson.D{{Key: "$add", Value: bson.A{
		"$$NOW",
		bson.D{{Key: "$multiply", Value: bson.A{
			bson.D{{Key: "$min", Value: bson.A{
				bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$retry_count", 0}}}, 1}}},
				10,
			}}},
			15000,
		}}},
	}}}

	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "status", Value: OutboxStatusFailed},
			{Key: "error_message", Value: reason},
			{Key: "next_retry_at", Value: nextRetry},
			{Key: "retry_count", Value: bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$retry_count", 0}}}, 1}}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}
	_, err := r.coll.UpdateByID(ctx, id, update)
	return err
}

func ValidateOutboxEvent(event OutboxEvent) error {
	if event.ID == "" {
		return errors.New("outbox id is required")
	}
	if event.Topic == "" {
		return errors.New("outbox topic is required")
	}
	if len(event.Payload) == 0 {
		return errors.New("outbox payload is required")
	}
	switch event.Status {
	case OutboxStatusPending, OutboxStatusSent, OutboxStatusFailed:
		return nil
	default:
		return fmt.Errorf("invalid outbox status: %s", event.Status)
	}
}
