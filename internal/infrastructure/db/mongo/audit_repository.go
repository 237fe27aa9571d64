package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/example/usermanagement/internal/core/domain"
)

const collectionAccountEvents = "account_events"

// AuditRepository appends account lifecycle events to the account_events
// collection. It implements ports.AccountEventPublisher.
type AuditRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionAccountEvents), now: time.Now}
}

// Publish persists event to the audit collection.
func (r *AuditRepository) Publish(ctx context.Context, event domain.AccountEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, auditDocument(event, r.now())); err != nil {
		return fmt.Errorf("insert account event: %w", err)
	}
	return nil
}

func auditDocument(event domain.AccountEvent, processedAt time.Time) bson.M {
	doc := bson.M{
		"type":         string(event.Type),
		"account_id":   event.AccountID,
		"email":        event.Email,
		"occurred_at":  event.OccurredAt.UTC(),
		"processed_at": processedAt.UTC(),
	}
	if event.ActorEmail != "" {
		doc["actor_email"] = event.ActorEmail
	}
	return doc
}
