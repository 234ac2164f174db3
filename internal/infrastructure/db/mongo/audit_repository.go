package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/minierp/console-gateway/internal/core/ports"
)

const auditCollection = "auth_audit"

// AuditRepository appends authentication lifecycle events to a capped-style
// audit collection.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	Kind      string `bson:"kind"`
	Email     string `bson:"email,omitempty"`
	Role      string `bson:"role,omitempty"`
	SessionID string `bson:"session_id,omitempty"`
	Reason    string `bson:"reason,omitempty"`
	At        int64  `bson:"at"`
}

func (r *AuditRepository) Append(ctx context.Context, event ports.AuditEvent) error {
	doc := auditDoc{
		Kind:      event.Kind,
		Email:     event.Email,
		Role:      event.Role,
		SessionID: event.SessionID,
		Reason:    event.Reason,
		At:        event.At.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
