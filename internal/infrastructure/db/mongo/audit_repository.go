package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Rule27-Design/rule27-client/internal/core/ports"
)

const auditCollection = "auth_audit"

// AuditRepository persists authorization outcomes to the auth_audit
// collection. Append-only.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) ports.AuditRecorder {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, entry ports.AuditEntry) error {
	doc := bson.M{
		"auth_user_id": entry.AuthUserID,
		"email":        entry.Email,
		"kind":         entry.Kind,
		"outcome":      entry.Outcome,
		"path":         entry.Path,
		"at":           entry.At.UTC(),
		"recorded_at":  time.Now().UTC(),
	}

	if _, err := r.db.Collection(auditCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}
