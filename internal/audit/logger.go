// Package audit records mutations made by the runner in a separate collection
// and exports them on demand.
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"plp-bookstore/internal/models"
)

type Logger struct {
	Collection  *mongo.Collection
	PerformedBy string
}

func NewLogger(coll *mongo.Collection, performedBy string) *Logger {
	return &Logger{Collection: coll, PerformedBy: performedBy}
}

func (l *Logger) Log(ctx context.Context, entity, action string, data any) error {
	entry := models.AuditLog{
		Timestamp:   time.Now().UTC(),
		Entity:      entity,
		Action:      action,
		PerformedBy: l.PerformedBy,
		Data:        data,
	}
	_, err := l.Collection.InsertOne(ctx, entry)
	return err
}
