package audit

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"plp-bookstore/internal/models"
)

// Exporter writes audit entries that have not been exported yet and then
// flags them, so each entry is written once.
type Exporter struct {
	Coll *mongo.Collection
	Out  io.Writer
}

// ExportPending exports every pending entry, oldest first, and returns how
// many were flagged.
func (e *Exporter) ExportPending(ctx context.Context) (int, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := e.Coll.Find(ctx, bson.M{"exported": false}, opts)
	if err != nil {
		return 0, fmt.Errorf("find pending audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	var logs []models.AuditLog
	if err = cursor.All(ctx, &logs); err != nil {
		return 0, fmt.Errorf("decode audit logs: %w", err)
	}
	if len(logs) == 0 {
		return 0, nil
	}

	updateIds := make([]primitive.ObjectID, 0, len(logs))
	for _, l := range logs {
		if err := writeEntry(e.Out, l); err != nil {
			return 0, err
		}
		updateIds = append(updateIds, l.ID)
	}

	res, err := e.Coll.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": updateIds}},
		bson.M{"$set": bson.M{"exported": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark audit logs exported: %w", err)
	}
	return int(res.ModifiedCount), nil
}

func writeEntry(w io.Writer, l models.AuditLog) error {
	data, err := bson.MarshalExtJSON(bson.M{"data": l.Data}, false, false)
	if err != nil {
		return fmt.Errorf("encode audit data %s: %w", l.ID.Hex(), err)
	}
	_, err = fmt.Fprintf(w, "%s %s %s %s by %s %s\n",
		l.Timestamp.UTC().Format(time.RFC3339), l.ID.Hex(), l.Entity, l.Action, l.PerformedBy, data)
	return err
}
