package export

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record is the persisted metadata for one generated summary export, kept so
// regenerated links can be audited and stale objects garbage-collected.
type Record struct {
	ScheduleID string    `bson:"scheduleId" json:"scheduleId"`
	Kid        string    `bson:"kid" json:"kid"`
	ObjectKey  string    `bson:"objectKey" json:"objectKey"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// SaveRecord upserts export metadata keyed by object key. A nil collection
// disables record keeping (memory-store deployments).
func SaveRecord(ctx context.Context, col *mongo.Collection, rec *Record) error {
	if col == nil {
		return nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	filter := bson.M{"objectKey": rec.ObjectKey}
	opts := options.Update().SetUpsert(true)
	if _, err := col.UpdateOne(ctx, filter, bson.M{"$set": rec}, opts); err != nil {
		return fmt.Errorf("save export record: %w", err)
	}
	return nil
}

// LatestRecord fetches the most recent export for a (schedule, kid) pair.
// Returns nil when none exists or record keeping is disabled.
func LatestRecord(ctx context.Context, col *mongo.Collection, scheduleID, kid string) (*Record, error) {
	if col == nil {
		return nil, nil
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var rec Record
	err := col.FindOne(ctx, bson.M{"scheduleId": scheduleID, "kid": kid}, opts).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
