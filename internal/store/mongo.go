package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campboard/campboard/internal/models"
	"github.com/campboard/campboard/internal/schedule"
)

// MongoStore implements Store on two MongoDB collections. Schedule change
// notification is fanned out through the attached Notifier: every committed
// write publishes the resulting document, so subscribers on any instance
// observe versions in commit order.
type MongoStore struct {
	accounts  *mongo.Collection
	schedules *mongo.Collection
	notifier  *Notifier
}

// NewMongoStore wires the store against a database. Unique indexes on the id
// fields make duplicate schedule ids an insert error rather than a silent
// overwrite. notifier may be nil when subscriptions are not needed (CLI
// tools).
func NewMongoStore(db *mongo.Database, notifier *Notifier) *MongoStore {
	s := &MongoStore{
		accounts:  db.Collection("accounts"),
		schedules: db.Collection("schedules"),
		notifier:  notifier,
	}
	idIndex := mongo.IndexModel{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)}
	s.accounts.Indexes().CreateOne(context.Background(), idIndex)
	s.schedules.Indexes().CreateOne(context.Background(), idIndex)
	return s
}

func (s *MongoStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var a models.Account
	if err := s.accounts.FindOne(ctx, bson.M{"id": id}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *MongoStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	if err := s.accounts.FindOne(ctx, bson.M{"email": email}).Decode(&a); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *MongoStore) PutAccount(ctx context.Context, a *models.Account) error {
	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	opts := options.Replace().SetUpsert(true)
	_, err := s.accounts.ReplaceOne(ctx, bson.M{"id": a.ID}, a, opts)
	return err
}

func (s *MongoStore) PatchAccount(ctx context.Context, id string, p AccountPatch) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Kids != nil {
		set["kids"] = *p.Kids
	}
	if p.Schedules != nil {
		set["schedules"] = *p.Schedules
	}
	res, err := s.accounts.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) GetSchedule(ctx context.Context, id string) (*schedule.Document, error) {
	var d schedule.Document
	if err := s.schedules.FindOne(ctx, bson.M{"id": id}).Decode(&d); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *MongoStore) CreateSchedule(ctx context.Context, d *schedule.Document) error {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Version = 1
	if _, err := s.schedules.InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrIDTaken
		}
		return err
	}
	s.publish(ctx, Event{ID: d.ID, Doc: d})
	return nil
}

func (s *MongoStore) PatchSchedule(ctx context.Context, id string, p SchedulePatch, expectedVersion int64) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if p.KidName != nil {
		set["kidName"] = *p.KidName
	}
	if p.Collaborators != nil {
		set["collaborators"] = *p.Collaborators
	}
	if p.Camps != nil {
		set["camps"] = *p.Camps
	}
	if p.AllKids != nil {
		set["allKids"] = *p.AllKids
	}
	if p.Assignment != nil {
		set["schedule"] = *p.Assignment
	}
	if p.StartDate != nil {
		set["startDate"] = p.StartDate.UTC()
	}
	if p.WeekCount != nil {
		set["weekCount"] = *p.WeekCount
	}

	// check-and-set: the filter pins the version the caller read, $inc
	// commits the next one
	filter := bson.M{"id": id, "version": expectedVersion}
	update := bson.M{"$set": set, "$inc": bson.M{"version": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated schedule.Document
	err := s.schedules.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		// distinguish a vanished document from a lost race
		if _, gerr := s.GetSchedule(ctx, id); gerr == ErrNotFound {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	if err != nil {
		return err
	}
	s.publish(ctx, Event{ID: id, Doc: &updated})
	return nil
}

func (s *MongoStore) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.schedules.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	s.publish(ctx, Event{ID: id, Deleted: true})
	return nil
}

func (s *MongoStore) GetSchedulesByIDs(ctx context.Context, ids []string) ([]*schedule.Document, error) {
	if len(ids) == 0 {
		return []*schedule.Document{}, nil
	}
	cur, err := s.schedules.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*schedule.Document{}
	for cur.Next(ctx) {
		var d schedule.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (s *MongoStore) SubscribeSchedule(ctx context.Context, id string) (<-chan Event, error) {
	if s.notifier == nil {
		return nil, fmt.Errorf("subscriptions need a notifier")
	}
	return s.notifier.Subscribe(ctx, []string{id})
}

func (s *MongoStore) SubscribeSchedules(ctx context.Context, ids []string) (<-chan Event, error) {
	if s.notifier == nil {
		return nil, fmt.Errorf("subscriptions need a notifier")
	}
	return s.notifier.Subscribe(ctx, ids)
}

func (s *MongoStore) publish(ctx context.Context, ev Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, ev)
}
