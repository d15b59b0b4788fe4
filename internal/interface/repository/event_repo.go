package repository

import (
	"context"
	"errors"
	"fmt"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoEventRepository implements EventRepository over the main_events and sub_events collections
type MongoEventRepository struct {
	mainEvents *mongo.Collection
	subEvents  *mongo.Collection
}

// NewMongoEventRepository creates a new event repository
func NewMongoEventRepository(db *mongo.Database) repository.EventRepository {
	mainEvents := db.Collection("main_events")
	subEvents := db.Collection("sub_events")

	// Index on mainEventId for listing sub events of an event
	subEvents.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.M{"mainEventId": 1},
	})

	return &MongoEventRepository{
		mainEvents: mainEvents,
		subEvents:  subEvents,
	}
}

// ListMainEvents returns main events in creation order
func (r *MongoEventRepository) ListMainEvents(ctx context.Context) ([]entity.MainEvent, error) {
	cursor, err := r.mainEvents.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []entity.MainEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListSubEvents returns sub events in creation order
func (r *MongoEventRepository) ListSubEvents(ctx context.Context) ([]entity.SubEvent, error) {
	cursor, err := r.subEvents.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []entity.SubEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// FindMainEvent finds a main event by id
func (r *MongoEventRepository) FindMainEvent(ctx context.Context, id string) (*entity.MainEvent, error) {
	var event entity.MainEvent
	err := r.mainEvents.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// SaveMainEvent creates or replaces a main event
func (r *MongoEventRepository) SaveMainEvent(ctx context.Context, event *entity.MainEvent) error {
	_, err := r.mainEvents.ReplaceOne(ctx, bson.M{"_id": event.ID}, event, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace main event: %w", err)
	}
	return nil
}

// SaveSubEvent creates or replaces a sub event
func (r *MongoEventRepository) SaveSubEvent(ctx context.Context, event *entity.SubEvent) error {
	_, err := r.subEvents.ReplaceOne(ctx, bson.M{"_id": event.ID}, event, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace sub event: %w", err)
	}
	return nil
}
