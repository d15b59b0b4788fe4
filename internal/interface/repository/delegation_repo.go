package repository

import (
	"context"
	"errors"
	"time"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDelegationRepository implements DelegationRepository
type MongoDelegationRepository struct {
	collection *mongo.Collection
	sessions   *mongo.Collection
}

// NewMongoDelegationRepository creates a new delegation repository
func NewMongoDelegationRepository(db *mongo.Database) repository.DelegationRepository {
	collection := db.Collection("delegations")
	sessions := db.Collection("departure_sessions")

	ctx := context.Background()
	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"subEventId": 1}},
		{Keys: bson.M{"memberIds": 1}},
	})
	sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.M{"delegationId": 1},
	})

	return &MongoDelegationRepository{
		collection: collection,
		sessions:   sessions,
	}
}

// List returns delegations in creation order; embedded sessions keep their stored order
func (r *MongoDelegationRepository) List(ctx context.Context) ([]entity.Delegation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var delegations []entity.Delegation
	if err := cursor.All(ctx, &delegations); err != nil {
		return nil, err
	}
	return delegations, nil
}

// FindByID finds a delegation by id
func (r *MongoDelegationRepository) FindByID(ctx context.Context, id string) (*entity.Delegation, error) {
	var delegation entity.Delegation
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&delegation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &delegation, nil
}

// Save creates or replaces a delegation. Departure sessions already stored are
// preserved when the incoming document carries none.
func (r *MongoDelegationRepository) Save(ctx context.Context, delegation *entity.Delegation) error {
	set := bson.M{
		"nationality": delegation.NationalityLabel,
		"headName":    delegation.HeadName,
		"memberCount": delegation.DeclaredMemberCount,
		"subEventId":  delegation.SubEventID,
		"memberIds":   delegation.MemberIDs,
		"arrivalInfo": delegation.Arrival,
		"updatedAt":   delegation.UpdatedAt,
	}
	if len(delegation.DepartureSessions) > 0 {
		set["departureSessions"] = delegation.DepartureSessions
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": delegation.ID},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"createdAt": delegation.CreatedAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// AppendDepartureSession pushes a session to the end of the delegation's session list
func (r *MongoDelegationRepository) AppendDepartureSession(ctx context.Context, delegationID string, session entity.DepartureSession) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": delegationID},
		bson.M{
			"$push": bson.M{"departureSessions": session},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListDetachedSessions returns sessions stored in their own collection, oldest first
func (r *MongoDelegationRepository) ListDetachedSessions(ctx context.Context) ([]entity.DepartureSession, error) {
	cursor, err := r.sessions.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []entity.DepartureSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
