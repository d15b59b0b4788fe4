package repository

import (
	"context"

	"delegation-service/internal/domain/entity"
	"delegation-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMemberRepository implements MemberRepository
type MongoMemberRepository struct {
	collection *mongo.Collection
}

// NewMongoMemberRepository creates a new member repository
func NewMongoMemberRepository(db *mongo.Database) repository.MemberRepository {
	collection := db.Collection("members")

	// Both reference key names are queried by older tooling
	collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.M{"delegationId": 1}},
		{Keys: bson.M{"delegation_id": 1}},
	})

	return &MongoMemberRepository{
		collection: collection,
	}
}

// List returns members in creation order
func (r *MongoMemberRepository) List(ctx context.Context) ([]entity.Member, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var members []entity.Member
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Save creates or replaces a member. The stored createdAt is kept on update.
func (r *MongoMemberRepository) Save(ctx context.Context, member *entity.Member) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": member.ID},
		bson.M{
			"$set": memberFields(member),
			"$setOnInsert": bson.M{
				"createdAt": member.CreatedAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// memberFields lists the fields written on every save. _id and createdAt are
// never overwritten, and a legacy reference is only written when present.
func memberFields(member *entity.Member) bson.M {
	fields := bson.M{
		"rank":                   member.Rank,
		"name":                   member.Name,
		"jobTitle":               member.JobTitle,
		"equivalentPositionId":   member.EquivalentPositionID,
		"equivalentPositionName": member.EquivalentPositionName,
		"delegationId":           member.DelegationID,
		"memberStatus":           member.Status,
		"departureDate":          member.DepartureDate,
		"updatedAt":              member.UpdatedAt,
	}
	if member.LegacyDelegationID != "" {
		fields["delegation_id"] = member.LegacyDelegationID
	}
	return fields
}

// Delete removes a member by id
func (r *MongoMemberRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
