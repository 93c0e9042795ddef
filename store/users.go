package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
)

// UserStore covers the slice of the principal record the engine needs:
// the ban flag and the issuesReported counter.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll}
}

func (s *UserStore) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

func (s *UserStore) SetBan(ctx context.Context, id primitive.ObjectID, banned bool, reason string) error {
	update := bson.M{"isBanned": banned, "banReason": reason}
	if !banned {
		update["banReason"] = ""
	}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustIssuesReported applies an atomic delta to the user's issue count.
func (s *UserStore) AdjustIssuesReported(ctx context.Context, id primitive.ObjectID, delta int64) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"issuesReported": delta}},
	)
	return err
}
