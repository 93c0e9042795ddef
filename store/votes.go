package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
)

// VoteStore persists the upvote ledger. The unique (issue, user) index
// created by models.EnsureVoteIndex is what makes Insert safe against
// concurrent duplicates.
type VoteStore struct {
	coll *mongo.Collection
}

func NewVoteStore(coll *mongo.Collection) *VoteStore {
	return &VoteStore{coll: coll}
}

func (s *VoteStore) Insert(ctx context.Context, vote models.Vote) error {
	_, err := s.coll.InsertOne(ctx, vote)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *VoteStore) Exists(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"issue": issueID, "user": userID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the (issue, user) vote and reports whether one existed.
func (s *VoteStore) Delete(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	result, err := s.coll.DeleteOne(ctx, bson.M{"issue": issueID, "user": userID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (s *VoteStore) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"issue": issueID})
	return err
}
