package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
)

// ActivityStore persists the append-only audit trail.
type ActivityStore struct {
	coll *mongo.Collection
}

func NewActivityStore(coll *mongo.Collection) *ActivityStore {
	return &ActivityStore{coll: coll}
}

func (s *ActivityStore) Append(ctx context.Context, activity models.Activity) error {
	_, err := s.coll.InsertOne(ctx, activity)
	return err
}

// ListByIssue returns the issue's timeline newest-first.
func (s *ActivityStore) ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.Activity, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{"issue": issueID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	activities := make([]models.Activity, 0)
	if err := cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (s *ActivityStore) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{"issue": issueID})
	return err
}
