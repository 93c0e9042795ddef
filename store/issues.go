package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
)

// IssueStore persists issues in the issues collection.
type IssueStore struct {
	coll *mongo.Collection
}

func NewIssueStore(coll *mongo.Collection) *IssueStore {
	return &IssueStore{coll: coll}
}

// EnsureIssueIndexes creates the 2dsphere index the geo filter relies on.
func EnsureIssueIndexes(coll *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "location", Value: "2dsphere"}},
	}

	_, err := coll.Indexes().CreateOne(ctx, indexModel)
	return err
}

func (s *IssueStore) Insert(ctx context.Context, issue *models.Issue) error {
	_, err := s.coll.InsertOne(ctx, issue)
	return err
}

func (s *IssueStore) Get(ctx context.Context, id primitive.ObjectID) (models.Issue, error) {
	var issue models.Issue
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Issue{}, ErrNotFound
	}
	return issue, err
}

// GetAndIncrementViews fetches the issue while counting the view in the
// same write, so concurrent fetches never lose an increment.
func (s *IssueStore) GetAndIncrementViews(ctx context.Context, id primitive.ObjectID) (models.Issue, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var issue models.Issue
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
		opts,
	).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Issue{}, ErrNotFound
	}
	return issue, err
}

func (s *IssueStore) Find(ctx context.Context, f IssueFilter, p Page) ([]models.Issue, Pagination, error) {
	filter := f.Lower()

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	findOptions := options.Find().
		SetSort(p.SortSpec()).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer cursor.Close(ctx)

	issues := make([]models.Issue, 0, p.Limit)
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, Pagination{}, err
	}

	return issues, NewPagination(total, p), nil
}

// StatusUpdate is the set of fields an accepted transition writes.
// Empty optional fields are left untouched. Previous is the status the
// transition was validated against.
type StatusUpdate struct {
	Status                  models.IssueStatus
	Previous                models.IssueStatus
	At                      time.Time
	Priority                models.IssuePriority
	EstimatedResolutionTime string
	AdminNotes              string
}

// ApplyStatus writes the transition, filtering on the status it was
// validated against. A concurrent update that moved the issue first
// makes the filter miss and the write is rejected with ErrStale.
func (s *IssueStore) ApplyStatus(ctx context.Context, id primitive.ObjectID, u StatusUpdate) error {
	set := bson.M{
		"status":           u.Status,
		"lastStatusUpdate": u.At,
	}
	if u.Priority != "" {
		set["priority"] = u.Priority
	}
	if u.EstimatedResolutionTime != "" {
		set["estimatedResolutionTime"] = u.EstimatedResolutionTime
	}
	if u.AdminNotes != "" {
		set["adminNotes"] = u.AdminNotes
	}

	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": u.Previous},
		bson.M{"$set": set},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		count, err := s.coll.CountDocuments(ctx, bson.M{"_id": id})
		if err == nil && count == 0 {
			return ErrNotFound
		}
		return ErrStale
	}
	return nil
}

// AdjustUpvotes applies an atomic delta to the upvote counter and
// returns the new value.
func (s *IssueStore) AdjustUpvotes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"upvotes": 1})

	var doc struct {
		Upvotes int64 `bson:"upvotes"`
	}
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"upvotes": delta}},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	return doc.Upvotes, err
}

// RaiseSpamCount writes a recomputed spam vote count. The write goes
// through $max so a reporter holding a stale count can never lower the
// stored value below a newer recompute; hiding rides the same update.
func (s *IssueStore) RaiseSpamCount(ctx context.Context, id primitive.ObjectID, count int64, hide bool) error {
	update := bson.M{"$max": bson.M{"spamVotes": count}}
	if hide {
		update["$set"] = bson.M{"isVisible": false}
	}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetSpamCount zeroes the spam vote count; only admin restore may
// move the counter down.
func (s *IssueStore) ResetSpamCount(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"spamVotes": int64(0)}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *IssueStore) SetVisibility(ctx context.Context, id primitive.ObjectID, visible bool) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isVisible": visible}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *IssueStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
