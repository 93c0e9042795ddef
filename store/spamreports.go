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

// SpamReportStore persists community spam reports. Duplicate reports
// from the same reporter are rejected by the unique (issue, reporter)
// index, mirroring the upvote ledger.
type SpamReportStore struct {
	coll *mongo.Collection
}

func NewSpamReportStore(coll *mongo.Collection) *SpamReportStore {
	return &SpamReportStore{coll: coll}
}

func (s *SpamReportStore) Insert(ctx context.Context, report models.SpamReport) error {
	_, err := s.coll.InsertOne(ctx, report)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *SpamReportStore) Get(ctx context.Context, id primitive.ObjectID) (models.SpamReport, error) {
	var report models.SpamReport
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SpamReport{}, ErrNotFound
	}
	return report, err
}

func (s *SpamReportStore) CountByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"issue": issueID})
}

// Review applies an admin decision to a report. Metadata only; issue
// visibility is never touched from here.
func (s *SpamReportStore) Review(ctx context.Context, id primitive.ObjectID, status models.SpamReportStatus, reviewer primitive.ObjectID, actionTaken string, at time.Time) (models.SpamReport, error) {
	set := bson.M{
		"status":     status,
		"reviewedBy": reviewer,
		"reviewedAt": at,
	}
	if actionTaken != "" {
		set["actionTaken"] = actionTaken
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var report models.SpamReport
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SpamReport{}, ErrNotFound
	}
	return report, err
}

func (s *SpamReportStore) Find(ctx context.Context, f SpamReportFilter, p Page) ([]models.SpamReport, Pagination, error) {
	filter := f.Lower()

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, Pagination{}, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer cursor.Close(ctx)

	reports := make([]models.SpamReport, 0, p.Limit)
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, Pagination{}, err
	}

	return reports, NewPagination(total, p), nil
}

func (s *SpamReportStore) DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"issue": issueID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
