package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SpamReason enum
type SpamReason string

const (
	ReasonFakeReport    SpamReason = "Fake Report"
	ReasonInappropriate SpamReason = "Inappropriate Content"
	ReasonDuplicate     SpamReason = "Duplicate"
	ReasonSpam          SpamReason = "Spam"
	ReasonOther         SpamReason = "Other"
)

func ValidSpamReason(s string) bool {
	switch SpamReason(s) {
	case ReasonFakeReport, ReasonInappropriate, ReasonDuplicate, ReasonSpam, ReasonOther:
		return true
	}
	return false
}

// SpamReportStatus enum
type SpamReportStatus string

const (
	SpamPending     SpamReportStatus = "Pending"
	SpamReviewed    SpamReportStatus = "Reviewed"
	SpamActionTaken SpamReportStatus = "Action Taken"
	SpamDismissed   SpamReportStatus = "Dismissed"
)

// ValidSpamDecision reports whether s is a status an admin review may set.
// Pending is the initial state only.
func ValidSpamDecision(s string) bool {
	switch SpamReportStatus(s) {
	case SpamReviewed, SpamActionTaken, SpamDismissed:
		return true
	}
	return false
}

// SpamReport is one user's spam flag on an issue. At most one per
// (issue, reporter), enforced by a unique index.
type SpamReport struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Issue       primitive.ObjectID  `bson:"issue" json:"issue"`
	Reporter    primitive.ObjectID  `bson:"reporter" json:"reporter"`
	Reason      SpamReason          `bson:"reason" json:"reason"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Status      SpamReportStatus    `bson:"status" json:"status"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time          `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	ActionTaken string              `bson:"actionTaken,omitempty" json:"actionTaken,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// EnsureSpamReportIndex creates a unique compound index for (issue, reporter)
func EnsureSpamReportIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "issue", Value: 1}, {Key: "reporter", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
