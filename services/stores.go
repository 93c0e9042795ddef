package services

import (
	"context"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/store"
)

// The services depend on narrow store interfaces so each one can be
// exercised against fakes. The mongo implementations live in store/.

type IssueStore interface {
	Insert(ctx context.Context, issue *models.Issue) error
	Get(ctx context.Context, id primitive.ObjectID) (models.Issue, error)
	GetAndIncrementViews(ctx context.Context, id primitive.ObjectID) (models.Issue, error)
	Find(ctx context.Context, f store.IssueFilter, p store.Page) ([]models.Issue, store.Pagination, error)
	ApplyStatus(ctx context.Context, id primitive.ObjectID, u store.StatusUpdate) error
	AdjustUpvotes(ctx context.Context, id primitive.ObjectID, delta int64) (int64, error)
	RaiseSpamCount(ctx context.Context, id primitive.ObjectID, count int64, hide bool) error
	ResetSpamCount(ctx context.Context, id primitive.ObjectID) error
	SetVisibility(ctx context.Context, id primitive.ObjectID, visible bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type VoteStore interface {
	Insert(ctx context.Context, vote models.Vote) error
	Exists(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error)
	Delete(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error)
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) error
}

type SpamReportStore interface {
	Insert(ctx context.Context, report models.SpamReport) error
	Get(ctx context.Context, id primitive.ObjectID) (models.SpamReport, error)
	CountByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
	Review(ctx context.Context, id primitive.ObjectID, status models.SpamReportStatus, reviewer primitive.ObjectID, actionTaken string, at time.Time) (models.SpamReport, error)
	Find(ctx context.Context, f store.SpamReportFilter, p store.Page) ([]models.SpamReport, store.Pagination, error)
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) (int64, error)
}

type ActivityStore interface {
	Append(ctx context.Context, activity models.Activity) error
	ListByIssue(ctx context.Context, issueID primitive.ObjectID) ([]models.Activity, error)
	DeleteByIssue(ctx context.Context, issueID primitive.ObjectID) error
}

type UserStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	SetBan(ctx context.Context, id primitive.ObjectID, banned bool, reason string) error
	AdjustIssuesReported(ctx context.Context, id primitive.ObjectID, delta int64) error
}

// MediaStore is the external image store. The engine only ever holds the
// returned URLs.
type MediaStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// Geocoder enriches a coordinate pair with a human-readable address.
// Best effort only; a failure must never fail the calling operation.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}
