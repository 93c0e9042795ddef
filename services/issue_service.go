package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/store"
)

// IssueService orchestrates the issue lifecycle: creation with media
// and geocoding collaborators, view-counted reads, status transitions
// and cascading deletes.
type IssueService struct {
	issues   IssueStore
	votes    VoteStore
	reports  SpamReportStore
	activity ActivityStore
	users    UserStore
	media    MediaStore
	geocoder Geocoder
}

func NewIssueService(issues IssueStore, votes VoteStore, reports SpamReportStore, activity ActivityStore, users UserStore, media MediaStore, geocoder Geocoder) *IssueService {
	return &IssueService{
		issues:   issues,
		votes:    votes,
		reports:  reports,
		activity: activity,
		users:    users,
		media:    media,
		geocoder: geocoder,
	}
}

// ImageUpload is one raw image handed to the media collaborator.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// CreateIssueInput carries everything needed to file a new issue.
type CreateIssueInput struct {
	Title       string
	Description string
	Category    string
	Latitude    float64
	Longitude   float64
	Address     string
	IsAnonymous bool
	Images      []ImageUpload
}

// Create validates the input, uploads images through the media
// collaborator (deleting already-uploaded ones if a later upload
// fails), resolves a best-effort address and files the issue.
func (s *IssueService) Create(ctx context.Context, input CreateIssueInput, reporter primitive.ObjectID) (models.Issue, error) {
	if !models.ValidCategory(input.Category) {
		return models.Issue{}, Validation("invalid category")
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		return models.Issue{}, Validation("latitude must be between -90 and 90")
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return models.Issue{}, Validation("longitude must be between -180 and 180")
	}

	urls, err := s.uploadImages(ctx, input.Images)
	if err != nil {
		return models.Issue{}, err
	}

	address := input.Address
	if address == "" && s.geocoder != nil {
		resolved, err := s.geocoder.ReverseGeocode(ctx, input.Latitude, input.Longitude)
		if err != nil {
			logrus.WithError(err).Warn("reverse geocoding failed, storing issue without address")
		} else {
			address = resolved
		}
	}

	now := time.Now()
	issue := models.Issue{
		ID:          primitive.NewObjectID(),
		Title:       input.Title,
		Description: input.Description,
		Category:    models.IssueCategory(input.Category),
		Status:      models.Reported,
		IsVisible:   true,
		IsAnonymous: input.IsAnonymous,
		Location:    models.NewGeoPoint(input.Longitude, input.Latitude),
		Address:     address,
		Images:      urls,
		Priority:    models.PriorityMedium,

		CreatedAt:        now,
		LastStatusUpdate: now,
	}
	if !input.IsAnonymous {
		issue.User = &reporter
	}

	if err := s.issues.Insert(ctx, &issue); err != nil {
		s.cleanupImages(ctx, urls)
		return models.Issue{}, Internal("failed to create issue", err)
	}

	activity := models.Activity{
		ID:        primitive.NewObjectID(),
		Issue:     issue.ID,
		Action:    models.ActionCreated,
		Actor:     issue.User,
		CreatedAt: now,
	}
	if err := s.activity.Append(ctx, activity); err != nil {
		logrus.WithError(err).WithField("issue", issue.ID.Hex()).
			Error("failed to append creation activity")
	}

	if err := s.users.AdjustIssuesReported(ctx, reporter, 1); err != nil {
		logrus.WithError(err).WithField("user", reporter.Hex()).
			Error("failed to increment reporter issue count")
	}

	return issue, nil
}

// uploadImages pushes each image to the media store. On failure the
// already-uploaded objects are deleted before the error surfaces;
// cleanup failures are logged and never mask the upload error.
func (s *IssueService) uploadImages(ctx context.Context, images []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))
	for _, image := range images {
		url, err := s.media.Upload(ctx, image.Reader, image.Size, image.ContentType)
		if err != nil {
			s.cleanupImages(ctx, urls)
			return nil, External("image upload failed", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *IssueService) cleanupImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.media.Delete(ctx, url); err != nil {
			logrus.WithError(err).WithField("url", url).
				Error("failed to delete uploaded image during cleanup")
		}
	}
}

// GetByID returns the issue, counting the view. Every successful fetch
// increments views; there is no per-viewer deduplication.
func (s *IssueService) GetByID(ctx context.Context, id primitive.ObjectID) (models.Issue, error) {
	issue, err := s.issues.GetAndIncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Issue{}, NotFound("issue")
		}
		return models.Issue{}, Internal("failed to load issue", err)
	}
	return issue, nil
}

// StatusUpdateInput carries a requested transition and its optional
// moderation metadata.
type StatusUpdateInput struct {
	Status                  string
	Note                    string
	Priority                string
	EstimatedResolutionTime string
	AdminNotes              string
}

// UpdateStatus validates the requested edge against the state machine
// and applies it, appending one activity record with the previous
// status. The issue is left untouched on a rejected edge.
func (s *IssueService) UpdateStatus(ctx context.Context, id primitive.ObjectID, input StatusUpdateInput, actor primitive.ObjectID) (models.Issue, error) {
	if !models.ValidStatus(input.Status) {
		return models.Issue{}, Validation("invalid status")
	}
	if input.Priority != "" && !models.ValidPriority(input.Priority) {
		return models.Issue{}, Validation("invalid priority")
	}

	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Issue{}, NotFound("issue")
		}
		return models.Issue{}, Internal("failed to load issue", err)
	}

	requested := models.IssueStatus(input.Status)
	if !models.CanTransition(issue.Status, requested) {
		return models.Issue{}, &TransitionError{Current: issue.Status, Requested: requested}
	}

	now := time.Now()
	update := store.StatusUpdate{
		Status:                  requested,
		Previous:                issue.Status,
		At:                      now,
		Priority:                models.IssuePriority(input.Priority),
		EstimatedResolutionTime: input.EstimatedResolutionTime,
		AdminNotes:              input.AdminNotes,
	}
	if err := s.issues.ApplyStatus(ctx, id, update); err != nil {
		if errors.Is(err, store.ErrStale) {
			// Someone else moved the issue between our read and write,
			// so the requested edge was validated against a status that
			// is no longer there.
			return models.Issue{}, Conflict("issue status changed concurrently, please retry")
		}
		if errors.Is(err, store.ErrNotFound) {
			return models.Issue{}, NotFound("issue")
		}
		return models.Issue{}, Internal("failed to update status", err)
	}

	activity := models.Activity{
		ID:     primitive.NewObjectID(),
		Issue:  id,
		Action: models.ActionStatusUpdated,
		Note:   input.Note,
		Actor:  &actor,
		Meta: &models.ActivityMeta{
			PreviousStatus:          issue.Status,
			Priority:                models.IssuePriority(input.Priority),
			EstimatedResolutionTime: input.EstimatedResolutionTime,
			AdminNotes:              input.AdminNotes,
		},
		CreatedAt: now,
	}
	if err := s.activity.Append(ctx, activity); err != nil {
		logrus.WithError(err).WithField("issue", id.Hex()).
			Error("failed to append status activity")
	}

	updated, err := s.issues.Get(ctx, id)
	if err != nil {
		return models.Issue{}, Internal("failed to load issue", err)
	}
	return updated, nil
}

// Delete removes the issue and everything hanging off it. Only the
// reporter or an admin may delete. The sequence is not transactional; a
// failure mid-way can orphan data, which is logged loudly rather than
// hidden.
func (s *IssueService) Delete(ctx context.Context, id, principal primitive.ObjectID, isAdmin bool) error {
	issue, err := s.issues.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("issue")
		}
		return Internal("failed to load issue", err)
	}

	owner := issue.User != nil && *issue.User == principal
	if !isAdmin && !owner {
		return Authorization("you are not allowed to delete this issue")
	}

	if err := s.activity.DeleteByIssue(ctx, id); err != nil {
		return Internal("failed to delete issue activity", err)
	}
	if _, err := s.reports.DeleteByIssue(ctx, id); err != nil {
		return Internal("failed to delete spam reports", err)
	}
	if err := s.votes.DeleteByIssue(ctx, id); err != nil {
		return Internal("failed to delete votes", err)
	}

	for _, url := range issue.Images {
		if err := s.media.Delete(ctx, url); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"issue": id.Hex(),
				"url":   url,
			}).Error("failed to delete stored image")
		}
	}

	if issue.User != nil {
		if err := s.users.AdjustIssuesReported(ctx, *issue.User, -1); err != nil {
			logrus.WithError(err).WithField("user", issue.User.Hex()).
				Error("failed to decrement reporter issue count")
		}
	}

	if err := s.issues.Delete(ctx, id); err != nil {
		return Internal("failed to delete issue", err)
	}
	return nil
}

// List runs a public or admin listing with the standard envelope.
func (s *IssueService) List(ctx context.Context, f store.IssueFilter, p store.Page) ([]models.Issue, store.Pagination, error) {
	issues, pagination, err := s.issues.Find(ctx, f, p)
	if err != nil {
		return nil, store.Pagination{}, Internal("failed to list issues", err)
	}
	return issues, pagination, nil
}

// Nearby lists visible issues within radiusMeters of the center.
func (s *IssueService) Nearby(ctx context.Context, center store.GeoCenter, radiusMeters float64, p store.Page) ([]models.Issue, store.Pagination, error) {
	if center.Latitude < -90 || center.Latitude > 90 {
		return nil, store.Pagination{}, Validation("latitude must be between -90 and 90")
	}
	if center.Longitude < -180 || center.Longitude > 180 {
		return nil, store.Pagination{}, Validation("longitude must be between -180 and 180")
	}
	if radiusMeters <= 0 {
		return nil, store.Pagination{}, Validation("distance must be positive")
	}

	visible := true
	filter := store.IssueFilter{
		Visible:      &visible,
		Center:       &center,
		RadiusMeters: radiusMeters,
	}
	return s.List(ctx, filter, p)
}

// ActivityTimeline returns the issue's audit trail newest-first.
func (s *IssueService) ActivityTimeline(ctx context.Context, issueID primitive.ObjectID) ([]models.Activity, error) {
	if _, err := s.issues.Get(ctx, issueID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFound("issue")
		}
		return nil, Internal("failed to load issue", err)
	}

	activities, err := s.activity.ListByIssue(ctx, issueID)
	if err != nil {
		return nil, Internal("failed to load activity", err)
	}
	return activities, nil
}
