package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/store"
)

// ModerationService decides issue visibility from community spam
// reports and carries the admin override operations.
type ModerationService struct {
	issues   IssueStore
	reports  SpamReportStore
	activity ActivityStore
	users    UserStore

	// spamThreshold is the distinct-reporter count at which an issue is
	// hidden automatically. Injected, never read from the environment here.
	spamThreshold int64
}

func NewModerationService(issues IssueStore, reports SpamReportStore, activity ActivityStore, users UserStore, spamThreshold int64) *ModerationService {
	return &ModerationService{
		issues:        issues,
		reports:       reports,
		activity:      activity,
		users:         users,
		spamThreshold: spamThreshold,
	}
}

// SpamReportResult is returned when a community spam report is recorded.
type SpamReportResult struct {
	SpamCount int64 `json:"spamCount"`
	Hidden    bool  `json:"hidden"`
}

// RecordSpamReport files a spam report and re-evaluates visibility. The
// unique (issue, reporter) index rejects a duplicate reporter, so two
// concurrent reports from the same user can never double-count.
func (s *ModerationService) RecordSpamReport(ctx context.Context, issueID, reporter primitive.ObjectID, reason, description string) (SpamReportResult, error) {
	if !models.ValidSpamReason(reason) {
		return SpamReportResult{}, Validation("invalid spam report reason")
	}

	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SpamReportResult{}, NotFound("issue")
		}
		return SpamReportResult{}, Internal("failed to load issue", err)
	}

	report := models.SpamReport{
		ID:          primitive.NewObjectID(),
		Issue:       issueID,
		Reporter:    reporter,
		Reason:      models.SpamReason(reason),
		Description: description,
		Status:      models.SpamPending,
		CreatedAt:   time.Now(),
	}

	if err := s.reports.Insert(ctx, report); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return SpamReportResult{}, Conflict("you have already reported this issue")
		}
		return SpamReportResult{}, Internal("failed to record spam report", err)
	}

	// Post-insert recount. The write is monotone ($max), so when two
	// reporters interleave the one holding the higher count wins and a
	// stale recompute can never drag the stored value back down.
	count, err := s.reports.CountByIssue(ctx, issueID)
	if err != nil {
		return SpamReportResult{}, Internal("failed to count spam reports", err)
	}

	crossed := count >= s.spamThreshold
	if err := s.issues.RaiseSpamCount(ctx, issueID, count, crossed); err != nil {
		return SpamReportResult{}, Internal("failed to update spam count", err)
	}

	justHidden := crossed && issue.IsVisible
	if justHidden {
		activity := models.Activity{
			ID:        primitive.NewObjectID(),
			Issue:     issueID,
			Action:    models.ActionAutoHidden,
			CreatedAt: time.Now(),
		}
		if err := s.activity.Append(ctx, activity); err != nil {
			logrus.WithError(err).WithField("issue", issueID.Hex()).
				Error("failed to append auto-hide activity")
		}
		logrus.WithFields(logrus.Fields{
			"issue":     issueID.Hex(),
			"spamCount": count,
		}).Info("issue auto-hidden")
	}

	return SpamReportResult{SpamCount: count, Hidden: justHidden}, nil
}

// ReviewSpamReport applies an admin decision to a single report. It is
// a pure metadata update and never changes issue visibility.
func (s *ModerationService) ReviewSpamReport(ctx context.Context, reportID, reviewer primitive.ObjectID, decision, actionTaken string) (models.SpamReport, error) {
	if !models.ValidSpamDecision(decision) {
		return models.SpamReport{}, Validation("invalid review decision")
	}

	report, err := s.reports.Review(ctx, reportID, models.SpamReportStatus(decision), reviewer, actionTaken, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.SpamReport{}, NotFound("spam report")
		}
		return models.SpamReport{}, Internal("failed to review spam report", err)
	}
	return report, nil
}

// Hide is the admin override: the issue disappears from public listings
// regardless of its spam count.
func (s *ModerationService) Hide(ctx context.Context, issueID, admin primitive.ObjectID, reason string) (models.Issue, error) {
	if err := s.issues.SetVisibility(ctx, issueID, false); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Issue{}, NotFound("issue")
		}
		return models.Issue{}, Internal("failed to hide issue", err)
	}

	activity := models.Activity{
		ID:        primitive.NewObjectID(),
		Issue:     issueID,
		Action:    models.ActionHidden,
		Note:      reason,
		Actor:     &admin,
		CreatedAt: time.Now(),
	}
	if err := s.activity.Append(ctx, activity); err != nil {
		logrus.WithError(err).WithField("issue", issueID.Hex()).
			Error("failed to append hide activity")
	}

	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return models.Issue{}, Internal("failed to load issue", err)
	}
	return issue, nil
}

// Restore makes a hidden issue public again, wipes its spam state and
// notes the manual restoration on the timeline. Status is untouched.
func (s *ModerationService) Restore(ctx context.Context, issueID, admin primitive.ObjectID) (models.Issue, error) {
	if err := s.issues.SetVisibility(ctx, issueID, true); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Issue{}, NotFound("issue")
		}
		return models.Issue{}, Internal("failed to restore issue", err)
	}

	if err := s.issues.ResetSpamCount(ctx, issueID); err != nil {
		return models.Issue{}, Internal("failed to reset spam count", err)
	}

	deleted, err := s.reports.DeleteByIssue(ctx, issueID)
	if err != nil {
		return models.Issue{}, Internal("failed to clear spam reports", err)
	}

	activity := models.Activity{
		ID:        primitive.NewObjectID(),
		Issue:     issueID,
		Action:    models.ActionRestored,
		Actor:     &admin,
		CreatedAt: time.Now(),
	}
	if err := s.activity.Append(ctx, activity); err != nil {
		logrus.WithError(err).WithField("issue", issueID.Hex()).
			Error("failed to append restore activity")
	}

	logrus.WithFields(logrus.Fields{
		"issue":          issueID.Hex(),
		"reportsCleared": deleted,
	}).Info("issue restored by admin")

	issue, err := s.issues.Get(ctx, issueID)
	if err != nil {
		return models.Issue{}, Internal("failed to load issue", err)
	}
	return issue, nil
}

// ListSpamReports is the admin view over filed reports.
func (s *ModerationService) ListSpamReports(ctx context.Context, f store.SpamReportFilter, p store.Page) ([]models.SpamReport, store.Pagination, error) {
	reports, pagination, err := s.reports.Find(ctx, f, p)
	if err != nil {
		return nil, store.Pagination{}, Internal("failed to list spam reports", err)
	}
	return reports, pagination, nil
}

// Ban flags the principal; the auth middleware rejects banned users
// before any engine call. A reason is required.
func (s *ModerationService) Ban(ctx context.Context, userID primitive.ObjectID, reason string) error {
	if reason == "" {
		return Validation("ban reason is required")
	}
	if err := s.users.SetBan(ctx, userID, true, reason); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("user")
		}
		return Internal("failed to ban user", err)
	}
	logrus.WithFields(logrus.Fields{"user": userID.Hex(), "reason": reason}).Info("user banned")
	return nil
}

func (s *ModerationService) Unban(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.users.SetBan(ctx, userID, false, ""); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NotFound("user")
		}
		return Internal("failed to unban user", err)
	}
	logrus.WithField("user", userID.Hex()).Info("user unbanned")
	return nil
}

// SpamThreshold exposes the configured threshold for filter lowering.
func (s *ModerationService) SpamThreshold() int64 { return s.spamThreshold }
