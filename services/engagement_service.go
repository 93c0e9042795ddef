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

// EngagementService enforces at most one upvote per (user, issue) and
// keeps the derived counter in step with the vote ledger.
type EngagementService struct {
	issues IssueStore
	votes  VoteStore
}

func NewEngagementService(issues IssueStore, votes VoteStore) *EngagementService {
	return &EngagementService{issues: issues, votes: votes}
}

// ToggleResult reports the user's vote state after a toggle.
type ToggleResult struct {
	Upvoted bool  `json:"upvoted"`
	Upvotes int64 `json:"upvotes"`
}

// ToggleUpvote removes the user's vote if one exists, otherwise casts
// one. The counter moves by an atomic delta only after the ledger write
// succeeds, so a concurrent double-click loses on the unique index and
// never touches the counter.
func (s *EngagementService) ToggleUpvote(ctx context.Context, issueID, userID primitive.ObjectID) (ToggleResult, error) {
	if _, err := s.issues.Get(ctx, issueID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ToggleResult{}, NotFound("issue")
		}
		return ToggleResult{}, Internal("failed to load issue", err)
	}

	exists, err := s.votes.Exists(ctx, issueID, userID)
	if err != nil {
		return ToggleResult{}, Internal("failed to check existing vote", err)
	}

	if exists {
		deleted, err := s.votes.Delete(ctx, issueID, userID)
		if err != nil {
			return ToggleResult{}, Internal("failed to remove vote", err)
		}
		if !deleted {
			// Lost a race with another toggle of the same vote.
			return ToggleResult{}, Conflict("vote already removed")
		}

		upvotes, err := s.issues.AdjustUpvotes(ctx, issueID, -1)
		if err != nil {
			return ToggleResult{}, Internal("failed to update upvote count", err)
		}
		return ToggleResult{Upvoted: false, Upvotes: upvotes}, nil
	}

	vote := models.Vote{
		ID:        primitive.NewObjectID(),
		Issue:     issueID,
		User:      userID,
		CreatedAt: time.Now(),
	}

	if err := s.votes.Insert(ctx, vote); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			logrus.WithFields(logrus.Fields{
				"issue": issueID.Hex(),
				"user":  userID.Hex(),
			}).Warn("duplicate upvote insert rejected by index")
			return ToggleResult{}, Conflict("you have already upvoted this issue")
		}
		return ToggleResult{}, Internal("failed to cast vote", err)
	}

	upvotes, err := s.issues.AdjustUpvotes(ctx, issueID, 1)
	if err != nil {
		return ToggleResult{}, Internal("failed to update upvote count", err)
	}
	return ToggleResult{Upvoted: true, Upvotes: upvotes}, nil
}

// HasUpvoted reports whether the user currently credits the issue.
func (s *EngagementService) HasUpvoted(ctx context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	exists, err := s.votes.Exists(ctx, issueID, userID)
	if err != nil {
		return false, Internal("failed to check vote", err)
	}
	return exists, nil
}
