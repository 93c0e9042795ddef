package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity action labels.
const (
	ActionCreated       = "created"
	ActionStatusUpdated = "status updated"
	ActionHidden        = "hidden by admin"
	ActionAutoHidden    = "auto-hidden after community reports"
	ActionRestored      = "restored by admin"
)

// ActivityMeta carries the structured details of a status change.
type ActivityMeta struct {
	PreviousStatus          IssueStatus   `bson:"previousStatus,omitempty" json:"previousStatus,omitempty"`
	Priority                IssuePriority `bson:"priority,omitempty" json:"priority,omitempty"`
	EstimatedResolutionTime string        `bson:"estimatedResolutionTime,omitempty" json:"estimatedResolutionTime,omitempty"`
	AdminNotes              string        `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`
}

// Activity is an append-only audit entry for an issue. Entries are never
// updated; they are only removed in bulk when the issue itself is deleted.
type Activity struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Issue     primitive.ObjectID  `bson:"issue" json:"issue"`
	Action    string              `bson:"action" json:"action"`
	Note      string              `bson:"note,omitempty" json:"note,omitempty"`
	Actor     *primitive.ObjectID `bson:"actor,omitempty" json:"actor,omitempty"`
	Meta      *ActivityMeta       `bson:"meta,omitempty" json:"meta,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
}
