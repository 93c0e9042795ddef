package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Road        IssueCategory = "Road"
	Water       IssueCategory = "Water"
	Cleanliness IssueCategory = "Cleanliness"
	Lighting    IssueCategory = "Lighting"
	Safety      IssueCategory = "Safety"
)

// ValidCategory reports whether s is one of the known issue categories.
func ValidCategory(s string) bool {
	switch IssueCategory(s) {
	case Road, Water, Cleanliness, Lighting, Safety:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Reported   IssueStatus = "Reported"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
)

func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case Reported, InProgress, Resolved:
		return true
	}
	return false
}

// CanTransition reports whether an issue may move from one status to
// another. Resolved is terminal and same-state updates are not allowed.
func CanTransition(from, to IssueStatus) bool {
	switch from {
	case Reported:
		return to == InProgress || to == Resolved
	case InProgress:
		return to == Resolved
	default:
		return false
	}
}

// IssuePriority enum
type IssuePriority string

const (
	PriorityLow      IssuePriority = "Low"
	PriorityMedium   IssuePriority = "Medium"
	PriorityHigh     IssuePriority = "High"
	PriorityCritical IssuePriority = "Critical"
)

func ValidPriority(s string) bool {
	switch IssuePriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// GeoPoint is a GeoJSON point, coordinates ordered [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }
func (p GeoPoint) Latitude() float64  { return p.Coordinates[1] }

// Issue represents a civic issue reported by a user
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    IssueCategory      `bson:"category" json:"category"`
	Status      IssueStatus        `bson:"status" json:"status"`
	IsVisible   bool               `bson:"isVisible" json:"isVisible"`

	// User is nil for anonymous issues even when the reporter is known.
	User        *primitive.ObjectID `bson:"user,omitempty" json:"user,omitempty"`
	IsAnonymous bool                `bson:"isAnonymous" json:"isAnonymous"`

	Location GeoPoint `bson:"location" json:"location"`
	Address  string   `bson:"address,omitempty" json:"address,omitempty"`

	Images []string `bson:"images" json:"images"`

	Views     int64 `bson:"views" json:"views"`
	Upvotes   int64 `bson:"upvotes" json:"upvotes"`
	SpamVotes int64 `bson:"spamVotes" json:"spamVotes"`

	Priority                IssuePriority `bson:"priority" json:"priority"`
	EstimatedResolutionTime string        `bson:"estimatedResolutionTime,omitempty" json:"estimatedResolutionTime,omitempty"`
	AdminNotes              string        `bson:"adminNotes,omitempty" json:"adminNotes,omitempty"`

	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
	LastStatusUpdate time.Time `bson:"lastStatusUpdate" json:"lastStatusUpdate"`
}
