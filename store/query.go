package store

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Pagination caps. Public callers never page more than 50 at a time,
// admin listings up to 100.
const (
	PublicMaxLimit     = 50
	AdminMaxLimit      = 100
	DefaultPublicLimit = 10
	DefaultAdminLimit  = 20
)

// earthRadiusMeters converts a metric radius into the radians
// $centerSphere expects.
const earthRadiusMeters = 6378137.0

// Sort keys accepted by issue listings. Anything else falls back to
// creation time.
var issueSortFields = map[string]string{
	"createdAt": "createdAt",
	"upvotes":   "upvotes",
	"views":     "views",
	"spamVotes": "spamVotes",
}

// Page is the normalized read plan for one listing call.
type Page struct {
	Number int
	Limit  int
	Sort   string
	Order  int // 1 ascending, -1 descending
}

// NewPage floors the page to 1, caps the limit and resolves the sort
// key. maxLimit distinguishes the public cap from the admin cap.
func NewPage(page, limit int, sort, order string, defaultLimit, maxLimit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	field, ok := issueSortFields[sort]
	if !ok {
		field = "createdAt"
	}
	direction := -1
	if order == "asc" {
		direction = 1
	}
	return Page{Number: page, Limit: limit, Sort: field, Order: direction}
}

func (p Page) Skip() int64 { return int64((p.Number - 1) * p.Limit) }

func (p Page) SortSpec() bson.D {
	return bson.D{{Key: p.Sort, Value: p.Order}}
}

// Pagination is the envelope every listing returns.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNext     bool  `json:"hasNext"`
	HasPrev     bool  `json:"hasPrev"`
}

// NewPagination computes the envelope from a count of the same filter.
func NewPagination(total int64, p Page) Pagination {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		CurrentPage: p.Number,
		TotalPages:  totalPages,
		TotalItems:  total,
		HasNext:     p.Number < totalPages,
		HasPrev:     p.Number > 1,
	}
}

// GeoCenter is a query center point in degrees.
type GeoCenter struct {
	Latitude  float64
	Longitude float64
}

// SpamBucket buckets issues by how close their spam count is to the
// auto-hide threshold.
const (
	SpamBucketNone   = "none"
	SpamBucketMedium = "medium"
	SpamBucketHigh   = "high"
)

// IssueFilter is the typed filter every issue listing is lowered from.
// Zero values mean "no restriction" except Visible, which public
// listings always set.
type IssueFilter struct {
	Category string
	Status   string
	Search   string
	Priority string

	// Visible restricts on isVisible when non-nil. Public listings pin
	// it to true; admin listings may leave it nil to audit hidden issues.
	Visible *bool

	Reporter *primitive.ObjectID

	// Geo restricts to a spherical radius around Center when
	// RadiusMeters > 0.
	Center       *GeoCenter
	RadiusMeters float64

	// SpamBucket needs the configured threshold to draw its boundaries.
	SpamBucket    string
	SpamThreshold int64

	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// Lower translates the typed filter into the bson document the
// collection is queried with.
func (f IssueFilter) Lower() bson.M {
	filter := bson.M{}

	if f.Category != "" && f.Category != "all" {
		filter["category"] = f.Category
	}
	if f.Status != "" && f.Status != "all" {
		filter["status"] = f.Status
	}
	if f.Priority != "" && f.Priority != "all" {
		filter["priority"] = f.Priority
	}
	if f.Search != "" {
		// Search terms are plain text, never patterns.
		pattern := regexp.QuoteMeta(f.Search)
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": pattern, "$options": "i"}},
			{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}
	if f.Visible != nil {
		filter["isVisible"] = *f.Visible
	}
	if f.Reporter != nil {
		filter["user"] = *f.Reporter
	}
	if f.Center != nil && f.RadiusMeters > 0 {
		filter["location"] = geoWithin(*f.Center, f.RadiusMeters)
	}

	switch f.SpamBucket {
	case SpamBucketNone:
		filter["spamVotes"] = int64(0)
	case SpamBucketMedium:
		filter["spamVotes"] = bson.M{"$gt": int64(0), "$lt": f.SpamThreshold}
	case SpamBucketHigh:
		filter["spamVotes"] = bson.M{"$gte": f.SpamThreshold}
	}

	created := bson.M{}
	if f.CreatedAfter != nil {
		created["$gte"] = *f.CreatedAfter
	}
	if f.CreatedBefore != nil {
		created["$lt"] = *f.CreatedBefore
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}

	return filter
}

// geoWithin builds the spherical inclusion predicate. $centerSphere
// takes [lng, lat] and a radius in radians.
func geoWithin(center GeoCenter, radiusMeters float64) bson.M {
	return bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": []interface{}{
				[]float64{center.Longitude, center.Latitude},
				radiusMeters / earthRadiusMeters,
			},
		},
	}
}

// SpamReportFilter narrows admin spam-report listings.
type SpamReportFilter struct {
	Status string
	Issue  *primitive.ObjectID
}

func (f SpamReportFilter) Lower() bson.M {
	filter := bson.M{}
	if f.Status != "" && f.Status != "all" {
		filter["status"] = f.Status
	}
	if f.Issue != nil {
		filter["issue"] = *f.Issue
	}
	return filter
}
