package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/store"
)

// In-memory fakes implementing the store interfaces, behavioral enough
// to exercise the engine rules without a database.

type fakeIssueStore struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]*models.Issue
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{issues: make(map[primitive.ObjectID]*models.Issue)}
}

func (f *fakeIssueStore) Insert(_ context.Context, issue *models.Issue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *issue
	f.issues[issue.ID] = &copied
	return nil
}

func (f *fakeIssueStore) Get(_ context.Context, id primitive.ObjectID) (models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return models.Issue{}, store.ErrNotFound
	}
	return *issue, nil
}

func (f *fakeIssueStore) GetAndIncrementViews(_ context.Context, id primitive.ObjectID) (models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return models.Issue{}, store.ErrNotFound
	}
	issue.Views++
	return *issue, nil
}

func (f *fakeIssueStore) Find(_ context.Context, filter store.IssueFilter, p store.Page) ([]models.Issue, store.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]models.Issue, 0)
	for _, issue := range f.issues {
		if filter.Visible != nil && issue.IsVisible != *filter.Visible {
			continue
		}
		if filter.Category != "" && filter.Category != "all" && string(issue.Category) != filter.Category {
			continue
		}
		if filter.Status != "" && filter.Status != "all" && string(issue.Status) != filter.Status {
			continue
		}
		if filter.Reporter != nil && (issue.User == nil || *issue.User != *filter.Reporter) {
			continue
		}
		if filter.Center != nil && filter.RadiusMeters > 0 {
			d := haversineMeters(
				filter.Center.Latitude, filter.Center.Longitude,
				issue.Location.Latitude(), issue.Location.Longitude())
			if d > filter.RadiusMeters {
				continue
			}
		}
		matched = append(matched, *issue)
	}

	sort.Slice(matched, func(i, j int) bool {
		var less bool
		switch p.Sort {
		case "upvotes":
			less = matched[i].Upvotes < matched[j].Upvotes
		case "views":
			less = matched[i].Views < matched[j].Views
		case "spamVotes":
			less = matched[i].SpamVotes < matched[j].SpamVotes
		default:
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		if p.Order < 0 {
			return !less
		}
		return less
	})

	total := int64(len(matched))
	start := int(p.Skip())
	if start > len(matched) {
		start = len(matched)
	}
	end := start + p.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end], store.NewPagination(total, p), nil
}

func (f *fakeIssueStore) ApplyStatus(_ context.Context, id primitive.ObjectID, u store.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return store.ErrNotFound
	}
	if issue.Status != u.Previous {
		return store.ErrStale
	}
	issue.Status = u.Status
	issue.LastStatusUpdate = u.At
	if u.Priority != "" {
		issue.Priority = u.Priority
	}
	if u.EstimatedResolutionTime != "" {
		issue.EstimatedResolutionTime = u.EstimatedResolutionTime
	}
	if u.AdminNotes != "" {
		issue.AdminNotes = u.AdminNotes
	}
	return nil
}

func (f *fakeIssueStore) AdjustUpvotes(_ context.Context, id primitive.ObjectID, delta int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	issue.Upvotes += delta
	return issue.Upvotes, nil
}

func (f *fakeIssueStore) RaiseSpamCount(_ context.Context, id primitive.ObjectID, count int64, hide bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return store.ErrNotFound
	}
	if count > issue.SpamVotes {
		issue.SpamVotes = count
	}
	if hide {
		issue.IsVisible = false
	}
	return nil
}

func (f *fakeIssueStore) ResetSpamCount(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return store.ErrNotFound
	}
	issue.SpamVotes = 0
	return nil
}

func (f *fakeIssueStore) SetVisibility(_ context.Context, id primitive.ObjectID, visible bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[id]
	if !ok {
		return store.ErrNotFound
	}
	issue.IsVisible = visible
	return nil
}

func (f *fakeIssueStore) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.issues[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.issues, id)
	return nil
}

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6378137.0
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}

type fakeVoteStore struct {
	mu    sync.Mutex
	votes map[string]models.Vote
}

func newFakeVoteStore() *fakeVoteStore {
	return &fakeVoteStore{votes: make(map[string]models.Vote)}
}

func voteKey(issueID, userID primitive.ObjectID) string {
	return issueID.Hex() + ":" + userID.Hex()
}

func (f *fakeVoteStore) Insert(_ context.Context, vote models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey(vote.Issue, vote.User)
	if _, ok := f.votes[key]; ok {
		return store.ErrDuplicate
	}
	f.votes[key] = vote
	return nil
}

func (f *fakeVoteStore) Exists(_ context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.votes[voteKey(issueID, userID)]
	return ok, nil
}

func (f *fakeVoteStore) Delete(_ context.Context, issueID, userID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := voteKey(issueID, userID)
	if _, ok := f.votes[key]; !ok {
		return false, nil
	}
	delete(f.votes, key)
	return true, nil
}

func (f *fakeVoteStore) DeleteByIssue(_ context.Context, issueID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, vote := range f.votes {
		if vote.Issue == issueID {
			delete(f.votes, key)
		}
	}
	return nil
}

type fakeSpamReportStore struct {
	mu      sync.Mutex
	reports map[primitive.ObjectID]models.SpamReport
}

func newFakeSpamReportStore() *fakeSpamReportStore {
	return &fakeSpamReportStore{reports: make(map[primitive.ObjectID]models.SpamReport)}
}

func (f *fakeSpamReportStore) Insert(_ context.Context, report models.SpamReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reports {
		if existing.Issue == report.Issue && existing.Reporter == report.Reporter {
			return store.ErrDuplicate
		}
	}
	f.reports[report.ID] = report
	return nil
}

func (f *fakeSpamReportStore) Get(_ context.Context, id primitive.ObjectID) (models.SpamReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return models.SpamReport{}, store.ErrNotFound
	}
	return report, nil
}

func (f *fakeSpamReportStore) CountByIssue(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, report := range f.reports {
		if report.Issue == issueID {
			count++
		}
	}
	return count, nil
}

func (f *fakeSpamReportStore) Review(_ context.Context, id primitive.ObjectID, status models.SpamReportStatus, reviewer primitive.ObjectID, actionTaken string, at time.Time) (models.SpamReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	report, ok := f.reports[id]
	if !ok {
		return models.SpamReport{}, store.ErrNotFound
	}
	report.Status = status
	report.ReviewedBy = &reviewer
	report.ReviewedAt = &at
	if actionTaken != "" {
		report.ActionTaken = actionTaken
	}
	f.reports[id] = report
	return report, nil
}

func (f *fakeSpamReportStore) Find(_ context.Context, filter store.SpamReportFilter, p store.Page) ([]models.SpamReport, store.Pagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := make([]models.SpamReport, 0)
	for _, report := range f.reports {
		if filter.Status != "" && filter.Status != "all" && string(report.Status) != filter.Status {
			continue
		}
		if filter.Issue != nil && report.Issue != *filter.Issue {
			continue
		}
		matched = append(matched, report)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, store.NewPagination(int64(len(matched)), p), nil
}

func (f *fakeSpamReportStore) DeleteByIssue(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var deleted int64
	for id, report := range f.reports {
		if report.Issue == issueID {
			delete(f.reports, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeActivityStore struct {
	mu      sync.Mutex
	entries []models.Activity
}

func newFakeActivityStore() *fakeActivityStore { return &fakeActivityStore{} }

func (f *fakeActivityStore) Append(_ context.Context, activity models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, activity)
	return nil
}

func (f *fakeActivityStore) ListByIssue(_ context.Context, issueID primitive.ObjectID) ([]models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	activities := make([]models.Activity, 0)
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].Issue == issueID {
			activities = append(activities, f.entries[i])
		}
	}
	return activities, nil
}

func (f *fakeActivityStore) DeleteByIssue(_ context.Context, issueID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.entries[:0]
	for _, entry := range f.entries {
		if entry.Issue != issueID {
			kept = append(kept, entry)
		}
	}
	f.entries = kept
	return nil
}

type fakeUserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) Get(_ context.Context, id primitive.ObjectID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return *user, nil
}

func (f *fakeUserStore) SetBan(_ context.Context, id primitive.ObjectID, banned bool, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.IsBanned = banned
	user.BanReason = reason
	return nil
}

func (f *fakeUserStore) AdjustIssuesReported(_ context.Context, id primitive.ObjectID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		user.IssuesReported += delta
	}
	return nil
}

// fakeMediaStore records uploads and deletions; failAt makes the n-th
// upload fail (1-based) to exercise compensation.
type fakeMediaStore struct {
	mu      sync.Mutex
	failAt  int
	uploads int
	stored  []string
	deleted []string
}

func (f *fakeMediaStore) Upload(_ context.Context, _ io.Reader, _ int64, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.failAt > 0 && f.uploads >= f.failAt {
		return "", fmt.Errorf("upload rejected")
	}
	url := fmt.Sprintf("https://media.test/object-%d", f.uploads)
	f.stored = append(f.stored, url)
	return url, nil
}

func (f *fakeMediaStore) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

type fakeGeocoder struct {
	address string
	err     error
}

func (f *fakeGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return f.address, f.err
}
