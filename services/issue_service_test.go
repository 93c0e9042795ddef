package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
	"github.com/Aryanpatel8799/civic-track-odoo-sub000/store"
)

type issueFixture struct {
	svc      *IssueService
	issues   *fakeIssueStore
	votes    *fakeVoteStore
	reports  *fakeSpamReportStore
	activity *fakeActivityStore
	users    *fakeUserStore
	media    *fakeMediaStore
	geocoder *fakeGeocoder
}

func newIssueFixture(t *testing.T) *issueFixture {
	t.Helper()
	f := &issueFixture{
		issues:   newFakeIssueStore(),
		votes:    newFakeVoteStore(),
		reports:  newFakeSpamReportStore(),
		activity: newFakeActivityStore(),
		users:    newFakeUserStore(),
		media:    &fakeMediaStore{},
		geocoder: &fakeGeocoder{address: "MG Road, Bengaluru"},
	}
	f.svc = NewIssueService(f.issues, f.votes, f.reports, f.activity, f.users, f.media, f.geocoder)
	return f
}

func validCreateInput() CreateIssueInput {
	return CreateIssueInput{
		Title:       "Pothole near the market",
		Description: "Deep pothole, two-wheelers swerving into traffic",
		Category:    string(models.Road),
		Latitude:    12.9716,
		Longitude:   77.5946,
	}
}

func TestCreateIssue(t *testing.T) {
	f := newIssueFixture(t)
	reporter := primitive.NewObjectID()
	f.users.users[reporter] = &models.User{ID: reporter, Name: "priya"}

	issue, err := f.svc.Create(context.Background(), validCreateInput(), reporter)
	require.NoError(t, err)

	assert.Equal(t, models.Reported, issue.Status)
	assert.True(t, issue.IsVisible)
	assert.Equal(t, models.PriorityMedium, issue.Priority)
	require.NotNil(t, issue.User)
	assert.Equal(t, reporter, *issue.User)
	assert.Equal(t, "MG Road, Bengaluru", issue.Address, "geocoder fills a missing address")
	assert.InDelta(t, 77.5946, issue.Location.Longitude(), 1e-9)
	assert.InDelta(t, 12.9716, issue.Location.Latitude(), 1e-9)

	timeline, err := f.activity.ListByIssue(context.Background(), issue.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, models.ActionCreated, timeline[0].Action)

	assert.Equal(t, int64(1), f.users.users[reporter].IssuesReported)
}

func TestCreateAnonymousIssueHasNoReporter(t *testing.T) {
	f := newIssueFixture(t)
	input := validCreateInput()
	input.IsAnonymous = true
	input.Address = "Opposite the bus stand"

	issue, err := f.svc.Create(context.Background(), input, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Nil(t, issue.User)
	assert.True(t, issue.IsAnonymous)
	assert.Equal(t, "Opposite the bus stand", issue.Address, "provided address wins over the geocoder")
}

func TestCreateValidation(t *testing.T) {
	f := newIssueFixture(t)
	reporter := primitive.NewObjectID()

	cases := []struct {
		name   string
		mutate func(*CreateIssueInput)
	}{
		{"bad category", func(in *CreateIssueInput) { in.Category = "Potholes" }},
		{"latitude out of range", func(in *CreateIssueInput) { in.Latitude = 91 }},
		{"longitude out of range", func(in *CreateIssueInput) { in.Longitude = -181 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validCreateInput()
			tc.mutate(&input)
			_, err := f.svc.Create(context.Background(), input, reporter)
			require.Error(t, err)
			assert.Equal(t, KindValidation, Kind(err))
		})
	}
}

func TestCreateCleansUpImagesOnUploadFailure(t *testing.T) {
	f := newIssueFixture(t)
	f.media.failAt = 3

	input := validCreateInput()
	for i := 0; i < 3; i++ {
		input.Images = append(input.Images, ImageUpload{
			Reader:      strings.NewReader(fmt.Sprintf("image-%d", i)),
			Size:        7,
			ContentType: "image/jpeg",
		})
	}

	_, err := f.svc.Create(context.Background(), input, primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, KindExternalService, Kind(err))

	// The two successful uploads were compensated, and no issue was filed.
	assert.ElementsMatch(t, f.media.stored, f.media.deleted)
	assert.Len(t, f.media.deleted, 2)
	assert.Empty(t, f.issues.issues)
}

func TestGetByIDCountsEveryView(t *testing.T) {
	f := newIssueFixture(t)
	issue := seedIssue(t, f.issues)

	for i := 1; i <= 5; i++ {
		got, err := f.svc.GetByID(context.Background(), issue.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(i), got.Views)
	}

	_, err := f.svc.GetByID(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, KindNotFound, Kind(err))
}

func TestUpdateStatusFollowsStateMachine(t *testing.T) {
	f := newIssueFixture(t)
	issue := seedIssue(t, f.issues)
	admin := primitive.NewObjectID()
	ctx := context.Background()

	updated, err := f.svc.UpdateStatus(ctx, issue.ID, StatusUpdateInput{
		Status:   string(models.InProgress),
		Note:     "crew assigned",
		Priority: string(models.PriorityHigh),
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.InProgress, updated.Status)
	assert.Equal(t, models.PriorityHigh, updated.Priority)

	updated, err = f.svc.UpdateStatus(ctx, issue.ID, StatusUpdateInput{Status: string(models.Resolved)}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, updated.Status)

	// Resolved is terminal.
	_, err = f.svc.UpdateStatus(ctx, issue.ID, StatusUpdateInput{Status: string(models.InProgress)}, admin)
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, Kind(err))

	stored, err := f.issues.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Resolved, stored.Status, "rejected edge leaves the issue untouched")

	timeline, err := f.activity.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 2, "no activity row for the rejected edge")
	// Newest first.
	require.NotNil(t, timeline[0].Meta)
	assert.Equal(t, models.InProgress, timeline[0].Meta.PreviousStatus)
	require.NotNil(t, timeline[1].Meta)
	assert.Equal(t, models.Reported, timeline[1].Meta.PreviousStatus)
	assert.Equal(t, "crew assigned", timeline[1].Note)
}

// transitionIssueStore runs a hook before forwarding the first status
// write, so a second admin's update can land between one admin's read
// and their write.
type transitionIssueStore struct {
	*fakeIssueStore
	beforeWrite func()
}

func (r *transitionIssueStore) ApplyStatus(ctx context.Context, id primitive.ObjectID, u store.StatusUpdate) error {
	if r.beforeWrite != nil {
		hook := r.beforeWrite
		r.beforeWrite = nil
		hook()
	}
	return r.fakeIssueStore.ApplyStatus(ctx, id, u)
}

func TestInterleavedStatusUpdatesApplyOnlyOne(t *testing.T) {
	issues := &transitionIssueStore{fakeIssueStore: newFakeIssueStore()}
	activity := newFakeActivityStore()
	svc := NewIssueService(issues, newFakeVoteStore(), newFakeSpamReportStore(), activity, newFakeUserStore(), &fakeMediaStore{}, nil)

	issue := seedIssue(t, issues.fakeIssueStore)
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()
	ctx := context.Background()

	// Both admins validated against Reported; the second one writes first.
	issues.beforeWrite = func() {
		_, err := svc.UpdateStatus(ctx, issue.ID, StatusUpdateInput{Status: string(models.InProgress)}, second)
		require.NoError(t, err)
	}

	_, err := svc.UpdateStatus(ctx, issue.ID, StatusUpdateInput{Status: string(models.Resolved)}, first)
	require.Error(t, err)
	assert.Equal(t, KindConflict, Kind(err))

	stored, err := issues.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InProgress, stored.Status)

	timeline, err := activity.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1, "only the applied transition leaves a record")
	require.NotNil(t, timeline[0].Meta)
	assert.Equal(t, models.Reported, timeline[0].Meta.PreviousStatus)
}

func TestUpdateStatusRejectsUnknownValues(t *testing.T) {
	f := newIssueFixture(t)
	issue := seedIssue(t, f.issues)
	admin := primitive.NewObjectID()

	_, err := f.svc.UpdateStatus(context.Background(), issue.ID, StatusUpdateInput{Status: "Closed"}, admin)
	require.Error(t, err)
	assert.Equal(t, KindValidation, Kind(err))

	_, err = f.svc.UpdateStatus(context.Background(), issue.ID, StatusUpdateInput{
		Status:   string(models.InProgress),
		Priority: "Urgent",
	}, admin)
	require.Error(t, err)
	assert.Equal(t, KindValidation, Kind(err))
}

func TestDeleteAuthorization(t *testing.T) {
	f := newIssueFixture(t)
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	ctx := context.Background()

	issue := seedIssue(t, f.issues)
	withOwner, err := f.issues.Get(ctx, issue.ID)
	require.NoError(t, err)
	withOwner.User = &owner
	require.NoError(t, f.issues.Insert(ctx, &withOwner))

	err = f.svc.Delete(ctx, issue.ID, stranger, false)
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, Kind(err))

	require.NoError(t, f.svc.Delete(ctx, issue.ID, owner, false))
	_, err = f.issues.Get(ctx, issue.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	f := newIssueFixture(t)
	owner := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	ctx := context.Background()
	f.users.users[owner] = &models.User{ID: owner, IssuesReported: 1}

	issue := models.Issue{
		ID:        primitive.NewObjectID(),
		Title:     "Overflowing garbage bin",
		Category:  models.Cleanliness,
		Status:    models.Reported,
		IsVisible: true,
		User:      &owner,
		Location:  models.NewGeoPoint(77.61, 12.93),
		Images:    []string{"https://media.test/object-1", "https://media.test/object-2"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.issues.Insert(ctx, &issue))

	require.NoError(t, f.votes.Insert(ctx, models.Vote{ID: primitive.NewObjectID(), Issue: issue.ID, User: primitive.NewObjectID()}))
	require.NoError(t, f.reports.Insert(ctx, models.SpamReport{ID: primitive.NewObjectID(), Issue: issue.ID, Reporter: primitive.NewObjectID(), Status: models.SpamPending}))
	require.NoError(t, f.activity.Append(ctx, models.Activity{ID: primitive.NewObjectID(), Issue: issue.ID, Action: models.ActionCreated}))

	require.NoError(t, f.svc.Delete(ctx, issue.ID, admin, true))

	exists, err := f.votes.Exists(ctx, issue.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, f.votes.votes)

	count, err := f.reports.CountByIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	timeline, err := f.activity.ListByIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Empty(t, timeline)

	assert.ElementsMatch(t, issue.Images, f.media.deleted)
	assert.Equal(t, int64(0), f.users.users[owner].IssuesReported)
}

func TestNearbyFiltersByRadius(t *testing.T) {
	f := newIssueFixture(t)
	ctx := context.Background()

	seed := func(title string, lng, lat float64, visible bool) {
		issue := models.Issue{
			ID:        primitive.NewObjectID(),
			Title:     title,
			Category:  models.Road,
			Status:    models.Reported,
			IsVisible: visible,
			Location:  models.NewGeoPoint(lng, lat),
			CreatedAt: time.Now(),
		}
		require.NoError(t, f.issues.Insert(ctx, &issue))
	}

	// Center at Bengaluru city hall; ~1.2km and ~12km away.
	seed("near and visible", 77.5946, 12.9716, true)
	seed("near but hidden", 77.5950, 12.9720, false)
	seed("just outside", 77.5946, 12.9825, true)
	seed("far away", 77.7000, 12.9716, true)

	center := store.GeoCenter{Latitude: 12.9716, Longitude: 77.5946}
	page := store.NewPage(1, 10, "createdAt", "desc", store.DefaultPublicLimit, store.PublicMaxLimit)

	found, _, err := f.svc.Nearby(ctx, center, 1000, page)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "near and visible", found[0].Title)

	found, _, err = f.svc.Nearby(ctx, center, 5000, page)
	require.NoError(t, err)
	require.Len(t, found, 2)

	_, _, err = f.svc.Nearby(ctx, center, 0, page)
	require.Error(t, err)
	assert.Equal(t, KindValidation, Kind(err))

	_, _, err = f.svc.Nearby(ctx, store.GeoCenter{Latitude: 95, Longitude: 77}, 1000, page)
	require.Error(t, err)
	assert.Equal(t, KindValidation, Kind(err))
}

func TestListPaginationEnvelope(t *testing.T) {
	f := newIssueFixture(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		issue := models.Issue{
			ID:        primitive.NewObjectID(),
			Title:     fmt.Sprintf("issue %02d", i),
			Category:  models.Water,
			Status:    models.Reported,
			IsVisible: true,
			Location:  models.NewGeoPoint(77.59, 12.97),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, f.issues.Insert(ctx, &issue))
	}

	visible := true
	filter := store.IssueFilter{Visible: &visible}

	page1 := store.NewPage(1, 10, "createdAt", "desc", store.DefaultPublicLimit, store.PublicMaxLimit)
	issues, pagination, err := f.svc.List(ctx, filter, page1)
	require.NoError(t, err)
	assert.Len(t, issues, 10)
	assert.Equal(t, "issue 24", issues[0].Title, "newest first")
	assert.Equal(t, 1, pagination.CurrentPage)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, int64(25), pagination.TotalItems)
	assert.True(t, pagination.HasNext)
	assert.False(t, pagination.HasPrev)

	page3 := store.NewPage(3, 10, "createdAt", "desc", store.DefaultPublicLimit, store.PublicMaxLimit)
	issues, pagination, err = f.svc.List(ctx, filter, page3)
	require.NoError(t, err)
	assert.Len(t, issues, 5)
	assert.False(t, pagination.HasNext)
	assert.True(t, pagination.HasPrev)
}

func TestActivityTimelineRequiresIssue(t *testing.T) {
	f := newIssueFixture(t)

	_, err := f.svc.ActivityTimeline(context.Background(), primitive.NewObjectID())
	require.Error(t, err)
	assert.Equal(t, KindNotFound, Kind(err))
}
