package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Aryanpatel8799/civic-track-odoo-sub000/models"
)

// StatsStore runs the aggregate queries behind the admin dashboard.
// Raw counts only; anything fancier is presentation.
type StatsStore struct {
	issues *mongo.Collection
	votes  *mongo.Collection
}

func NewStatsStore(issues, votes *mongo.Collection) *StatsStore {
	return &StatsStore{issues: issues, votes: votes}
}

type CategoryCount struct {
	Name  string `bson:"name" json:"name"`
	Value int64  `bson:"value" json:"value"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type TopIssue struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Upvotes  int64  `json:"upvotes"`
}

type Stats struct {
	IssuesByCategory []CategoryCount `json:"issuesByCategory"`
	Last7Days        []DayCount      `json:"last7Days"`
	TopUpvoted       []TopIssue      `json:"topUpvotedIssues"`
	TotalIssues      int64           `json:"totalIssues"`
	TotalVotes       int64           `json:"totalVotes"`
	OpenIssues       int64           `json:"openIssues"`
	HiddenIssues     int64           `json:"hiddenIssues"`
}

func (s *StatsStore) Collect(ctx context.Context) (Stats, error) {
	var stats Stats

	categoryPipeline := []bson.M{
		{
			"$group": bson.M{
				"_id":   "$category",
				"count": bson.M{"$sum": 1},
			},
		},
		{
			"$project": bson.M{
				"name":  "$_id",
				"value": "$count",
				"_id":   0,
			},
		},
	}

	categoryCursor, err := s.issues.Aggregate(ctx, categoryPipeline)
	if err != nil {
		return Stats{}, err
	}
	defer categoryCursor.Close(ctx)

	if err := categoryCursor.All(ctx, &stats.IssuesByCategory); err != nil {
		return Stats{}, err
	}

	for i := 6; i >= 0; i-- {
		date := time.Now().AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		nextDate := date.AddDate(0, 0, 1)

		count, err := s.issues.CountDocuments(ctx, bson.M{
			"createdAt": bson.M{
				"$gte": date,
				"$lt":  nextDate,
			},
		})
		if err != nil {
			count = 0
		}

		stats.Last7Days = append(stats.Last7Days, DayCount{
			Date:  date.Format("2006-01-02"),
			Count: count,
		})
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "upvotes", Value: -1}}).
		SetLimit(5)

	cursor, err := s.issues.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return Stats{}, err
	}
	defer cursor.Close(ctx)

	var topIssues []models.Issue
	if err := cursor.All(ctx, &topIssues); err != nil {
		return Stats{}, err
	}
	for _, issue := range topIssues {
		stats.TopUpvoted = append(stats.TopUpvoted, TopIssue{
			ID:       issue.ID.Hex(),
			Title:    issue.Title,
			Category: string(issue.Category),
			Upvotes:  issue.Upvotes,
		})
	}

	if stats.TotalIssues, err = s.issues.CountDocuments(ctx, bson.M{}); err != nil {
		stats.TotalIssues = 0
	}
	if stats.TotalVotes, err = s.votes.CountDocuments(ctx, bson.M{}); err != nil {
		stats.TotalVotes = 0
	}
	if stats.OpenIssues, err = s.issues.CountDocuments(ctx, bson.M{
		"status": bson.M{"$in": []string{string(models.Reported), string(models.InProgress)}},
	}); err != nil {
		stats.OpenIssues = 0
	}
	if stats.HiddenIssues, err = s.issues.CountDocuments(ctx, bson.M{"isVisible": false}); err != nil {
		stats.HiddenIssues = 0
	}

	return stats, nil
}
