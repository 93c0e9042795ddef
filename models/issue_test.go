package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	statuses := []IssueStatus{Reported, InProgress, Resolved}
	allowed := map[IssueStatus]map[IssueStatus]bool{
		Reported:   {InProgress: true, Resolved: true},
		InProgress: {Resolved: true},
		Resolved:   {},
	}

	for _, from := range statuses {
		for _, to := range statuses {
			assert.Equal(t, allowed[from][to], CanTransition(from, to),
				"%s -> %s", from, to)
		}
	}
}

func TestCanTransitionRejectsSelfLoops(t *testing.T) {
	for _, s := range []IssueStatus{Reported, InProgress, Resolved} {
		assert.False(t, CanTransition(s, s), "%s -> %s", s, s)
	}
}

func TestValidators(t *testing.T) {
	assert.True(t, ValidCategory(string(Road)))
	assert.True(t, ValidCategory(string(Safety)))
	assert.False(t, ValidCategory("Graffiti"))
	assert.False(t, ValidCategory(""))

	assert.True(t, ValidStatus(string(InProgress)))
	assert.False(t, ValidStatus("Closed"))

	assert.True(t, ValidPriority(string(PriorityCritical)))
	assert.False(t, ValidPriority("Urgent"))
}

func TestGeoPointRoundTrip(t *testing.T) {
	p := NewGeoPoint(77.5946, 12.9716)
	assert.Equal(t, "Point", p.Type)
	assert.Equal(t, 77.5946, p.Longitude())
	assert.Equal(t, 12.9716, p.Latitude())
}
