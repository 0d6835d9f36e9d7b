package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func achievementIds(achievements []Achievement) []string {
	var ids []string
	for _, a := range achievements {
		ids = append(ids, a.Id)
	}
	return ids
}

func TestEvaluateAchievements(t *testing.T) {
	tt := []struct {
		name     string
		input    achievementInput
		expected []string
	}{
		{
			name:     "nothing earned",
			input:    achievementInput{roomCount: 4},
			expected: nil,
		},
		{
			name:     "first message of the session",
			input:    achievementInput{sessionMessages: 1, totalMessages: 1, roomCount: 4},
			expected: []string{"first-message"},
		},
		{
			name:     "message milestones stack",
			input:    achievementInput{sessionMessages: 5, totalMessages: 100, roomCount: 4},
			expected: []string{"first-message", "chatty", "super-chatty", "chatterbox"},
		},
		{
			name: "milestones skip already unlocked",
			input: achievementInput{
				unlocked:        map[string]struct{}{"first-message": {}, "chatty": {}},
				sessionMessages: 5,
				totalMessages:   50,
				roomCount:       4,
			},
			expected: []string{"super-chatty"},
		},
		{
			name:     "veteran at thirty minutes",
			input:    achievementInput{onlineFor: 30 * time.Minute, roomCount: 4},
			expected: []string{"veteran"},
		},
		{
			name:     "not yet a veteran",
			input:    achievementInput{onlineFor: 29 * time.Minute, roomCount: 4},
			expected: nil,
		},
		{
			name:     "room hopper needs every room",
			input:    achievementInput{roomsVisited: 3, roomCount: 4},
			expected: nil,
		},
		{
			name:     "room hopper on full tour",
			input:    achievementInput{roomsVisited: 4, roomCount: 4},
			expected: []string{"room-hopper"},
		},
		{
			name:     "socialite on first private message",
			input:    achievementInput{privateMsgs: 1, roomCount: 4},
			expected: []string{"socialite"},
		},
		{
			name:     "image poster on first upload",
			input:    achievementInput{imagesPosted: 1, roomCount: 4},
			expected: []string{"image-poster"},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluateAchievements(tc.input)
			assert.Equal(t, tc.expected, achievementIds(got))
		})
	}
}

func TestEvaluateAchievements_fullyUnlocked(t *testing.T) {
	unlocked := make(map[string]struct{}, len(achievementCatalog))
	for _, a := range achievementCatalog {
		unlocked[a.Id] = struct{}{}
	}

	in := achievementInput{
		unlocked:        unlocked,
		sessionMessages: 50,
		totalMessages:   500,
		imagesPosted:    3,
		privateMsgs:     5,
		roomsVisited:    4,
		roomCount:       4,
		onlineFor:       time.Hour,
	}

	assert.Empty(t, evaluateAchievements(in), "expected nothing once everything is unlocked")
}

func TestAchievementCatalog(t *testing.T) {
	seen := make(map[string]struct{}, len(achievementCatalog))
	for _, a := range achievementCatalog {
		assert.NotEmpty(t, a.Id, "expected id for %q", a.Title)
		assert.NotEmpty(t, a.Title, "expected title for %q", a.Id)
		assert.NotEmpty(t, a.Description, "expected description for %q", a.Id)
		assert.True(t, qualifies(a.Id, achievementInput{
			sessionMessages: 100,
			totalMessages:   100,
			imagesPosted:    1,
			privateMsgs:     1,
			roomsVisited:    4,
			roomCount:       4,
			onlineFor:       time.Hour,
		}), "expected a reachable predicate for %q", a.Id)

		_, dup := seen[a.Id]
		assert.False(t, dup, "expected unique id %q", a.Id)
		seen[a.Id] = struct{}{}
	}
}
