package server

import "time"

const veteranOnlineTime = 30 * time.Minute

type Achievement struct {
	Id          string
	Title       string
	Description string
}

var achievementCatalog = []Achievement{
	{Id: "first-message", Title: "First Message!", Description: "You sent your first message"},
	{Id: "chatty", Title: "Chatty!", Description: "Sent 10 messages"},
	{Id: "super-chatty", Title: "Super Chatty!", Description: "Sent 50 messages"},
	{Id: "chatterbox", Title: "Chatterbox!", Description: "Sent 100 messages"},
	{Id: "veteran", Title: "Veteran User", Description: "Stayed online for 30 minutes"},
	{Id: "room-hopper", Title: "Room Hopper", Description: "Visited all chat rooms"},
	{Id: "socialite", Title: "Socialite", Description: "Sent your first private message"},
	{Id: "image-poster", Title: "Picture Perfect", Description: "Posted your first image"},
}

// achievementInput carries the durable and session counters the predicates
// are evaluated over.
type achievementInput struct {
	unlocked        map[string]struct{}
	totalMessages   int
	sessionMessages int
	imagesPosted    int
	privateMsgs     int
	roomsVisited    int
	roomCount       int
	onlineFor       time.Duration
}

// evaluateAchievements returns the catalog entries whose predicate holds
// and that are not already unlocked. Predicates are independent, so
// evaluation order does not matter; the store's uniqueness constraint
// keeps the actual unlock idempotent.
func evaluateAchievements(in achievementInput) []Achievement {
	var newlyQualified []Achievement
	for _, a := range achievementCatalog {
		if _, ok := in.unlocked[a.Id]; ok {
			continue
		}

		if qualifies(a.Id, in) {
			newlyQualified = append(newlyQualified, a)
		}
	}

	return newlyQualified
}

func qualifies(id string, in achievementInput) bool {
	switch id {
	case "first-message":
		return in.sessionMessages >= 1
	case "chatty":
		return in.totalMessages >= 10
	case "super-chatty":
		return in.totalMessages >= 50
	case "chatterbox":
		return in.totalMessages >= 100
	case "veteran":
		return in.onlineFor >= veteranOnlineTime
	case "room-hopper":
		return in.roomCount > 0 && in.roomsVisited >= in.roomCount
	case "socialite":
		return in.privateMsgs >= 1
	case "image-poster":
		return in.imagesPosted >= 1
	default:
		return false
	}
}
