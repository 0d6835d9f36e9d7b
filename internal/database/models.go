package database

import "time"

type User struct {
	Username      string
	Password      string
	Color         string
	CreatedAt     time.Time
	LastLogin     time.Time
	TotalMessages int
}

type Message struct {
	Id        int64
	Room      string
	Username  string
	Color     string
	Body      string
	Type      string
	Timestamp string
	CreatedAt time.Time
}

// Message types as stored in messages.message_type.
const (
	MessageTypeNormal      = "normal"
	MessageTypeAction      = "action"
	MessageTypeImage       = "image"
	MessageTypeImageUpload = "image-upload"
)

type CreateUserParams struct {
	Username string
	Password string
	Color    string
}
