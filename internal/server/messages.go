package server

import (
	"encoding/json"
	"time"
)

// Inbound event names (client to server).
const (
	EventUserLogin   = "user-login"
	EventChatMessage = "chat-message"
	EventImageUpload = "image-upload"
	EventAddReaction = "add-reaction"
	EventTyping      = "typing"
	EventStopTyping  = "stop-typing"
)

// Outbound event names (server to one or many connections).
const (
	EventLoginSuccess       = "login-success"
	EventLoginError         = "login-error"
	EventAchievementsUpdate = "achievements-update"
	EventAchievementUnlock  = "achievement-unlocked"
	EventMessageHistory     = "message-history"
	EventUsersUpdate        = "users-update"
	EventActionMessage      = "action-message"
	EventImageMessage       = "image-message"
	EventImageKeyword       = "image-keyword"
	EventSystemMessage      = "system-message"
	EventMessageBlocked     = "message-blocked"
	EventCommandError       = "command-error"
	EventPrivateMessage     = "private-message"
	EventPrivateMessageSent = "private-message-sent"
	EventRoomChanged        = "room-changed"
	EventColorChanged       = "color-changed"
	EventClearChat          = "clear-chat"
	EventHelpMessage        = "help-message"
	EventUserTyping         = "user-typing"
	EventUserStopTyping     = "user-stop-typing"
	EventUserStatusChange   = "user-status-change"
	EventReactionAdded      = "reaction-added"
	EventRetroError         = "win95-error"
)

type ClientEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ServerEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Color    string `json:"color"`
	Password string `json:"password"`
	IsGuest  bool   `json:"isGuest"`
}

type ChatMessageRequest struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type ImageUploadRequest struct {
	ImageData string `json:"imageData"`
	Timestamp string `json:"timestamp"`
}

type AddReactionRequest struct {
	MessageId int64  `json:"messageId"`
	Reaction  string `json:"reaction"`
}

type LoginSuccessPayload struct {
	Username string `json:"username"`
	Color    string `json:"color"`
	IsGuest  bool   `json:"isGuest"`
}

type ChatMessagePayload struct {
	Username  string `json:"username"`
	Color     string `json:"color"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

type ActionMessagePayload struct {
	Username  string `json:"username"`
	Color     string `json:"color"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

type ImageMessagePayload struct {
	Username  string `json:"username"`
	Color     string `json:"color"`
	ImageData string `json:"imageData"`
	Timestamp string `json:"timestamp"`
}

type ImageKeywordPayload struct {
	Username  string `json:"username"`
	Color     string `json:"color"`
	Keyword   string `json:"keyword"`
	ImageUrl  string `json:"imageUrl"`
	Timestamp string `json:"timestamp"`
}

type SystemMessagePayload struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type PrivateMessagePayload struct {
	From      string `json:"from"`
	Message   string `json:"message"`
	Color     string `json:"color"`
	Timestamp string `json:"timestamp"`
}

type PrivateMessageSentPayload struct {
	To        string `json:"to"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type AchievementPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type HelpMessagePayload struct {
	Commands []string `json:"commands"`
}

type TypingPayload struct {
	Username string `json:"username"`
}

type StatusChangePayload struct {
	Username string `json:"username"`
	Status   string `json:"status"`
}

type ReactionAddedPayload struct {
	MessageId int64  `json:"messageId"`
	Username  string `json:"username"`
	Reaction  string `json:"reaction"`
}

// HistoryMessage mirrors a stored message row for replay on room join.
type HistoryMessage struct {
	Id          int64  `json:"id"`
	Room        string `json:"room"`
	Username    string `json:"username"`
	Color       string `json:"color"`
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
	Timestamp   string `json:"timestamp"`
}

func systemMessage(text string) *ServerEvent {
	return &ServerEvent{
		Event: EventSystemMessage,
		Data: SystemMessagePayload{
			Text:      text,
			Timestamp: clockTime(time.Now()),
		},
	}
}

func commandError(text string) *ServerEvent {
	return &ServerEvent{
		Event: EventCommandError,
		Data:  text,
	}
}

// clockTime renders the HH:MM wall-clock stamp used by server-generated
// messages; client-supplied timestamps are passed through untouched.
func clockTime(t time.Time) string {
	return t.Format("15:04")
}
