package database

type ChatRepository interface {
	Ping() error
	GetUser(username string) (User, error)
	CreateUser(params CreateUserParams) (User, error)
	UpdateLastLogin(username string) error
	IncrementMessageCount(username string) error
	SaveMessage(msg Message) (int64, error)
	MessageHistory(room string, limit int) ([]Message, error)
	Achievements(username string) ([]string, error)
	UnlockAchievement(username, achievement string) (bool, error)
	AddReaction(messageId int64, username, reaction string) (bool, error)
}
