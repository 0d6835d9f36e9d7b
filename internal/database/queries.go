package database

import (
	"fmt"
	"time"
)

// messageRetention is the maximum number of rows kept per room. Older rows
// are evicted in the same transaction as each insert.
const messageRetention = 100

func (db *PgChatRepository) GetUser(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT username, password, color, created_at, last_login, total_messages FROM users "+
			"WHERE username = $1 LIMIT 1",
		username,
	)

	var u User
	err := row.Scan(
		&u.Username,
		&u.Password,
		&u.Color,
		&u.CreatedAt,
		&u.LastLogin,
		&u.TotalMessages,
	)

	return u, err
}

func (db *PgChatRepository) CreateUser(params CreateUserParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO users (username, password, color, created_at, last_login) "+
			"VALUES ($1, $2, $3, $4, $4) RETURNING username, password, color, created_at, last_login, total_messages",
		params.Username,
		params.Password,
		params.Color,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Username,
		&u.Password,
		&u.Color,
		&u.CreatedAt,
		&u.LastLogin,
		&u.TotalMessages,
	)

	return u, err
}

func (db *PgChatRepository) UpdateLastLogin(username string) error {
	_, err := db.conn.Exec(
		"UPDATE users SET last_login = $2 WHERE username = $1",
		username,
		time.Now().UTC(),
	)

	return err
}

// IncrementMessageCount applies the counter bump as a relative update so
// concurrent sessions on the same account never lose increments.
func (db *PgChatRepository) IncrementMessageCount(username string) error {
	_, err := db.conn.Exec(
		"UPDATE users SET total_messages = total_messages + 1 WHERE username = $1",
		username,
	)

	return err
}

func (db *PgChatRepository) SaveMessage(msg Message) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRow(
		"INSERT INTO messages (room, username, color, message, message_type, timestamp) "+
			"VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		msg.Room,
		msg.Username,
		msg.Color,
		msg.Body,
		msg.Type,
		msg.Timestamp,
	)

	var id int64
	if err = res.Scan(&id); err != nil {
		return 0, fmt.Errorf("insert message: %w", err)
	}

	_, err = tx.Exec(
		"DELETE FROM messages WHERE room = $1 AND id NOT IN ("+
			"SELECT id FROM messages WHERE room = $1 ORDER BY id DESC LIMIT $2)",
		msg.Room,
		messageRetention,
	)
	if err != nil {
		return 0, fmt.Errorf("evict old messages: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return id, nil
}

func (db *PgChatRepository) MessageHistory(room string, limit int) ([]Message, error) {
	if limit <= 0 || limit > messageRetention {
		limit = messageRetention
	}

	rows, err := db.conn.Query(
		"SELECT id, room, username, color, message, message_type, timestamp, created_at FROM messages "+
			"WHERE room = $1 ORDER BY id DESC LIMIT $2",
		room,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages = make([]Message, 0, limit)
	for rows.Next() {
		var msg Message
		if err = rows.Scan(&msg.Id, &msg.Room, &msg.Username, &msg.Color, &msg.Body, &msg.Type, &msg.Timestamp, &msg.CreatedAt); err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// query returns newest first, replay wants oldest first
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

func (db *PgChatRepository) Achievements(username string) ([]string, error) {
	rows, err := db.conn.Query(
		"SELECT achievement FROM achievements WHERE username = $1 ORDER BY unlocked_at",
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements = make([]string, 0)
	for rows.Next() {
		var a string
		if err = rows.Scan(&a); err != nil {
			return nil, err
		}

		achievements = append(achievements, a)
	}

	return achievements, rows.Err()
}

// UnlockAchievement reports whether the row was actually inserted. The
// UNIQUE(username, achievement) constraint makes the unlock idempotent even
// when two sessions evaluate the same account concurrently.
func (db *PgChatRepository) UnlockAchievement(username, achievement string) (bool, error) {
	res, err := db.conn.Exec(
		"INSERT INTO achievements (username, achievement) VALUES ($1, $2) "+
			"ON CONFLICT (username, achievement) DO NOTHING",
		username,
		achievement,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (db *PgChatRepository) AddReaction(messageId int64, username, reaction string) (bool, error) {
	res, err := db.conn.Exec(
		"INSERT INTO reactions (message_id, username, reaction) VALUES ($1, $2, $3) "+
			"ON CONFLICT (message_id, username, reaction) DO NOTHING",
		messageId,
		username,
		reaction,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
