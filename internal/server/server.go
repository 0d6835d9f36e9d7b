package server

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/tricarty/retrochat95/internal/config"
	"github.com/tricarty/retrochat95/internal/database"
	"github.com/tricarty/retrochat95/internal/stats"
)

const (
	welcomeTipDelay    = 2 * time.Second
	retroErrorInterval = 5 * time.Minute
	tipInterval        = 10 * time.Minute
	historyLimit       = 100
)

type ChatServer struct {
	log                *log.Logger
	repo               database.ChatRepository
	registry           *Registry
	rooms              *RoomDirectory
	stats              stats.StatsProvider
	minMessageInterval time.Duration
	stop               chan struct{}
	done               chan struct{}
}

func NewChatServer(logger *log.Logger, repo database.ChatRepository, sp stats.StatsProvider, cfg *config.Config) (*ChatServer, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}

	for _, metric := range []string{stats.OnlineUsers, stats.MessagesSent, stats.MessagesBlocked, stats.AchievementsUnlocked} {
		sp.RegisterMetric(metric)
	}

	return &ChatServer{
		log:                logger,
		repo:               repo,
		registry:           registry,
		rooms:              NewRoomDirectory(),
		stats:              sp,
		minMessageInterval: cfg.MinMessageInterval,
		stop:               make(chan struct{}),
		done:               make(chan struct{}),
	}, nil
}

// Run drives the periodic tasks: a retro error to one random connection
// every five minutes and a tip broadcast every ten.
func (cs *ChatServer) Run() {
	errTicker := time.NewTicker(retroErrorInterval)
	tipTicker := time.NewTicker(tipInterval)
	defer func() {
		errTicker.Stop()
		tipTicker.Stop()
	}()

	for {
		select {
		case <-errTicker.C:
			if c := cs.registry.RandomClient(); c != nil {
				c.queueEvent(&ServerEvent{Event: EventRetroError, Data: randomRetroError()})
			}
		case <-tipTicker.C:
			ev := systemMessage(randomTip())
			for _, c := range cs.registry.AllClients() {
				c.queueEvent(ev)
			}
		case <-cs.stop:
			close(cs.done)
			return
		}
	}
}

func (cs *ChatServer) Shutdown(ctx context.Context) error {
	cs.log.Println("shutting down chat server")
	for _, c := range cs.registry.AllClients() {
		c.stopClient()
	}

	close(cs.stop)

	select {
	case <-cs.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cs *ChatServer) OnlineUsers() int {
	return cs.registry.Count()
}

// RegisterClient creates the session for a freshly upgraded connection.
func (cs *ChatServer) RegisterClient(c *Client) error {
	if _, err := cs.registry.Register(c); err != nil {
		return err
	}

	cs.stats.Incr(stats.OnlineUsers)
	cs.log.Printf("new connection %q", c.session.id)
	return nil
}

// DeregisterClient detaches the session and, if the connection was logged
// in, removes it from its room and announces the departure.
func (cs *ChatServer) DeregisterClient(c *Client) {
	s := cs.registry.Remove(c.session.id)
	if s == nil {
		return
	}

	cs.stats.Decr(stats.OnlineUsers)
	if s.username == "" {
		return
	}

	if err := cs.rooms.Leave(s.room, s.username); err != nil {
		cs.log.Printf("leave on disconnect: %v", err)
		return
	}

	cs.broadcastToRoom(s.room, systemMessage(s.username+" has left the chat."), nil)
	cs.sendUsersUpdate(s.room)
	cs.log.Printf("disconnect %q from #%s", s.username, s.room)
}

func (cs *ChatServer) HandleLogin(c *Client, req LoginRequest) {
	s := c.session
	if s.username != "" {
		// connection is already logged in
		return
	}

	if req.IsGuest {
		name := guestUsername()
		if err := cs.registry.CompleteLogin(s, name, req.Color, true); err != nil {
			c.queueEvent(&ServerEvent{Event: EventLoginError, Data: err.Error()})
			return
		}

		cs.finishLogin(c)
		cs.log.Printf("guest login: %s", s.username)
		return
	}

	name := sanitizeInput(req.Username)
	if name == "" || len(name) < 2 {
		c.queueEvent(&ServerEvent{Event: EventLoginError, Data: "Username must be at least 2 characters"})
		return
	}

	// registered names must be unique among connected sessions, checked
	// before any durable write
	if cs.registry.FindByUsername(name) != nil {
		c.queueEvent(&ServerEvent{Event: EventLoginError, Data: "This user is already logged in"})
		return
	}

	user, err := cs.repo.GetUser(name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := cs.repo.CreateUser(database.CreateUserParams{
			Username: name,
			Password: req.Password,
			Color:    req.Color,
		}); err != nil {
			cs.log.Println("create user:", err)
			c.queueEvent(&ServerEvent{Event: EventLoginError, Data: "An error occurred during login"})
			return
		}

		if err := cs.registry.CompleteLogin(s, name, req.Color, false); err != nil {
			c.queueEvent(&ServerEvent{Event: EventLoginError, Data: err.Error()})
			return
		}

		cs.log.Printf("registered new user: %s", name)
	case err != nil:
		cs.log.Println("get user:", err)
		c.queueEvent(&ServerEvent{Event: EventLoginError, Data: "An error occurred during login"})
		return
	default:
		// the stored password is compared for equality in the clear; this
		// is the historical contract for existing accounts
		if user.Password != "" && req.Password != user.Password {
			c.queueEvent(&ServerEvent{Event: EventLoginError, Data: "Invalid password"})
			return
		}

		if err := cs.registry.CompleteLogin(s, name, user.Color, false); err != nil {
			c.queueEvent(&ServerEvent{Event: EventLoginError, Data: err.Error()})
			return
		}

		if err := cs.repo.UpdateLastLogin(name); err != nil {
			cs.log.Println("update last login:", err)
		}

		achievements, err := cs.repo.Achievements(name)
		if err != nil {
			cs.log.Println("load achievements:", err)
		} else {
			c.queueEvent(&ServerEvent{Event: EventAchievementsUpdate, Data: achievements})
		}

		cs.log.Printf("user login: %s", name)
	}

	cs.finishLogin(c)
}

// finishLogin confirms the login, places the session in the default room
// and schedules the welcome tip.
func (cs *ChatServer) finishLogin(c *Client) {
	s := c.session
	c.queueEvent(&ServerEvent{
		Event: EventLoginSuccess,
		Data: LoginSuccessPayload{
			Username: s.username,
			Color:    s.color,
			IsGuest:  s.isGuest,
		},
	})

	if err := cs.joinRoom(c, defaultRoom); err != nil {
		cs.log.Println("join default room:", err)
	}

	time.AfterFunc(welcomeTipDelay, func() {
		c.queueEvent(systemMessage(randomTip()))
	})
}

// joinRoom adds the session to the room, replays the room's history to the
// joining connection and announces the arrival.
func (cs *ChatServer) joinRoom(c *Client, room string) error {
	s := c.session
	if err := cs.rooms.Join(room, s.username); err != nil {
		return err
	}

	s.room = room
	s.markVisited(room)

	history, err := cs.repo.MessageHistory(room, historyLimit)
	if err != nil {
		cs.log.Println("load history:", err)
	} else {
		replay := make([]HistoryMessage, len(history))
		for i, msg := range history {
			replay[i] = HistoryMessage{
				Id:          msg.Id,
				Room:        msg.Room,
				Username:    msg.Username,
				Color:       msg.Color,
				Message:     msg.Body,
				MessageType: msg.Type,
				Timestamp:   msg.Timestamp,
			}
		}
		c.queueEvent(&ServerEvent{Event: EventMessageHistory, Data: replay})
	}

	cs.sendUsersUpdate(room)
	cs.broadcastToRoom(room, systemMessage(s.username+" has entered the chat."), nil)
	cs.log.Printf("%s joined #%s", s.username, room)

	return nil
}

// HandleChatMessage is the message pipeline: each check short-circuits
// with its own outcome before the message reaches the room.
func (cs *ChatServer) HandleChatMessage(c *Client, req ChatMessageRequest) {
	s := c.session
	if s.username == "" {
		return
	}

	text := sanitizeInput(req.Message)
	if text == "" {
		return
	}

	if text[0] == '/' {
		cs.dispatchCommand(c, text)
		return
	}

	now := time.Now()
	if !s.allowMessage(now, cs.minMessageInterval) {
		c.queueEvent(eventForError(ErrRateLimited))
		return
	}

	if containsBannedWord(text) {
		cs.log.Printf("blocked message from %s", s.username)
		cs.stats.Incr(stats.MessagesBlocked)
		c.queueEvent(eventForError(ErrBlocked))
		return
	}

	if keyword, url, ok := matchImageKeyword(text); ok {
		cs.broadcastToRoom(s.room, &ServerEvent{
			Event: EventImageKeyword,
			Data: ImageKeywordPayload{
				Username:  s.username,
				Color:     s.color,
				Keyword:   keyword,
				ImageUrl:  url,
				Timestamp: req.Timestamp,
			},
		}, nil)

		if _, err := cs.repo.SaveMessage(database.Message{
			Room:      s.room,
			Username:  s.username,
			Color:     s.color,
			Body:      "!" + keyword,
			Type:      database.MessageTypeImage,
			Timestamp: req.Timestamp,
		}); err != nil {
			cs.log.Println("save message:", err)
			c.queueEvent(eventForError(err))
			return
		}

		s.lastMessage = now
		if !s.isGuest {
			if err := cs.repo.IncrementMessageCount(s.username); err != nil {
				cs.log.Println("increment message count:", err)
			}
		}

		cs.stats.Incr(stats.MessagesSent)
		return
	}

	cs.broadcastToRoom(s.room, &ServerEvent{
		Event: EventChatMessage,
		Data: ChatMessagePayload{
			Username:  s.username,
			Color:     s.color,
			Message:   text,
			Timestamp: req.Timestamp,
			Status:    s.status,
		},
	}, nil)

	if _, err := cs.repo.SaveMessage(database.Message{
		Room:      s.room,
		Username:  s.username,
		Color:     s.color,
		Body:      text,
		Type:      database.MessageTypeNormal,
		Timestamp: req.Timestamp,
	}); err != nil {
		cs.log.Println("save message:", err)
		c.queueEvent(eventForError(err))
		return
	}

	s.recordMessage(now)
	cs.stats.Incr(stats.MessagesSent)

	if !s.isGuest {
		if err := cs.repo.IncrementMessageCount(s.username); err != nil {
			cs.log.Println("increment message count:", err)
		}

		cs.checkAchievements(c)
	}
}

func (cs *ChatServer) HandleImageUpload(c *Client, req ImageUploadRequest) {
	s := c.session
	if s.username == "" {
		return
	}

	cs.broadcastToRoom(s.room, &ServerEvent{
		Event: EventImageMessage,
		Data: ImageMessagePayload{
			Username:  s.username,
			Color:     s.color,
			ImageData: req.ImageData,
			Timestamp: req.Timestamp,
		},
	}, nil)

	if _, err := cs.repo.SaveMessage(database.Message{
		Room:      s.room,
		Username:  s.username,
		Color:     s.color,
		Body:      "[Image]",
		Type:      database.MessageTypeImageUpload,
		Timestamp: req.Timestamp,
	}); err != nil {
		cs.log.Println("save message:", err)
		c.queueEvent(eventForError(err))
		return
	}

	if !s.isGuest {
		s.imagesPosted++
		cs.checkAchievements(c)
	}
}

func (cs *ChatServer) HandleAddReaction(c *Client, req AddReactionRequest) {
	s := c.session
	if s.username == "" {
		return
	}

	if _, err := cs.repo.AddReaction(req.MessageId, s.username, req.Reaction); err != nil {
		cs.log.Println("add reaction:", err)
		c.queueEvent(eventForError(err))
		return
	}

	cs.broadcastToRoom(s.room, &ServerEvent{
		Event: EventReactionAdded,
		Data: ReactionAddedPayload{
			MessageId: req.MessageId,
			Username:  s.username,
			Reaction:  req.Reaction,
		},
	}, nil)
}

func (cs *ChatServer) HandleTyping(c *Client, typing bool) {
	s := c.session
	if s.username == "" {
		return
	}

	if typing {
		cs.broadcastToRoom(s.room, &ServerEvent{
			Event: EventUserTyping,
			Data:  TypingPayload{Username: s.username},
		}, c)
		return
	}

	cs.broadcastToRoom(s.room, &ServerEvent{Event: EventUserStopTyping}, c)
}

// checkAchievements runs the evaluator over the session's account and
// applies each qualifying unlock through the store's idempotent insert.
// Only an actual insert produces a notification, so re-running the
// evaluator never re-notifies.
func (cs *ChatServer) checkAchievements(c *Client) {
	s := c.session
	if s.isGuest || s.username == "" {
		return
	}

	unlockedList, err := cs.repo.Achievements(s.username)
	if err != nil {
		cs.log.Println("load achievements:", err)
		return
	}

	account, err := cs.repo.GetUser(s.username)
	if err != nil {
		cs.log.Println("get user:", err)
		return
	}

	unlocked := make(map[string]struct{}, len(unlockedList))
	for _, id := range unlockedList {
		unlocked[id] = struct{}{}
	}

	in := achievementInput{
		unlocked:        unlocked,
		totalMessages:   account.TotalMessages,
		sessionMessages: s.messageCount,
		imagesPosted:    s.imagesPosted,
		privateMsgs:     s.privateMsgs,
		roomsVisited:    s.visitedCount(),
		roomCount:       cs.rooms.Count(),
		onlineFor:       time.Since(s.joinTime),
	}

	for _, a := range evaluateAchievements(in) {
		inserted, err := cs.repo.UnlockAchievement(s.username, a.Id)
		if err != nil {
			cs.log.Println("unlock achievement:", err)
			continue
		}

		if inserted {
			cs.stats.Incr(stats.AchievementsUnlocked)
			c.queueEvent(&ServerEvent{
				Event: EventAchievementUnlock,
				Data: AchievementPayload{
					Title:       a.Title,
					Description: a.Description,
				},
			})
			cs.log.Printf("%s unlocked %s", s.username, a.Id)
		}
	}
}

// broadcastToRoom fans an event out to the room's membership as it stands
// right now, read fresh from the directory.
func (cs *ChatServer) broadcastToRoom(room string, ev *ServerEvent, skip *Client) {
	members, err := cs.rooms.Members(room)
	if err != nil {
		cs.log.Printf("broadcast: %v", err)
		return
	}

	for _, c := range cs.registry.ClientsByUsername(members) {
		if c == skip {
			continue
		}

		c.queueEvent(ev)
	}
}

func (cs *ChatServer) sendUsersUpdate(room string) {
	members, err := cs.rooms.Members(room)
	if err != nil {
		cs.log.Printf("users update: %v", err)
		return
	}

	cs.broadcastToRoom(room, &ServerEvent{Event: EventUsersUpdate, Data: members}, nil)
}
