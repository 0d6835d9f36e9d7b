package server

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tricarty/retrochat95/internal/database"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var helpCommands = []string{
	"/me <action> - Perform an action",
	"/nick <name> - Change username (guests only)",
	"/color #RRGGBB - Change text color",
	"/clear - Clear your chat",
	"/status [Online|Away|Busy] - Set status",
	"/join <room> - Join a room (general, random, images, windows)",
	"/msg <user> <text> - Send private message",
	"/help - Show this help",
	"",
	"Image keywords: !dog, !cat, !lol, !windows, !error, !cool, !fire",
}

// dispatchCommand parses the command on whitespace and routes to the
// handler. Every handler failure is a value-level outcome reported only
// to the invoking connection.
func (cs *ChatServer) dispatchCommand(c *Client, text string) {
	parts := strings.Fields(text)
	cmd := strings.ToLower(parts[0])

	var err error
	switch cmd {
	case "/me":
		err = cs.cmdMe(c, parts[1:])
	case "/nick":
		err = cs.cmdNick(c, parts[1:])
	case "/color":
		err = cs.cmdColor(c, parts[1:])
	case "/clear":
		c.queueEvent(&ServerEvent{Event: EventClearChat})
	case "/status":
		err = cs.cmdStatus(c, parts[1:])
	case "/join":
		err = cs.cmdJoin(c, parts[1:])
	case "/msg":
		err = cs.cmdMsg(c, parts[1:])
	case "/help":
		c.queueEvent(&ServerEvent{
			Event: EventHelpMessage,
			Data:  HelpMessagePayload{Commands: helpCommands},
		})
	default:
		c.queueEvent(commandError(fmt.Sprintf("Unknown command: %s. Type /help for commands.", cmd)))
	}

	if err != nil {
		c.queueEvent(eventForError(err))
	}
}

func (cs *ChatServer) cmdMe(c *Client, args []string) error {
	action := strings.Join(args, " ")
	if action == "" {
		return &UsageError{Usage: "Usage: /me <action>"}
	}

	s := c.session
	now := clockTime(time.Now())
	cs.broadcastToRoom(s.room, &ServerEvent{
		Event: EventActionMessage,
		Data: ActionMessagePayload{
			Username:  s.username,
			Color:     s.color,
			Action:    action,
			Timestamp: now,
		},
	}, nil)

	if _, err := cs.repo.SaveMessage(database.Message{
		Room:      s.room,
		Username:  s.username,
		Color:     s.color,
		Body:      action,
		Type:      database.MessageTypeAction,
		Timestamp: now,
	}); err != nil {
		cs.log.Println("save message:", err)
		return err
	}

	return nil
}

func (cs *ChatServer) cmdNick(c *Client, args []string) error {
	var newName string
	if len(args) > 0 {
		newName = sanitizeInput(args[0])
	}

	if len(newName) < 2 || len(newName) > 20 {
		return &UsageError{Usage: "Usage: /nick <name> (2-20 characters)"}
	}

	s := c.session
	if !s.isGuest {
		return &PermissionError{Msg: "Registered users cannot change username. Use guest mode to change names."}
	}

	oldName := s.username
	cs.registry.Rename(s, newName)
	cs.rooms.RenameMember(oldName, newName)

	cs.broadcastToRoom(s.room, systemMessage(fmt.Sprintf("%s changed their name to %s", oldName, newName)), nil)
	cs.sendUsersUpdate(s.room)

	return nil
}

func (cs *ChatServer) cmdColor(c *Client, args []string) error {
	if len(args) == 0 || !hexColorPattern.MatchString(args[0]) {
		return &UsageError{Usage: "Usage: /color #RRGGBB (hex color)"}
	}

	c.session.color = args[0]
	c.queueEvent(&ServerEvent{Event: EventColorChanged, Data: args[0]})
	c.queueEvent(systemMessage("Color changed successfully!"))

	return nil
}

func (cs *ChatServer) cmdStatus(c *Client, args []string) error {
	if len(args) == 0 {
		return &UsageError{Usage: "Usage: /status [Online|Away|Busy]"}
	}

	status := args[0]
	if status != StatusOnline && status != StatusAway && status != StatusBusy {
		return &UsageError{Usage: "Usage: /status [Online|Away|Busy]"}
	}

	s := c.session
	s.status = status
	cs.broadcastToRoom(s.room, &ServerEvent{
		Event: EventUserStatusChange,
		Data: StatusChangePayload{
			Username: s.username,
			Status:   status,
		},
	}, nil)
	c.queueEvent(systemMessage("Status changed to " + status))

	return nil
}

func (cs *ChatServer) cmdJoin(c *Client, args []string) error {
	if len(args) == 0 {
		return &UsageError{Usage: "Usage: /join [general|random|images|windows]"}
	}

	newRoom := args[0]
	s := c.session
	if !cs.rooms.Exists(newRoom) {
		return &UsageError{Usage: "Usage: /join [general|random|images|windows]"}
	}

	if newRoom == s.room {
		return &UsageError{Usage: "You are already in this room!"}
	}

	oldRoom := s.room
	if err := cs.rooms.Leave(oldRoom, s.username); err != nil {
		return err
	}

	cs.sendUsersUpdate(oldRoom)
	cs.broadcastToRoom(oldRoom, systemMessage(s.username+" left the room"), nil)

	if err := cs.joinRoom(c, newRoom); err != nil {
		return err
	}

	c.queueEvent(&ServerEvent{Event: EventRoomChanged, Data: newRoom})

	return nil
}

func (cs *ChatServer) cmdMsg(c *Client, args []string) error {
	var target, body string
	if len(args) > 0 {
		target = sanitizeInput(args[0])
	}
	if len(args) > 1 {
		body = strings.Join(args[1:], " ")
	}

	if target == "" || body == "" {
		return &UsageError{Usage: "Usage: /msg <username> <message>"}
	}

	targetClient := cs.registry.FindByUsername(target)
	if targetClient == nil {
		return &NotFoundError{Name: target}
	}

	s := c.session
	now := clockTime(time.Now())
	targetClient.queueEvent(&ServerEvent{
		Event: EventPrivateMessage,
		Data: PrivateMessagePayload{
			From:      s.username,
			Message:   body,
			Color:     s.color,
			Timestamp: now,
		},
	})

	c.queueEvent(&ServerEvent{
		Event: EventPrivateMessageSent,
		Data: PrivateMessageSentPayload{
			To:        target,
			Message:   body,
			Timestamp: now,
		},
	})

	if !s.isGuest {
		s.privateMsgs++
		cs.checkAchievements(c)
	}

	return nil
}
