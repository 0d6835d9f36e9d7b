package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

type Client struct {
	conn        *websocket.Conn
	chatServer  *ChatServer
	log         *log.Logger
	session     *Session
	send        chan *ServerEvent
	stop        chan struct{}
	stopOnce    sync.Once
	cleanupOnce sync.Once
}

func NewClient(conn *websocket.Conn, cs *ChatServer, l *log.Logger) *Client {
	return &Client{
		conn:       conn,
		chatServer: cs,
		log:        l,
		send:       make(chan *ServerEvent, 256),
		stop:       make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(ev)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var ev ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueEvent(commandError("Invalid event format"))
			continue
		}

		c.dispatch(&ev)
	}
}

// dispatch routes one inbound event to its handler. Events for this
// connection are handled to completion, in order, on this goroutine.
func (c *Client) dispatch(ev *ClientEvent) {
	switch ev.Event {
	case EventUserLogin:
		var req LoginRequest
		if !c.decode(ev.Data, &req) {
			return
		}
		c.chatServer.HandleLogin(c, req)
	case EventChatMessage:
		var req ChatMessageRequest
		if !c.decode(ev.Data, &req) {
			return
		}
		c.chatServer.HandleChatMessage(c, req)
	case EventImageUpload:
		var req ImageUploadRequest
		if !c.decode(ev.Data, &req) {
			return
		}
		c.chatServer.HandleImageUpload(c, req)
	case EventAddReaction:
		var req AddReactionRequest
		if !c.decode(ev.Data, &req) {
			return
		}
		c.chatServer.HandleAddReaction(c, req)
	case EventTyping:
		c.chatServer.HandleTyping(c, true)
	case EventStopTyping:
		c.chatServer.HandleTyping(c, false)
	default:
		c.log.Printf("unknown event %q", ev.Event)
	}
}

func (c *Client) decode(raw json.RawMessage, v any) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		c.log.Println("error parsing event payload:", err)
		c.queueEvent(commandError("Invalid event format"))
		return false
	}

	return true
}

func (c *Client) queueEvent(ev *ServerEvent) bool {
	select {
	case c.send <- ev:
	default:
		c.log.Println("failed to send event to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// cleanup runs exactly once per connection, on terminal disconnect.
func (c *Client) cleanup() {
	c.cleanupOnce.Do(func() {
		c.chatServer.DeregisterClient(c)
		c.stopClient()
	})
}
