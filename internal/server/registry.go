package server

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/teris-io/shortid"
)

// Session statuses settable via /status.
const (
	StatusOnline = "Online"
	StatusAway   = "Away"
	StatusBusy   = "Busy"
)

const guestNamePrefix = "Guest"

// Session is the ephemeral per-connection state. It is created when the
// connection opens and destroyed on disconnect; its only durable residue
// is whatever was written to the store along the way. All fields are
// mutated by the owning connection's goroutine; username is additionally
// written under the registry lock so lookups by name stay consistent.
type Session struct {
	id           string
	username     string
	color        string
	status       string
	room         string
	isGuest      bool
	roomsVisited map[string]struct{}
	messageCount int
	imagesPosted int
	privateMsgs  int
	joinTime     time.Time
	lastMessage  time.Time
}

func (s *Session) markVisited(room string) {
	s.roomsVisited[room] = struct{}{}
}

func (s *Session) visitedCount() int {
	return len(s.roomsVisited)
}

// allowMessage applies the per-session rate limit. The last-message time
// is only advanced for accepted messages, so a throttled sender does not
// push its own window forward.
func (s *Session) allowMessage(now time.Time, minInterval time.Duration) bool {
	if !s.lastMessage.IsZero() && now.Sub(s.lastMessage) < minInterval {
		return false
	}

	return true
}

func (s *Session) recordMessage(now time.Time) {
	s.lastMessage = now
	s.messageCount++
}

// Registry maps live connections to their sessions, one session per
// connection, never shared.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*Client
	sid     *shortid.Shortid
}

func NewRegistry() (*Registry, error) {
	sid, err := shortid.New(1, shortid.DefaultABC, uint64(time.Now().UnixNano()))
	if err != nil {
		return nil, fmt.Errorf("shortid: %w", err)
	}

	return &Registry{
		clients: make(map[string]*Client),
		sid:     sid,
	}, nil
}

// Register creates the session for a newly opened connection. The session
// starts in the default room with the default room already marked visited.
func (r *Registry) Register(c *Client) (*Session, error) {
	id, err := r.sid.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	s := &Session{
		id:           id,
		color:        "#ff00ff",
		status:       StatusOnline,
		room:         defaultRoom,
		roomsVisited: map[string]struct{}{defaultRoom: {}},
		joinTime:     time.Now(),
	}
	c.session = s

	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[id] = c

	return s, nil
}

// CompleteLogin sets the identity fields on the session. The username must
// be non-empty after sanitization and, for non-guests, at least two
// characters; on failure no state is mutated.
func (r *Registry) CompleteLogin(s *Session, username, color string, isGuest bool) error {
	name := sanitizeInput(username)
	if name == "" {
		return &ValidationError{Msg: "Username must be at least 2 characters"}
	}
	if !isGuest && len(name) < 2 {
		return &ValidationError{Msg: "Username must be at least 2 characters"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s.username = name
	s.color = color
	s.isGuest = isGuest

	return nil
}

// Rename swaps the session's username. Callers enforce the guest-only
// contract; the registry only keeps name lookups consistent.
func (r *Registry) Rename(s *Session, newName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.username = newName
}

// FindByUsername returns the client for a currently connected username, or
// nil. A linear scan is fine: the map is bounded by concurrent connections.
func (r *Registry) FindByUsername(username string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.clients {
		if c.session.username == username {
			return c
		}
	}

	return nil
}

// ClientsByUsername resolves a member-list snapshot to the connected
// clients carrying those usernames, in one pass over the registry.
func (r *Registry) ClientsByUsername(usernames []string) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make(map[string]struct{}, len(usernames))
	for _, n := range usernames {
		names[n] = struct{}{}
	}

	var clients []*Client
	for _, c := range r.clients {
		if _, ok := names[c.session.username]; ok {
			clients = append(clients, c)
		}
	}

	return clients
}

// Remove detaches and returns the session for cleanup by the caller.
// Returns nil if the session was already removed.
func (r *Registry) Remove(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[id]
	if !ok {
		return nil
	}

	delete(r.clients, id)
	return c.session
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.clients)
}

func (r *Registry) AllClients() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}

	return clients
}

func (r *Registry) RandomClient() *Client {
	clients := r.AllClients()
	if len(clients) == 0 {
		return nil
	}

	return clients[rand.Intn(len(clients))]
}

// guestUsername synthesizes a guest display name. Guest name uniqueness is
// not guaranteed; the small collision probability is accepted.
func guestUsername() string {
	return fmt.Sprintf("%s%d", guestNamePrefix, rand.Intn(10000))
}
