package server

import (
	"slices"
	"sync"
)

const defaultRoom = "general"

// Room is a fixed named channel. The topic never changes; the member list
// is ordered by join time and mutated only through the directory.
type Room struct {
	name    string
	topic   string
	members []string
}

// RoomDirectory owns the fixed room set and the live membership lists.
// Rooms are created at startup and never destroyed while the process runs.
type RoomDirectory struct {
	mu    sync.Mutex
	rooms map[string]*Room
	names []string
}

func NewRoomDirectory() *RoomDirectory {
	d := &RoomDirectory{rooms: make(map[string]*Room)}
	for _, r := range []struct{ name, topic string }{
		{"general", "General Discussion"},
		{"random", "Random Stuff"},
		{"images", "Share Your Images"},
		{"windows", "Windows 95 Nostalgia"},
	} {
		d.rooms[r.name] = &Room{name: r.name, topic: r.topic}
		d.names = append(d.names, r.name)
	}

	return d
}

func (d *RoomDirectory) Exists(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.rooms[name]
	return ok
}

func (d *RoomDirectory) Topic(name string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[name]
	if !ok {
		return "", &UnknownRoomError{Room: name}
	}

	return room.topic, nil
}

// Join adds username to the room's member list. Adding a member that is
// already present is a no-op.
func (d *RoomDirectory) Join(name, username string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[name]
	if !ok {
		return &UnknownRoomError{Room: name}
	}

	if !slices.Contains(room.members, username) {
		room.members = append(room.members, username)
	}

	return nil
}

// Leave removes username from the room's member list. Removing an absent
// member is a no-op.
func (d *RoomDirectory) Leave(name, username string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[name]
	if !ok {
		return &UnknownRoomError{Room: name}
	}

	if i := slices.Index(room.members, username); i >= 0 {
		room.members = slices.Delete(room.members, i, i+1)
	}

	return nil
}

// Members returns a snapshot of the room's member list in join order.
// The snapshot does not reflect later mutations.
func (d *RoomDirectory) Members(name string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[name]
	if !ok {
		return nil, &UnknownRoomError{Room: name}
	}

	return slices.Clone(room.members), nil
}

// RenameMember replaces oldName with newName in every room that carries
// it, preserving each list's join order.
func (d *RoomDirectory) RenameMember(oldName, newName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, room := range d.rooms {
		if i := slices.Index(room.members, oldName); i >= 0 {
			room.members[i] = newName
		}
	}
}

func (d *RoomDirectory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.rooms)
}

func (d *RoomDirectory) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.names)
}
