package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomDirectory(t *testing.T) {
	d := NewRoomDirectory()

	assert.Equal(t, 4, d.Count(), "expected fixed room set")
	assert.Equal(t, []string{"general", "random", "images", "windows"}, d.Names(),
		"expected rooms in declaration order")
	assert.True(t, d.Exists(defaultRoom), "expected default room to exist")
	assert.False(t, d.Exists("lounge"), "expected unknown room to not exist")

	topic, err := d.Topic("windows")
	require.NoError(t, err)
	assert.Equal(t, "Windows 95 Nostalgia", topic, "expected configured topic")

	_, err = d.Topic("lounge")
	var unknownRoom *UnknownRoomError
	assert.ErrorAs(t, err, &unknownRoom, "expected unknown-room error")
}

func TestRoomDirectory_JoinLeave(t *testing.T) {
	d := NewRoomDirectory()

	require.NoError(t, d.Join("general", "alice"))
	require.NoError(t, d.Join("general", "bob"))

	members, err := d.Members("general")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, members, "expected members in join order")

	// joining twice does not duplicate the member
	require.NoError(t, d.Join("general", "alice"))
	members, err = d.Members("general")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, members, "expected idempotent join")

	require.NoError(t, d.Leave("general", "alice"))
	members, err = d.Members("general")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, members, "expected alice removed")

	// leaving again is a no-op
	require.NoError(t, d.Leave("general", "alice"))

	var unknownRoom *UnknownRoomError
	assert.ErrorAs(t, d.Join("lounge", "alice"), &unknownRoom, "expected unknown-room error on join")
	assert.ErrorAs(t, d.Leave("lounge", "alice"), &unknownRoom, "expected unknown-room error on leave")
}

func TestRoomDirectory_MembersSnapshot(t *testing.T) {
	d := NewRoomDirectory()
	require.NoError(t, d.Join("random", "alice"))

	snapshot, err := d.Members("random")
	require.NoError(t, err)
	require.NoError(t, d.Join("random", "bob"))

	assert.Equal(t, []string{"alice"}, snapshot, "expected snapshot unaffected by later joins")
}

func TestRoomDirectory_RenameMember(t *testing.T) {
	d := NewRoomDirectory()
	require.NoError(t, d.Join("general", "Guest1234"))
	require.NoError(t, d.Join("random", "alice"))
	require.NoError(t, d.Join("random", "Guest1234"))

	d.RenameMember("Guest1234", "RetroFan")

	general, err := d.Members("general")
	require.NoError(t, err)
	assert.Equal(t, []string{"RetroFan"}, general, "expected rename in general")

	random, err := d.Members("random")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "RetroFan"}, random, "expected rename preserving join order")
}
