package directory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRoom_CodeFormat(t *testing.T) {
	d := New()

	code, err := d.CreateRoom()
	require.NoError(t, err)
	require.Len(t, code, codeLength)
	for _, c := range code {
		assert.Contains(t, codeCharset, string(c))
	}
	assert.True(t, d.Exists(code))
}

func TestCreateRoom_CodesAreUnique(t *testing.T) {
	d := New()

	seen := map[string]bool{}
	for range 100 {
		code, err := d.CreateRoom()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true
	}
}

func TestAdd_TracksJoinOrder(t *testing.T) {
	d := New()
	room, err := d.CreateRoom()
	require.NoError(t, err)

	for i, name := range []string{"alice", "bob", "carol"} {
		_, err := d.Add(string(rune('a'+i)), name, room)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"alice", "bob", "carol"}, d.MembersOf(room))
}

func TestAdd_RoomCodeIsCaseInsensitive(t *testing.T) {
	d := New()
	room, err := d.CreateRoom()
	require.NoError(t, err)

	m, err := d.Add("c1", "alice", strings.ToLower(room))
	require.NoError(t, err)
	assert.Equal(t, room, m.Room)
	assert.Equal(t, []string{"alice"}, d.MembersOf(strings.ToLower(room)))
}

func TestAdd_RejectsDuplicateName(t *testing.T) {
	d := New()
	room, err := d.CreateRoom()
	require.NoError(t, err)

	_, err = d.Add("c1", "alice", room)
	require.NoError(t, err)
	_, err = d.Add("c2", "alice", room)
	assert.ErrorIs(t, err, ErrNameTaken)

	// The same name is fine in a different room.
	other, err := d.CreateRoom()
	require.NoError(t, err)
	_, err = d.Add("c3", "alice", other)
	assert.NoError(t, err)
}

func TestAdd_UnknownRoom(t *testing.T) {
	d := New()

	_, err := d.Add("c1", "alice", "ZZ99")
	assert.ErrorIs(t, err, ErrUnknownRoom)
}

func TestRemove_ForgetsEmptyRooms(t *testing.T) {
	d := New()
	room, err := d.CreateRoom()
	require.NoError(t, err)

	_, err = d.Add("c1", "alice", room)
	require.NoError(t, err)
	_, err = d.Add("c2", "bob", room)
	require.NoError(t, err)

	m, ok := d.Remove("c1")
	require.True(t, ok)
	assert.Equal(t, "alice", m.Name)
	assert.Equal(t, []string{"bob"}, d.MembersOf(room))
	assert.True(t, d.Exists(room))

	_, ok = d.Remove("c2")
	require.True(t, ok)
	assert.False(t, d.Exists(room), "empty rooms free their codes")

	_, ok = d.Remove("c2")
	assert.False(t, ok, "removing twice is a miss, not a panic")
}

func TestMemberFor(t *testing.T) {
	d := New()
	room, err := d.CreateRoom()
	require.NoError(t, err)

	added, err := d.Add("c1", "alice", room)
	require.NoError(t, err)

	got, ok := d.MemberFor("c1")
	require.True(t, ok)
	assert.Equal(t, added, got)

	_, ok = d.MemberFor("nope")
	assert.False(t, ok)
}
