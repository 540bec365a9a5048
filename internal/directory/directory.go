package directory

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
)

var (
	ErrNameTaken   = errors.New("name already taken in room")
	ErrUnknownRoom = errors.New("unknown room")
)

// Member is one connected participant.
type Member struct {
	ConnID string
	Name   string
	Room   string
}

// Directory is the room/user collaborator: it maps connections to members
// and rooms to their ordered member lists. It is shared across transport
// goroutines, so it guards itself with a lock; game state never lives here.
type Directory struct {
	mu     sync.RWMutex
	byConn map[string]Member
	rooms  map[string][]string
}

func New() *Directory {
	return &Directory{
		byConn: make(map[string]Member),
		rooms:  make(map[string][]string),
	}
}

const (
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength  = 4
)

// CreateRoom registers a new room under a fresh random code and returns it.
func (d *Directory) CreateRoom() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		if _, taken := d.rooms[code]; taken {
			continue
		}
		d.rooms[code] = nil
		return code, nil
	}
}

func generateCode() (string, error) {
	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}

// Exists reports whether a room code is registered.
func (d *Directory) Exists(room string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[normalize(room)]
	return ok
}

// Add enrolls a connection under name in room. Names are unique per room.
func (d *Directory) Add(connID, name, room string) (Member, error) {
	room = normalize(room)
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[room]
	if !ok {
		return Member{}, ErrUnknownRoom
	}
	for _, m := range members {
		if m == name {
			return Member{}, ErrNameTaken
		}
	}

	member := Member{ConnID: connID, Name: name, Room: room}
	d.byConn[connID] = member
	d.rooms[room] = append(members, name)
	return member, nil
}

// Remove drops a connection's member record. Empty rooms are forgotten so
// their codes can be reissued.
func (d *Directory) Remove(connID string) (Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	member, ok := d.byConn[connID]
	if !ok {
		return Member{}, false
	}
	delete(d.byConn, connID)

	members := d.rooms[member.Room]
	for i, m := range members {
		if m == member.Name {
			members = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(members) == 0 {
		delete(d.rooms, member.Room)
	} else {
		d.rooms[member.Room] = members
	}
	return member, true
}

// MembersOf returns the room's member names in join order.
func (d *Directory) MembersOf(room string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	members := d.rooms[normalize(room)]
	out := make([]string, len(members))
	copy(out, members)
	return out
}

// MemberFor resolves a connection id to its member record.
func (d *Directory) MemberFor(connID string) (Member, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.byConn[connID]
	return m, ok
}

func normalize(room string) string { return strings.ToUpper(room) }
