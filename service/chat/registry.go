package chat

import (
	"sync"
)

// Registry tracks which connection occupies which conversation room.
// Membership is keyed by connection; a connection occupies at most
// one room, and switching rooms is an atomic leave-then-join under a
// single lock acquisition so there is no window where a connection is
// in two rooms or in neither.
//
// The registry is an injected service object constructed once at
// gateway startup; it is never package-level state.
type Registry struct {
	mu             sync.RWMutex
	rooms          map[string]map[string]*Client // roomID -> connID -> client
	roomByConn     map[string]string             // connID -> roomID
	lastRoomByUser map[string]string             // userID -> most recent room (last join wins)
}

// Transition describes the effect of a Join or Leave, computed
// atomically with the mutation so the presence tracker sees a
// consistent snapshot.
type Transition struct {
	Client *Client
	From   string // room left, "" if none
	To     string // room entered, "" on plain leave

	// UserLeftFrom is true when no other connection of the same user
	// remains in From; aggregated presence emits offline only then.
	UserLeftFrom bool
	// UserFirstInTo is true when this is the user's first connection
	// in To; aggregated presence emits online only then.
	UserFirstInTo bool

	// FromMembers is the membership of From after this connection was
	// removed (the remaining members an offline event is delivered to).
	FromMembers []*Client
	// ToMembers is the membership of To after this connection was
	// added (online is delivered to all of them, joiner included).
	ToMembers []*Client
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:          make(map[string]map[string]*Client),
		roomByConn:     make(map[string]string),
		lastRoomByUser: make(map[string]string),
	}
}

// Join moves the connection into roomID, leaving its previous room
// first. Re-joining the current room is a no-op transition.
func (r *Registry) Join(c *Client, roomID string) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.roomByConn[c.ConnID]
	if prev == roomID {
		return Transition{Client: c, To: roomID}
	}

	t := Transition{Client: c, From: prev, To: roomID}
	if prev != "" {
		t.UserLeftFrom, t.FromMembers = r.removeLocked(c, prev)
	}

	m := r.rooms[roomID]
	if m == nil {
		m = make(map[string]*Client)
		r.rooms[roomID] = m
	}
	t.UserFirstInTo = !r.userInRoomLocked(c.UserID, roomID)
	m[c.ConnID] = c
	r.roomByConn[c.ConnID] = roomID
	r.lastRoomByUser[c.UserID] = roomID
	t.ToMembers = membersLocked(m)
	return t
}

// Leave removes the connection from its current room, if any.
// Idempotent when already unjoined.
func (r *Registry) Leave(c *Client) Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.roomByConn[c.ConnID]
	if prev == "" {
		return Transition{Client: c}
	}
	t := Transition{Client: c, From: prev}
	t.UserLeftFrom, t.FromMembers = r.removeLocked(c, prev)
	return t
}

// MembersOf returns the connections currently joined to roomID.
func (r *Registry) MembersOf(roomID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return membersLocked(r.rooms[roomID])
}

// RoomOf reports the room the user most recently joined. With
// multiple concurrent connections this is last-join-wins; it is a
// convenience view only, membership itself is per connection.
func (r *Registry) RoomOf(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.lastRoomByUser[userID]
	return room, ok
}

// removeLocked takes the connection out of roomID and maintains the
// indexes. Returns whether the user has no connection left in the
// room, plus the remaining membership snapshot.
func (r *Registry) removeLocked(c *Client, roomID string) (userLeft bool, remaining []*Client) {
	m := r.rooms[roomID]
	if m != nil {
		delete(m, c.ConnID)
		if len(m) == 0 {
			delete(r.rooms, roomID)
			m = nil
		}
	}
	delete(r.roomByConn, c.ConnID)

	userLeft = !r.userInRoomLocked(c.UserID, roomID)
	if userLeft && r.lastRoomByUser[c.UserID] == roomID {
		delete(r.lastRoomByUser, c.UserID)
	}
	return userLeft, membersLocked(m)
}

func (r *Registry) userInRoomLocked(userID, roomID string) bool {
	for _, other := range r.rooms[roomID] {
		if other.UserID == userID {
			return true
		}
	}
	return false
}

func membersLocked(m map[string]*Client) []*Client {
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	return out
}
