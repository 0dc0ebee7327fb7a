package chat

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultLobbyName is used when no lobby name is configured.
const DefaultLobbyName = "Lobby"

// RoomInfo is a point-in-time view of one room, for listings.
type RoomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// Registry owns the name-to-room mapping for the whole server, including the
// Lobby. Room names are whitespace-trimmed and compared case-sensitively,
// except the Lobby name, which is reserved case-insensitively. The registry
// mutex guards only the mapping; it is never held while a room lock is taken,
// and rooms may call back into the registry while holding their own lock.
type Registry struct {
	lobbyName string

	mu    sync.Mutex
	rooms map[string]*Room
	lobby *Room
	seq   uint64
}

// NewRegistry creates the registry with its permanent Lobby already
// registered.
func NewRegistry(lobbyName string) *Registry {
	lobbyName = strings.TrimSpace(lobbyName)
	if lobbyName == "" {
		lobbyName = DefaultLobbyName
	}
	r := &Registry{
		lobbyName: lobbyName,
		rooms:     make(map[string]*Room),
	}
	r.lobby = newRoom(r, 0, lobbyName, true)
	r.rooms[lobbyName] = r.lobby
	return r
}

// Lobby returns the distinguished room that always exists.
func (r *Registry) Lobby() *Room { return r.lobby }

func (r *Registry) normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	return name, nil
}

// CreateRoom registers a new empty room. The only failure modes are a bad
// name and a collision (the Lobby name collides regardless of case).
func (r *Registry) CreateRoom(name string) error {
	name, err := r.normalize(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.EqualFold(name, r.lobbyName) {
		return ErrRoomExists
	}
	if _, ok := r.rooms[name]; ok {
		return ErrRoomExists
	}
	r.seq++
	r.rooms[name] = newRoom(r, r.seq, name, false)
	zap.L().Info("registry.room_created", zap.String("room", name))
	return nil
}

// Room looks a room up by name. The Lobby is found under any casing of its
// name; everything else is exact.
func (r *Registry) Room(name string) *Room {
	name, err := r.normalize(name)
	if err != nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.EqualFold(name, r.lobbyName) {
		return r.lobby
	}
	return r.rooms[name]
}

// JoinRoom moves the session into the named room. Joining the room the
// session is already in is a no-op; joining an absent room fails and leaves
// the current membership untouched.
func (r *Registry) JoinRoom(name string, s *Session) error {
	target := r.Room(name)
	if target == nil {
		if _, err := r.normalize(name); err != nil {
			return err
		}
		return ErrRoomNotFound
	}
	if target == s.Room() && !target.isLobby {
		return nil
	}
	return r.moveSession(s, target)
}

// JoinLobby places the session in the Lobby. Unlike JoinRoom, re-joining the
// Lobby is not a no-op: the leave/join pair re-announces a freshly named
// client, which is what a CONNECT relies on.
func (r *Registry) JoinLobby(s *Session) {
	// The Lobby never closes, so this cannot fail.
	_ = r.moveSession(s, r.lobby)
}

// moveSession removes the session from its current room and adds it to
// target as one composite step. Both room locks are held for the duration,
// acquired in creation order (the Lobby is always first), so two sessions
// swapping rooms in opposite directions cannot deadlock. The session is never
// left roomless: target liveness is checked before the removal, and even when
// vacating the old room cascades into that room's cleanup, the add to target
// happens under the same critical section.
func (r *Registry) moveSession(s *Session, target *Room) error {
	for {
		cur := s.Room()

		first, second := target, (*Room)(nil)
		if cur != nil && cur != target {
			if cur.seq < target.seq {
				first, second = cur, target
			} else {
				first, second = target, cur
			}
		}
		first.mu.Lock()
		if second != nil {
			second.mu.Lock()
		}

		// A concurrent migration (room close) may have moved the session
		// between the read above and taking the locks; holding cur's lock
		// pins the membership, so re-check and retry on a stale read.
		if s.Room() != cur {
			if second != nil {
				second.mu.Unlock()
			}
			first.mu.Unlock()
			continue
		}

		var err error
		if target.name == "" {
			// Target closed between lookup and lock. The session keeps its
			// current membership.
			err = ErrRoomNotFound
		} else {
			if cur != nil {
				cur.removeClientLocked(s)
			}
			err = target.addClientLocked(s)
		}

		if second != nil {
			second.mu.Unlock()
		}
		first.mu.Unlock()
		return err
	}
}

// Rooms returns a snapshot of the live rooms. Sizes are read after the
// registry lock is released; counts may lag by a beat, which listings accept.
func (r *Registry) Rooms() []RoomInfo {
	r.mu.Lock()
	snapshot := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		snapshot = append(snapshot, room)
	}
	r.mu.Unlock()

	infos := make([]RoomInfo, 0, len(snapshot))
	for _, room := range snapshot {
		name := room.Name()
		if name == "" {
			continue // closed between snapshot and read
		}
		infos = append(infos, RoomInfo{Name: name, Members: room.Size()})
	}
	return infos
}

// CleanupRoom deregisters a room that has signaled self-closure. Idempotent:
// deregistering an absent or already-replaced room is a no-op.
func (r *Registry) CleanupRoom(room *Room) {
	r.cleanup(room.Name(), room)
}

func (r *Registry) cleanup(name string, room *Room) {
	if name == "" || room.isLobby {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.rooms[name]; ok && current == room {
		delete(r.rooms, name)
		zap.L().Info("registry.room_removed", zap.String("room", name))
	}
}
