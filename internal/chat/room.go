package chat

import (
	"sync"

	"go.uber.org/zap"
)

// Room is a named group of sessions that receive each other's broadcasts.
// members and name are guarded by mu; every compound operation on the set,
// including the read-then-fan-out of a broadcast, runs under that one lock so
// concurrent joins and leaves never observe a half-applied prune.
type Room struct {
	registry *Registry
	seq      uint64 // global lock-acquisition order for cross-room moves
	isLobby  bool

	mu      sync.Mutex
	name    string // cleared on close; "" marks the room defunct
	members map[*Session]struct{}
}

func newRoom(registry *Registry, seq uint64, name string, isLobby bool) *Room {
	return &Room{
		registry: registry,
		seq:      seq,
		isLobby:  isLobby,
		name:     name,
		members:  make(map[*Session]struct{}),
	}
}

func (r *Room) Name() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.name
}

func (r *Room) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// AddClient places the session in this room. Adding a member twice is logged
// and ignored; adding to a defunct room fails with ErrRoomClosed.
func (r *Room) AddClient(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addClientLocked(s)
}

func (r *Room) addClientLocked(s *Session) error {
	if r.name == "" {
		zap.L().Warn("room.add_after_close", zap.Stringer("session_id", s.ID()))
		return ErrRoomClosed
	}
	if _, ok := r.members[s]; ok {
		zap.L().Warn("room.duplicate_member",
			zap.String("room", r.name), zap.Stringer("session_id", s.ID()))
		return nil
	}
	s.setRoom(r)
	r.members[s] = struct{}{}
	if name := s.Name(); name != "" {
		r.broadcastLocked(name, "joined the room "+r.name, nil)
	}
	return nil
}

// RemoveClient takes the session out of the member set. Remaining members get
// a "left the room" notice; an empty non-Lobby room closes itself. Removing an
// absent session is a no-op.
func (r *Room) RemoveClient(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeClientLocked(s)
}

func (r *Room) removeClientLocked(s *Session) {
	if _, ok := r.members[s]; !ok {
		return
	}
	delete(r.members, s)
	if len(r.members) > 0 {
		if name := s.Name(); name != "" {
			r.broadcastLocked(name, "left the room", nil)
		}
		return
	}
	r.cleanupEmptyLocked()
}

func (r *Room) cleanupEmptyLocked() {
	if r.name == "" || r.isLobby {
		return
	}
	zap.L().Info("room.closing_empty", zap.String("room", r.name))
	r.closeLocked(nil)
}

// SendMessage interprets text as an in-band command first; any recognized or
// malformed command is consumed. Plain chat fans out to every member,
// including the sender, pruning members whose send fails.
func (r *Room) SendMessage(sender *Session, text string) {
	cmd := ParseCommand(text)
	switch cmd.Kind {
	case CommandCreateRoom:
		if err := r.registry.CreateRoom(cmd.Name); err != nil {
			zap.L().Warn("room.create_command_failed",
				zap.String("room_name", cmd.Name),
				zap.Stringer("session_id", sender.ID()),
				zap.Error(err))
			return
		}
		if err := r.registry.JoinRoom(cmd.Name, sender); err != nil {
			zap.L().Warn("room.join_after_create_failed",
				zap.String("room_name", cmd.Name), zap.Error(err))
		}
		return
	case CommandJoinRoom:
		if err := r.registry.JoinRoom(cmd.Name, sender); err != nil {
			zap.L().Warn("room.join_command_failed",
				zap.String("room_name", cmd.Name),
				zap.Stringer("session_id", sender.ID()),
				zap.Error(err))
		}
		return
	case CommandMalformed:
		zap.L().Warn("room.malformed_command",
			zap.String("keyword", cmd.Keyword),
			zap.Stringer("session_id", sender.ID()))
		return
	case CommandUnknown:
		zap.L().Info("room.unknown_command",
			zap.String("keyword", cmd.Keyword),
			zap.Stringer("session_id", sender.ID()))
		return
	}

	senderName := sender.Name()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.name == "" {
		return
	}
	zap.L().Debug("room.broadcast",
		zap.String("room", r.name), zap.Int("members", len(r.members)))
	r.broadcastLocked(senderName, text, nil)
}

// SendConnectionStatus announces clientName's connect or disconnect to every
// member except from, with the same fan-out-and-prune behavior as chat.
func (r *Room) SendConnectionStatus(from *Session, clientName string, isConnect bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.name == "" {
		return
	}
	for member := range r.members {
		if member == from {
			continue
		}
		if err := member.SendConnectionStatus(clientName, isConnect); err != nil {
			r.pruneLocked(member, err)
		}
	}
	if len(r.members) == 0 {
		r.cleanupEmptyLocked()
	}
}

// broadcastLocked delivers one MESSAGE payload to every member but exclude.
// Delivery failure prunes the member from the set within the same call; the
// broadcast continues for the rest. Deleting during range is safe for maps.
func (r *Room) broadcastLocked(senderName, text string, exclude *Session) {
	for member := range r.members {
		if member == exclude {
			continue
		}
		if err := member.Send(senderName, text); err != nil {
			r.pruneLocked(member, err)
		}
	}
	if len(r.members) == 0 {
		r.cleanupEmptyLocked()
	}
}

// pruneLocked drops a member whose send failed. The member's own teardown is
// kicked off asynchronously; it must not run inline because Cleanup re-enters
// this room's lock.
func (r *Room) pruneLocked(member *Session, err error) {
	delete(r.members, member)
	zap.L().Info("room.pruned_member",
		zap.String("room", r.name),
		zap.Stringer("session_id", member.ID()),
		zap.Error(err))
	go member.Cleanup()
}

// Close tears the room down explicitly: remaining members migrate to the
// Lobby one by one, the room deregisters, and its name is cleared so late
// arrivals can tell the room is defunct. Reentrant-safe.
func (r *Room) Close() {
	lobby := r.registry.Lobby()
	if lobby != r {
		// Lobby is created first, so its seq is the global minimum and this
		// respects the cross-room lock order.
		lobby.mu.Lock()
		defer lobby.mu.Unlock()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeLocked(lobby)
}

// closeLocked expects r.mu held, plus lobby.mu when members remain to be
// migrated. Called with lobby == nil only on the empty-room path.
func (r *Room) closeLocked(lobby *Room) {
	if r.name == "" || r.isLobby {
		return
	}
	if n := len(r.members); n > 0 && lobby != nil {
		zap.L().Info("room.migrating_to_lobby",
			zap.String("room", r.name), zap.Int("members", n))
		for member := range r.members {
			delete(r.members, member)
			if err := lobby.addClientLocked(member); err != nil {
				zap.L().Error("room.migrate_failed",
					zap.Stringer("session_id", member.ID()), zap.Error(err))
			}
		}
	}
	r.registry.cleanup(r.name, r)
	r.name = ""
}
