package chat

import "errors"

var (
	// ErrPeerGone marks a send that failed because the peer is no longer
	// reachable. Rooms use it to prune dead members during fan-out.
	ErrPeerGone = errors.New("peer gone")

	// ErrSessionClosed is returned by sends on a session past teardown.
	ErrSessionClosed = errors.New("session closed")

	ErrRoomExists   = errors.New("room already exists")
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomClosed   = errors.New("room closed")
	ErrNameRequired = errors.New("room name required")
)
