package chat

// Conn is the transport abstraction the chat core consumes. The core only
// needs object-granularity payload reads and writes; framing and encoding
// belong to the adapter (see internal/transport).
//
// CloseRead and CloseWrite shut one direction down where the underlying
// transport supports half-close; adapters without half-close may make them
// no-ops. Each close attempt is independent: a failure on one half must not
// prevent trying the other.
type Conn interface {
	ReadPayload() (Payload, error)
	WritePayload(Payload) error
	CloseRead() error
	CloseWrite() error
	Close() error
	RemoteAddr() string
}
