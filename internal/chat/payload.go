package chat

import "fmt"

// PayloadType tags the logical message envelope exchanged with clients.
type PayloadType string

const (
	PayloadConnect    PayloadType = "connect"
	PayloadDisconnect PayloadType = "disconnect"
	PayloadMessage    PayloadType = "message"
)

// Payload is the envelope read from and written to a client connection.
// Which fields are meaningful depends on Type: CONNECT and DISCONNECT carry
// ClientName, MESSAGE carries ClientName plus Message.
type Payload struct {
	Type       PayloadType `json:"type"`
	ClientName string      `json:"client_name,omitempty"`
	Message    string      `json:"message,omitempty"`
}

func (p Payload) String() string {
	return fmt.Sprintf("payload{type=%s client=%q message=%q}", p.Type, p.ClientName, p.Message)
}
