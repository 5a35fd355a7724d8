package core

// Conn abstracts a client messaging transport.
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	// Send enqueues one outbound frame without blocking.
	Send(frame any) error
	// Close tears the transport down with a protocol-visible reason.
	Close(reason string)
	// IsLive reports whether the transport can still deliver frames.
	IsLive() bool
}

// Close reasons surfaced to the client in the websocket close message.
const (
	CloseDuplicatedLogin = "close.duplicated_login"
	CloseDisconnection   = "close.disconnection"
)
