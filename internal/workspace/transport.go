package workspace

import "errors"

var (
	// ErrTransportClosed is returned when sending on a closed transport
	ErrTransportClosed = errors.New("transport closed")
	// ErrSendQueueFull is returned when a slow client cannot take more frames
	ErrSendQueueFull = errors.New("send queue full")
)

// Transport is one client connection as seen by the coordinator.
// Send must not block on the network.
type Transport interface {
	Send(data []byte) error
	IsOpen() bool
	Close() error
}
