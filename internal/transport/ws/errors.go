package ws

import (
	"crash_backend/internal/protocol"
	"errors"
	"fmt"
)

var (
	ErrNotConnected       = errors.New("transport not connected")
	ErrAlreadyConnected   = errors.New("transport already connected")
	ErrConnectionClosed   = errors.New("connection closed")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrAuthFailed         = errors.New("authentication failed")
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
)

// RemoteError - the server answered with success=false
type RemoteError struct {
	Type    protocol.Type
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}
