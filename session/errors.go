package session

import (
	"errors"
)

var (
	ErrContextCancelled       = errors.New("context cancelled")
	ErrPlayerConnectionClosed = errors.New("player connection closed")
	ErrPlayerBadMessage       = errors.New("player sent bad session message")
	ErrPlayerNotInSession     = errors.New("player is not in a session")
	ErrUnknownMessageCode     = errors.New("unknown message code")
)
