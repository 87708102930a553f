package engine_errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPlayerID       = errors.New("invalid player id")
	ErrPlayerAlreadyWaiting  = fmt.Errorf("%w: player is already waiting", ErrInvalidPlayerID)
	ErrPlayerNotWaiting      = errors.New("player is not waiting")
	ErrTableCapacityExceeded = errors.New("rating table capacity exceeded")
	ErrMatchHistoryFull      = errors.New("match history is full")
)
