package datastore

import (
	"errors"

	"github.com/gunnermanx/simplematchmaker/datastore/model"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
)

type Datastore interface {
	SavePlayer(player model.Player) error
	FindPlayer(playerID int) (model.Player, error)
	DeletePlayer(playerID int)
}
