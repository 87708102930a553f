package datastore

import (
	"strconv"
	"time"

	"github.com/gunnermanx/simplematchmaker/datastore/model"
	"github.com/patrickmn/go-cache"
)

// MemoryDatastore keeps player profiles in process. Profiles expire after the
// configured ttl so players that never come back do not pile up.
type MemoryDatastore struct {
	players *cache.Cache
}

func NewMemoryDatastore(ttl time.Duration) *MemoryDatastore {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemoryDatastore{
		players: cache.New(ttl, 10*time.Minute),
	}
}

func (ds *MemoryDatastore) SavePlayer(player model.Player) error {
	ds.players.SetDefault(key(player.ID), player)
	return nil
}

func (ds *MemoryDatastore) FindPlayer(playerID int) (player model.Player, err error) {
	v, found := ds.players.Get(key(playerID))
	if !found {
		err = ErrPlayerNotFound
		return
	}
	player = v.(model.Player)
	return
}

func (ds *MemoryDatastore) DeletePlayer(playerID int) {
	ds.players.Delete(key(playerID))
}

func key(playerID int) string {
	return strconv.Itoa(playerID)
}
