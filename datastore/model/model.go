package model

// Player is the profile a player registers with when looking for a match
type Player struct {
	ID     int    `json:"playerID"`
	Name   string `json:"name"`
	Rating int    `json:"rating"`
}
