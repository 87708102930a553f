package matchmaking

import (
	"github.com/gunnermanx/simplematchmaker/engine"
)

type FindMatchRequest struct {
	Rating int    `json:"rating"`
	Name   string `json:"name"`
}

type FindMatchResponse struct {
	Status    string        `json:"status"`
	Match     *engine.Match `json:"match,omitempty"`
	SessionID string        `json:"sessionID,omitempty"`
}

type HistoryResponse struct {
	Matches []engine.Match `json:"matches"`
}
