package session_messages

const (
	START_GAME    = 10
	OPPONENT_LEFT = 11
	MOVE          = 20
	OPPONENT_MOVE = 21
	ERROR         = 30
)

const (
	COLOR_WHITE = "white"
	COLOR_BLACK = "black"
)

type SessionMessage struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
}

type StartGameData struct {
	SessionID      string `json:"sessionID"`
	MatchID        int    `json:"matchID"`
	Color          string `json:"color"`
	OpponentID     int    `json:"opponentID"`
	Opponent       string `json:"opponent"`
	OpponentRating int    `json:"opponentRating"`
}

func NewStartGameMessage(data StartGameData) (m SessionMessage) {
	return SessionMessage{
		Code: START_GAME,
		Data: data,
	}
}

func NewOpponentMoveMessage(move interface{}) (m SessionMessage) {
	return SessionMessage{
		Code: OPPONENT_MOVE,
		Data: move,
	}
}

func NewOpponentLeftMessage(playerID int) (m SessionMessage) {
	return SessionMessage{
		Code: OPPONENT_LEFT,
		Data: playerID,
	}
}

func NewErrorMessage(reason string) (m SessionMessage) {
	return SessionMessage{
		Code: ERROR,
		Data: reason,
	}
}
