package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gunnermanx/simplematchmaker/datastore/model"
	messages "github.com/gunnermanx/simplematchmaker/session/messages"
	"github.com/sirupsen/logrus"
)

// Session is a pair of matched players. Player1 plays white.
type Session struct {
	ID      string
	MatchID int
	Player1 model.Player
	Player2 model.Player
}

func (s *Session) opponentOf(playerID int) int {
	if s.Player1.ID == playerID {
		return s.Player2.ID
	}
	return s.Player1.ID
}

type staleOpponent struct {
	conn     Player
	leaverID int
}

// Manager tracks connected players and the sessions they are in, and relays
// moves between the two players of a session.
type Manager struct {
	sync.RWMutex
	logger *logrus.Entry

	players  map[int]Player
	sessions map[string]*Session
	byPlayer map[int]*Session
}

func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{
		logger:   logger.WithField("component", "sessions"),
		players:  make(map[int]Player),
		sessions: make(map[string]*Session),
		byPlayer: make(map[int]*Session),
	}
}

func (m *Manager) IsConnected(playerID int) bool {
	m.RLock()
	defer m.RUnlock()
	_, exists := m.players[playerID]
	return exists
}

func (m *Manager) SessionFor(playerID int) (s *Session, ok bool) {
	m.RLock()
	defer m.RUnlock()
	s, ok = m.byPlayer[playerID]
	return
}

// Connect registers p and serves its messages until the connection ends.
// A previous connection of the same player is closed.
func (m *Manager) Connect(p Player) {
	m.Lock()
	previous, exists := m.players[p.GetID()]
	m.players[p.GetID()] = p
	m.Unlock()
	if exists {
		previous.CloseConnection()
	}

	logger := m.logger.WithField("playerID", p.GetID())
	logger.Info("player connected")
	defer m.disconnect(p)

	for {
		select {
		case <-p.GetContext().Done():
			logger.Debug("player context done")
			return
		default:
		}

		msg, err := p.Read()
		if err != nil {
			logger.Debugf("stopped reading from player: %s", err.Error())
			return
		}
		if err = m.handleMessage(p.GetID(), msg); err != nil {
			logger.WithField("code", msg.Code).Warnf("failed to handle message: %s", err.Error())
			_ = p.Write(messages.NewErrorMessage(err.Error()))
		}
	}
}

func (m *Manager) handleMessage(playerID int, msg messages.SessionMessage) error {
	switch msg.Code {
	case messages.MOVE:
		return m.Relay(playerID, msg.Data)
	default:
		return ErrUnknownMessageCode
	}
}

// StartSession creates the session for a match and tells both players who
// they play against. Players that are not connected are skipped.
func (m *Manager) StartSession(matchID int, p1, p2 model.Player) *Session {
	s := &Session{
		ID:      uuid.New().String(),
		MatchID: matchID,
		Player1: p1,
		Player2: p2,
	}

	m.Lock()
	// a player matched again leaves the session it was in
	var left []staleOpponent
	for _, id := range []int{p1.ID, p2.ID} {
		if previous, inSession := m.byPlayer[id]; inSession {
			m.detach(previous)
			opponentID := previous.opponentOf(id)
			if conn, connected := m.players[opponentID]; connected && opponentID != p1.ID && opponentID != p2.ID {
				left = append(left, staleOpponent{conn: conn, leaverID: id})
			}
		}
	}
	m.sessions[s.ID] = s
	m.byPlayer[p1.ID] = s
	m.byPlayer[p2.ID] = s
	conn1, ok1 := m.players[p1.ID]
	conn2, ok2 := m.players[p2.ID]
	m.Unlock()

	for _, o := range left {
		m.write(o.conn, messages.NewOpponentLeftMessage(o.leaverID))
	}

	logger := m.logger.WithFields(logrus.Fields{
		"sessionID": s.ID,
		"matchID":   matchID,
		"player1ID": p1.ID,
		"player2ID": p2.ID,
	})
	if !ok1 || !ok2 {
		logger.Warn("one or both matched players are not connected")
	}

	if ok1 {
		m.write(conn1, messages.NewStartGameMessage(messages.StartGameData{
			SessionID:      s.ID,
			MatchID:        matchID,
			Color:          messages.COLOR_WHITE,
			OpponentID:     p2.ID,
			Opponent:       p2.Name,
			OpponentRating: p2.Rating,
		}))
	}
	if ok2 {
		m.write(conn2, messages.NewStartGameMessage(messages.StartGameData{
			SessionID:      s.ID,
			MatchID:        matchID,
			Color:          messages.COLOR_BLACK,
			OpponentID:     p1.ID,
			Opponent:       p1.Name,
			OpponentRating: p1.Rating,
		}))
	}
	logger.Info("session started")
	return s
}

// Relay forwards a move from playerID to its opponent
func (m *Manager) Relay(playerID int, move interface{}) error {
	m.RLock()
	s, inSession := m.byPlayer[playerID]
	var opponent Player
	var connected bool
	if inSession {
		opponent, connected = m.players[s.opponentOf(playerID)]
	}
	m.RUnlock()

	if !inSession {
		return ErrPlayerNotInSession
	}
	if !connected {
		return ErrPlayerConnectionClosed
	}
	return opponent.Write(messages.NewOpponentMoveMessage(move))
}

// EndSession drops the session a player is in and notifies the opponent
func (m *Manager) EndSession(playerID int) {
	m.Lock()
	s, inSession := m.byPlayer[playerID]
	var opponent Player
	var connected bool
	if inSession {
		m.detach(s)
		opponent, connected = m.players[s.opponentOf(playerID)]
	}
	m.Unlock()

	if connected {
		m.write(opponent, messages.NewOpponentLeftMessage(playerID))
	}
}

// detach drops s and the player entries that still point at it. Either
// player may already be in a newer session. Callers hold the lock.
func (m *Manager) detach(s *Session) {
	delete(m.sessions, s.ID)
	for _, id := range []int{s.Player1.ID, s.Player2.ID} {
		if m.byPlayer[id] == s {
			delete(m.byPlayer, id)
		}
	}
}

func (m *Manager) disconnect(p Player) {
	m.Lock()
	current, exists := m.players[p.GetID()]
	replaced := exists && current != p
	if !replaced {
		delete(m.players, p.GetID())
	}
	m.Unlock()

	if replaced {
		return
	}
	m.EndSession(p.GetID())
	m.logger.WithField("playerID", p.GetID()).Info("player disconnected")
}

func (m *Manager) write(p Player, msg messages.SessionMessage) {
	if err := p.Write(msg); err != nil {
		m.logger.WithFields(logrus.Fields{
			"playerID": p.GetID(),
			"code":     msg.Code,
		}).Errorf("failed to write message: %s", err.Error())
	}
}
