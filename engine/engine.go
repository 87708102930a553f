package engine

import (
	"math"
	"sync"
	"time"

	"github.com/gunnermanx/simplematchmaker/engine/arrival_queue"
	engine_errors "github.com/gunnermanx/simplematchmaker/engine/errors"
	"github.com/gunnermanx/simplematchmaker/engine/rating_index"
	"github.com/gunnermanx/simplematchmaker/engine/rating_table"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Engine pairs waiting players by arrival order and rating.
//
// A registration is written to the arrival queue, the rating index and the
// rating table under a single lock, so every waiting player always has a
// rating that RequestMatch can read. Nothing inside the lock does I/O.
type Engine struct {
	sync.Mutex

	options Options
	logger  *logrus.Entry

	queue *arrival_queue.Queue
	index *rating_index.Index
	table *rating_table.Table

	history     *history
	nextMatchID int
}

// Stats is a point in time view of the engine
type Stats struct {
	Pool            string `json:"pool"`
	Waiting         int    `json:"waiting"`
	Indexed         int    `json:"indexed"`
	TableEntries    int    `json:"tableEntries"`
	TableSize       int    `json:"tableSize"`
	MatchesRecorded int    `json:"matchesRecorded"`
	NextMatchID     int    `json:"nextMatchID"`
}

// New validates options, fills in defaults and returns an empty engine
func New(options Options) (e *Engine, err error) {
	if err = options.applyDefaults(); err != nil {
		err = errors.Wrap(err, "invalid engine options")
		return
	}

	e = &Engine{
		options: options,
		logger: options.Logger.WithFields(logrus.Fields{
			"pool": options.Pool,
		}),
		queue:       arrival_queue.New(),
		index:       rating_index.New(),
		table:       rating_table.New(options.TableSize),
		history:     newHistory(options.HistoryCapacity),
		nextMatchID: 1,
	}
	return
}

// Options returns the options the engine runs with, defaults applied
func (e *Engine) Options() Options {
	return e.options
}

// AddPlayer registers a waiting player. Either all three structures take the
// player or none does.
func (e *Engine) AddPlayer(playerID int, rating int) (err error) {
	e.Lock()
	defer e.Unlock()

	logger := e.logger.WithField("playerID", playerID)

	if playerID == 0 {
		err = errors.Wrap(engine_errors.ErrInvalidPlayerID, "player id must be non-zero")
		e.options.Metrics.AddRegistrationRejected(e.options.Pool, "invalid_player_id")
		return
	}
	if e.queue.Contains(playerID) {
		err = errors.Wrapf(engine_errors.ErrPlayerAlreadyWaiting, "player %d", playerID)
		e.options.Metrics.AddRegistrationRejected(e.options.Pool, "already_waiting")
		return
	}

	// the table is the only step that can fail, so it goes first
	if err = e.table.Put(playerID, rating); err != nil {
		logger.Errorf("failed to register player: %s", err.Error())
		e.options.Metrics.AddRegistrationRejected(e.options.Pool, "table_capacity_exceeded")
		return
	}
	e.index.Insert(playerID, rating)
	e.queue.Enqueue(playerID)

	logger.WithField("rating", rating).Debug("player added to queue")
	e.options.Metrics.AddPlayerRegistered(e.options.Pool)
	e.options.Metrics.WaitingPlayers(e.options.Pool, e.queue.Len())
	return
}

// RequestMatch tries to pair the player at the front of the queue.
//
// A nil match with a nil error means no pairing was possible right now. With
// fewer than two waiters nothing changes. Otherwise the front player is either
// matched with the earliest waiter within the skill threshold, or moved to the
// back of the queue.
func (e *Engine) RequestMatch() (match *Match, err error) {
	start := time.Now()
	e.Lock()
	defer func() {
		e.Unlock()
		e.options.Metrics.AddRequestMatchElapsedTime(e.options.Pool, time.Since(start))
	}()

	if e.queue.Len() < 2 {
		return
	}
	if e.history.full() && e.options.HistoryPolicy == HISTORY_POLICY_REJECT {
		err = errors.Wrapf(engine_errors.ErrMatchHistoryFull, "capacity %d", len(e.history.matches))
		return
	}

	p1, _ := e.queue.Dequeue()
	r1, ok := e.table.Get(p1)
	if !ok {
		e.queue.Enqueue(p1)
		err = errors.Errorf("no rating recorded for waiting player %d", p1)
		e.logger.WithField("playerID", p1).Error(err)
		return
	}

	var p2 int
	var found bool
	switch e.options.SearchStrategy {
	case SEARCH_STRATEGY_INDEXED:
		p2, found = e.findPartnerIndexed(r1)
	default:
		p2, found = e.findPartnerScan(r1)
	}

	if !found {
		e.queue.Enqueue(p1)
		e.logger.WithFields(logrus.Fields{
			"playerID": p1,
			"rating":   r1,
		}).Debug("no compatible partner, player requeued")
		e.options.Metrics.AddPlayerRequeued(e.options.Pool)
		return
	}

	r2, _ := e.table.Get(p2)
	match = &Match{
		ID:        e.nextMatchID,
		Player1ID: p1,
		Player2ID: p2,
	}
	e.nextMatchID++
	e.history.add(*match)

	if e.options.PurgeOnMatch {
		e.purge(p1)
		e.purge(p2)
	}

	e.logger.WithFields(logrus.Fields{
		"matchID":   match.ID,
		"player1ID": p1,
		"player2ID": p2,
	}).Debug("match created")
	e.options.Metrics.AddMatchCreated(e.options.Pool, abs(r1-r2))
	e.options.Metrics.WaitingPlayers(e.options.Pool, e.queue.Len())
	return
}

// findPartnerScan removes and returns the first waiter within the threshold
func (e *Engine) findPartnerScan(rating int) (playerID int, found bool) {
	return e.queue.RemoveFirstMatching(func(candidate int) bool {
		r, ok := e.table.Get(candidate)
		return ok && rating_index.Within(rating, r, e.options.SkillThreshold)
	})
}

// findPartnerIndexed walks the rating window in the index and removes the
// waiter that arrived first, which is the same player the scan would pick
func (e *Engine) findPartnerIndexed(rating int) (playerID int, found bool) {
	var bestSeq uint64
	lo, hi := window(rating, e.options.SkillThreshold)
	e.index.Ascend(lo, hi, func(candidate, _ int) bool {
		seq, waiting := e.queue.Sequence(candidate)
		if waiting && (!found || seq < bestSeq) {
			playerID, bestSeq, found = candidate, seq, true
		}
		return true
	})
	if found {
		e.queue.Remove(playerID)
	}
	return
}

// Cancel removes a waiting player and drops its index and table entries
func (e *Engine) Cancel(playerID int) (err error) {
	e.Lock()
	defer e.Unlock()

	if !e.queue.Remove(playerID) {
		err = errors.Wrapf(engine_errors.ErrPlayerNotWaiting, "player %d", playerID)
		return
	}
	e.purge(playerID)

	e.logger.WithField("playerID", playerID).Debug("player cancelled")
	e.options.Metrics.AddPlayerCancelled(e.options.Pool)
	e.options.Metrics.WaitingPlayers(e.options.Pool, e.queue.Len())
	return
}

func (e *Engine) purge(playerID int) {
	e.index.Delete(playerID)
	e.table.Delete(playerID)
}

// FindClosest returns the first indexed player on the rating search path
// within the skill threshold. Matched players that were not purged are still
// indexed and can be returned.
func (e *Engine) FindClosest(rating int) (playerID int, ok bool) {
	e.Lock()
	defer e.Unlock()
	return e.index.FindClosest(rating, e.options.SkillThreshold)
}

// Rating returns the rating recorded for playerID
func (e *Engine) Rating(playerID int) (rating int, ok bool) {
	e.Lock()
	defer e.Unlock()
	return e.table.Get(playerID)
}

// IsWaiting reports whether playerID is in the arrival queue
func (e *Engine) IsWaiting(playerID int) bool {
	e.Lock()
	defer e.Unlock()
	return e.queue.Contains(playerID)
}

// Waiting returns the waiting players front to back
func (e *Engine) Waiting() []int {
	e.Lock()
	defer e.Unlock()
	return e.queue.Snapshot()
}

// Matches returns the recorded matches oldest first
func (e *Engine) Matches() []Match {
	e.Lock()
	defer e.Unlock()
	return e.history.list()
}

// Stats returns the queue, index, table and history sizes
func (e *Engine) Stats() Stats {
	e.Lock()
	defer e.Unlock()
	return Stats{
		Pool:            e.options.Pool,
		Waiting:         e.queue.Len(),
		Indexed:         e.index.Len(),
		TableEntries:    e.table.Len(),
		TableSize:       e.table.Size(),
		MatchesRecorded: e.history.count,
		NextMatchID:     e.nextMatchID,
	}
}

// window returns [rating-threshold, rating+threshold] clamped to the int range
func window(rating, threshold int) (lo, hi int) {
	lo, hi = math.MinInt, math.MaxInt
	if rating >= math.MinInt+threshold {
		lo = rating - threshold
	}
	if rating <= math.MaxInt-threshold {
		hi = rating + threshold
	}
	return
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
