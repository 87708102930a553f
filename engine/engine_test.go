package engine

import (
	"io"
	"math"
	"math/rand"
	"sync"
	"testing"

	engine_errors "github.com/gunnermanx/simplematchmaker/engine/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, options Options) *Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	options.Logger = logger

	e, err := New(options)
	require.NoError(t, err)
	return e
}

func TestNew(t *testing.T) {

	t.Run("defaults", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		o := e.Options()
		require.Equal(t, DEFAULT_POOL, o.Pool)
		require.Equal(t, DEFAULT_SKILL_THRESHOLD, o.SkillThreshold)
		require.Equal(t, 1024, o.TableSize)
		require.Equal(t, DEFAULT_HISTORY_CAPACITY, o.HistoryCapacity)
		require.Equal(t, HISTORY_POLICY_REJECT, o.HistoryPolicy)
		require.Equal(t, SEARCH_STRATEGY_SCAN, o.SearchStrategy)
		require.False(t, o.PurgeOnMatch)

		stats := e.Stats()
		require.Equal(t, 0, stats.Waiting)
		require.Equal(t, 1, stats.NextMatchID)
	})

	t.Run("invalid options", func(t *testing.T) {
		for name, options := range map[string]Options{
			"negative threshold": {SkillThreshold: -1},
			"negative table":     {TableSize: -5},
			"negative history":   {HistoryCapacity: -5},
			"unknown policy":     {HistoryPolicy: "drop"},
			"unknown strategy":   {SearchStrategy: "random"},
		} {
			_, err := New(options)
			require.Error(t, err, name)
		}
	})
}

func TestAddPlayer(t *testing.T) {

	t.Run("every registered player is retrievable with its rating", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		ratings := map[int]int{}
		rng := rand.New(rand.NewSource(3))
		for id := 1; id <= 500; id++ {
			ratings[id] = rng.Intn(3000)
			require.NoError(t, e.AddPlayer(id, ratings[id]))
		}
		for id, expected := range ratings {
			rating, ok := e.Rating(id)
			require.True(t, ok)
			require.Equal(t, expected, rating)
		}
		require.NoError(t, e.index.Validate())
		require.Equal(t, 500, e.Stats().Waiting)
	})

	t.Run("zero id is rejected", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		require.ErrorIs(t, e.AddPlayer(0, 1000), engine_errors.ErrInvalidPlayerID)
		require.Empty(t, e.Waiting())
	})

	t.Run("player already waiting is rejected", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		require.NoError(t, e.AddPlayer(1, 1000))
		err := e.AddPlayer(1, 1300)
		require.ErrorIs(t, err, engine_errors.ErrPlayerAlreadyWaiting)
		require.ErrorIs(t, err, engine_errors.ErrInvalidPlayerID)

		rating, _ := e.Rating(1)
		require.Equal(t, 1000, rating)
		require.Equal(t, []int{1}, e.Waiting())
	})

	t.Run("table capacity boundary", func(t *testing.T) {
		e := newTestEngine(t, Options{TableSize: 4})
		for id := 1; id <= 4; id++ {
			require.NoError(t, e.AddPlayer(id, 1000))
		}
		err := e.AddPlayer(5, 1000)
		require.ErrorIs(t, err, engine_errors.ErrTableCapacityExceeded)

		// nothing of the rejected player is left behind
		stats := e.Stats()
		require.Equal(t, 4, stats.Waiting)
		require.Equal(t, 4, stats.Indexed)
		require.Equal(t, 4, stats.TableEntries)
		require.False(t, e.IsWaiting(5))
	})

	t.Run("matched player can register again", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		require.NoError(t, e.AddPlayer(1, 1000))
		require.NoError(t, e.AddPlayer(2, 1000))
		m, err := e.RequestMatch()
		require.NoError(t, err)
		require.NotNil(t, m)

		require.NoError(t, e.AddPlayer(1, 1400))
		rating, _ := e.Rating(1)
		require.Equal(t, 1400, rating)
		require.Equal(t, 2, e.Stats().Indexed)
	})
}

func TestRequestMatch(t *testing.T) {

	t.Run("end to end", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		require.NoError(t, e.AddPlayer(1, 1000))
		require.NoError(t, e.AddPlayer(2, 1200))
		require.NoError(t, e.AddPlayer(3, 1100))

		m, err := e.RequestMatch()
		require.NoError(t, err)
		require.Equal(t, &Match{ID: 1, Player1ID: 1, Player2ID: 3}, m)
		require.Equal(t, []int{2}, e.Waiting())

		m, err = e.RequestMatch()
		require.NoError(t, err)
		require.Nil(t, m)
		require.Equal(t, []int{2}, e.Waiting())
		require.Equal(t, []Match{{ID: 1, Player1ID: 1, Player2ID: 3}}, e.Matches())
	})

	t.Run("fewer than two waiters does not change state", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		m, err := e.RequestMatch()
		require.NoError(t, err)
		require.Nil(t, m)

		require.NoError(t, e.AddPlayer(7, 1500))
		before := e.Stats()
		for i := 0; i < 3; i++ {
			m, err = e.RequestMatch()
			require.NoError(t, err)
			require.Nil(t, m)
		}
		require.Equal(t, before, e.Stats())
		require.Equal(t, []int{7}, e.Waiting())
	})

	t.Run("oldest compatible waiter wins over the closest", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		require.NoError(t, e.AddPlayer(1, 1000))
		require.NoError(t, e.AddPlayer(2, 1140))
		require.NoError(t, e.AddPlayer(3, 1000))

		m, err := e.RequestMatch()
		require.NoError(t, err)
		require.Equal(t, 2, m.Player2ID)
	})

	t.Run("front player is considered before later arrivals", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		require.NoError(t, e.AddPlayer(1, 1000)) // A
		require.NoError(t, e.AddPlayer(2, 1000)) // B
		require.NoError(t, e.AddPlayer(3, 1000)) // C

		m, err := e.RequestMatch()
		require.NoError(t, err)
		require.Equal(t, 1, m.Player1ID)
		require.Equal(t, []int{3}, e.Waiting())
	})

	t.Run("requeue moves the front player to the back", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		require.NoError(t, e.AddPlayer(1, 3000))
		require.NoError(t, e.AddPlayer(2, 1000))
		require.NoError(t, e.AddPlayer(3, 1500))
		require.NoError(t, e.AddPlayer(4, 2000))

		m, err := e.RequestMatch()
		require.NoError(t, err)
		require.Nil(t, m)
		require.Equal(t, []int{2, 3, 4, 1}, e.Waiting())
		require.Equal(t, 1, e.Stats().NextMatchID)
	})

	t.Run("threshold boundary is inclusive", func(t *testing.T) {
		e := newTestEngine(t, Options{SkillThreshold: 100})
		require.NoError(t, e.AddPlayer(1, 1000))
		require.NoError(t, e.AddPlayer(2, 1101))
		require.NoError(t, e.AddPlayer(3, 900))

		m, err := e.RequestMatch()
		require.NoError(t, err)
		require.Equal(t, 3, m.Player2ID)
	})

	t.Run("match ids increase from one", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		for id := 1; id <= 6; id++ {
			require.NoError(t, e.AddPlayer(id, 1000))
		}
		for expected := 1; expected <= 3; expected++ {
			m, err := e.RequestMatch()
			require.NoError(t, err)
			require.Equal(t, expected, m.ID)
		}
	})

	t.Run("history full rejects without side effects", func(t *testing.T) {
		e := newTestEngine(t, Options{HistoryCapacity: 1})
		for id := 1; id <= 4; id++ {
			require.NoError(t, e.AddPlayer(id, 1000))
		}
		_, err := e.RequestMatch()
		require.NoError(t, err)

		m, err := e.RequestMatch()
		require.ErrorIs(t, err, engine_errors.ErrMatchHistoryFull)
		require.Nil(t, m)
		require.Equal(t, []int{3, 4}, e.Waiting())
		require.Equal(t, 2, e.Stats().NextMatchID)
	})

	t.Run("history evicts the oldest match", func(t *testing.T) {
		e := newTestEngine(t, Options{HistoryCapacity: 2, HistoryPolicy: HISTORY_POLICY_EVICT_OLDEST})
		for id := 1; id <= 6; id++ {
			require.NoError(t, e.AddPlayer(id, 1000))
		}
		for i := 0; i < 3; i++ {
			_, err := e.RequestMatch()
			require.NoError(t, err)
		}
		matches := e.Matches()
		require.Len(t, matches, 2)
		require.Equal(t, 2, matches[0].ID)
		require.Equal(t, 3, matches[1].ID)
	})

	t.Run("matched players stay indexed unless purged", func(t *testing.T) {
		e := newTestEngine(t, Options{})
		require.NoError(t, e.AddPlayer(1, 1000))
		require.NoError(t, e.AddPlayer(2, 1000))
		_, err := e.RequestMatch()
		require.NoError(t, err)

		stats := e.Stats()
		require.Equal(t, 2, stats.Indexed)
		require.Equal(t, 2, stats.TableEntries)
		_, ok := e.FindClosest(1000)
		require.True(t, ok)

		purging := newTestEngine(t, Options{PurgeOnMatch: true})
		require.NoError(t, purging.AddPlayer(1, 1000))
		require.NoError(t, purging.AddPlayer(2, 1000))
		_, err = purging.RequestMatch()
		require.NoError(t, err)

		stats = purging.Stats()
		require.Equal(t, 0, stats.Indexed)
		require.Equal(t, 0, stats.TableEntries)
		_, ok = purging.FindClosest(1000)
		require.False(t, ok)
		require.NoError(t, purging.index.Validate())
	})
}

func TestCancel(t *testing.T) {
	e := newTestEngine(t, Options{})
	require.NoError(t, e.AddPlayer(1, 1000))
	require.NoError(t, e.AddPlayer(2, 1050))
	require.NoError(t, e.AddPlayer(3, 1100))

	require.NoError(t, e.Cancel(2))
	require.ErrorIs(t, e.Cancel(2), engine_errors.ErrPlayerNotWaiting)
	require.ErrorIs(t, e.Cancel(99), engine_errors.ErrPlayerNotWaiting)

	require.Equal(t, []int{1, 3}, e.Waiting())
	_, ok := e.Rating(2)
	require.False(t, ok)

	m, err := e.RequestMatch()
	require.NoError(t, err)
	require.Equal(t, 3, m.Player2ID)
}

func TestFindClosest(t *testing.T) {
	e := newTestEngine(t, Options{})
	require.NoError(t, e.AddPlayer(1, 2000))
	require.NoError(t, e.AddPlayer(2, 1000))

	id, ok := e.FindClosest(1080)
	require.True(t, ok)
	require.Equal(t, 2, id)

	_, ok = e.FindClosest(1500)
	require.False(t, ok)
}

// Both strategies must produce the same matches for the same calls
func TestSearchStrategiesAgree(t *testing.T) {
	for _, purge := range []bool{false, true} {
		rng := rand.New(rand.NewSource(11))
		scan := newTestEngine(t, Options{PurgeOnMatch: purge, TableSize: 4096})
		indexed := newTestEngine(t, Options{PurgeOnMatch: purge, TableSize: 4096, SearchStrategy: SEARCH_STRATEGY_INDEXED})

		nextID := 1
		for step := 0; step < 3000; step++ {
			switch op := rng.Intn(10); {
			case op < 5:
				rating := 800 + rng.Intn(1200)
				require.NoError(t, scan.AddPlayer(nextID, rating))
				require.NoError(t, indexed.AddPlayer(nextID, rating))
				nextID++
			case op < 6:
				waiting := scan.Waiting()
				if len(waiting) == 0 {
					continue
				}
				id := waiting[rng.Intn(len(waiting))]
				require.NoError(t, scan.Cancel(id))
				require.NoError(t, indexed.Cancel(id))
			default:
				m1, err := scan.RequestMatch()
				require.NoError(t, err)
				m2, err := indexed.RequestMatch()
				require.NoError(t, err)
				require.Equal(t, m1, m2, "step %d", step)
			}
			require.Equal(t, scan.Waiting(), indexed.Waiting(), "step %d", step)
		}
		require.NotEmpty(t, scan.Matches())
		require.NoError(t, indexed.index.Validate())
	}

	t.Run("ratings at the ends of the int range", func(t *testing.T) {
		for _, strategy := range []SearchStrategy{SEARCH_STRATEGY_SCAN, SEARCH_STRATEGY_INDEXED} {
			e := newTestEngine(t, Options{SearchStrategy: strategy})
			require.NoError(t, e.AddPlayer(1, math.MaxInt))
			require.NoError(t, e.AddPlayer(2, -1))
			require.NoError(t, e.AddPlayer(3, math.MinInt))

			m, err := e.RequestMatch()
			require.NoError(t, err)
			require.Nil(t, m, "strategy %s", strategy)
			require.Equal(t, []int{2, 3, 1}, e.Waiting(), "strategy %s", strategy)

			require.NoError(t, e.AddPlayer(4, math.MinInt+150))
			m, err = e.RequestMatch()
			require.NoError(t, err)
			require.Nil(t, m, "strategy %s", strategy)
			m, err = e.RequestMatch()
			require.NoError(t, err)
			require.Equal(t, &Match{ID: 1, Player1ID: 3, Player2ID: 4}, m, "strategy %s", strategy)
		}
	})
}

func TestConcurrentAccess(t *testing.T) {
	e := newTestEngine(t, Options{TableSize: 4096, HistoryPolicy: HISTORY_POLICY_EVICT_OLDEST})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= 200; i++ {
				require.NoError(t, e.AddPlayer(w*1000+i, 1000+i%300))
				_, err := e.RequestMatch()
				require.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	stats := e.Stats()
	require.Equal(t, 1600, stats.Waiting+2*(stats.NextMatchID-1))
	require.NoError(t, e.index.Validate())
}
