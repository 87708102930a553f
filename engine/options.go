package engine

import (
	"github.com/gunnermanx/simplematchmaker/engine/rating_table"
	"github.com/gunnermanx/simplematchmaker/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_POOL             = "default"
	DEFAULT_SKILL_THRESHOLD  = 150
	DEFAULT_HISTORY_CAPACITY = 1000
)

// SearchStrategy selects how RequestMatch looks for a partner
type SearchStrategy string

const (
	// SEARCH_STRATEGY_SCAN walks the waiting players front to back
	SEARCH_STRATEGY_SCAN SearchStrategy = "scan"
	// SEARCH_STRATEGY_INDEXED walks only the rating window in the index and
	// keeps the earliest arrival, so it pairs exactly like the scan
	SEARCH_STRATEGY_INDEXED SearchStrategy = "indexed"
)

// HistoryPolicy decides what happens when the match history is at capacity
type HistoryPolicy string

const (
	HISTORY_POLICY_REJECT       HistoryPolicy = "reject"
	HISTORY_POLICY_EVICT_OLDEST HistoryPolicy = "evict_oldest"
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Pool string

	// SkillThreshold is the largest rating gap allowed in a match. Zero
	// selects DEFAULT_SKILL_THRESHOLD.
	SkillThreshold  int
	TableSize       int
	HistoryCapacity int
	HistoryPolicy   HistoryPolicy
	SearchStrategy  SearchStrategy

	// PurgeOnMatch removes matched players from the rating index and table.
	// When false their entries stay until the engine is discarded.
	PurgeOnMatch bool

	Logger  *logrus.Logger
	Metrics metrics.MatchmakingMetrics
}

func (o *Options) applyDefaults() (err error) {
	if o.Pool == "" {
		o.Pool = DEFAULT_POOL
	}
	if o.SkillThreshold == 0 {
		o.SkillThreshold = DEFAULT_SKILL_THRESHOLD
	}
	if o.SkillThreshold < 0 {
		err = errors.Errorf("skill threshold must not be negative, got %d", o.SkillThreshold)
		return
	}
	if o.TableSize == 0 {
		o.TableSize = rating_table.DEFAULT_TABLE_SIZE
	}
	if o.TableSize < 0 {
		err = errors.Errorf("table size must be positive, got %d", o.TableSize)
		return
	}
	if o.HistoryCapacity == 0 {
		o.HistoryCapacity = DEFAULT_HISTORY_CAPACITY
	}
	if o.HistoryCapacity < 0 {
		err = errors.Errorf("history capacity must be positive, got %d", o.HistoryCapacity)
		return
	}

	switch o.HistoryPolicy {
	case "":
		o.HistoryPolicy = HISTORY_POLICY_REJECT
	case HISTORY_POLICY_REJECT, HISTORY_POLICY_EVICT_OLDEST:
	default:
		err = errors.Errorf("unknown history policy: %s", o.HistoryPolicy)
		return
	}

	switch o.SearchStrategy {
	case "":
		o.SearchStrategy = SEARCH_STRATEGY_SCAN
	case SEARCH_STRATEGY_SCAN, SEARCH_STRATEGY_INDEXED:
	default:
		err = errors.Errorf("unknown search strategy: %s", o.SearchStrategy)
		return
	}

	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.NewNoopMetrics()
	}
	return
}
