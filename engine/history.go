package engine

// Match pairs two players. IDs start at 1 and increase with every match the
// engine records.
type Match struct {
	ID        int `json:"matchID"`
	Player1ID int `json:"player1ID"`
	Player2ID int `json:"player2ID"`
}

// history is a fixed capacity ring of recorded matches
type history struct {
	matches []Match
	head    int
	count   int
}

func newHistory(capacity int) *history {
	return &history{
		matches: make([]Match, capacity),
	}
}

func (h *history) full() bool {
	return h.count == len(h.matches)
}

// add appends m, overwriting the oldest entry when full
func (h *history) add(m Match) {
	tail := (h.head + h.count) % len(h.matches)
	h.matches[tail] = m
	if h.full() {
		h.head = (h.head + 1) % len(h.matches)
		return
	}
	h.count++
}

// list returns the recorded matches oldest first
func (h *history) list() []Match {
	out := make([]Match, 0, h.count)
	for i := 0; i < h.count; i++ {
		out = append(out, h.matches[(h.head+i)%len(h.matches)])
	}
	return out
}
