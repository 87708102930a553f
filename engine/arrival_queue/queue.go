package arrival_queue

// none marks an absent link in the node arena
const none = -1

type node struct {
	playerID int
	seq      uint64
	prev     int
	next     int
}

// Queue is the FIFO of waiting players.
//
// Nodes live in an arena slice and are linked by index. Freed slots are
// recycled through a free list so a long running pool does not grow the arena
// past its peak number of waiters.
type Queue struct {
	nodes []node
	free  []int
	slots map[int]int

	front int
	back  int
	seq   uint64
}

func New() *Queue {
	return &Queue{
		slots: make(map[int]int),
		front: none,
		back:  none,
	}
}

func (q *Queue) Len() int {
	return len(q.slots)
}

func (q *Queue) Contains(playerID int) bool {
	_, exists := q.slots[playerID]
	return exists
}

// Sequence returns the arrival stamp of a waiting player. Lower stamps arrived
// earlier; requeueing hands out a fresh stamp.
func (q *Queue) Sequence(playerID int) (seq uint64, ok bool) {
	var slot int
	if slot, ok = q.slots[playerID]; ok {
		seq = q.nodes[slot].seq
	}
	return
}

// Enqueue appends playerID to the back of the queue
func (q *Queue) Enqueue(playerID int) {
	q.seq++
	n := node{
		playerID: playerID,
		seq:      q.seq,
		prev:     q.back,
		next:     none,
	}

	var slot int
	if len(q.free) > 0 {
		slot = q.free[len(q.free)-1]
		q.free = q.free[:len(q.free)-1]
		q.nodes[slot] = n
	} else {
		slot = len(q.nodes)
		q.nodes = append(q.nodes, n)
	}

	if q.back == none {
		q.front = slot
	} else {
		q.nodes[q.back].next = slot
	}
	q.back = slot
	q.slots[playerID] = slot
}

// Dequeue removes and returns the front player. ok is false when the queue is
// empty.
func (q *Queue) Dequeue() (playerID int, ok bool) {
	if q.front == none {
		return
	}
	playerID = q.nodes[q.front].playerID
	q.unlink(q.front)
	ok = true
	return
}

// RemoveFirstMatching scans front to back and removes the first player for
// which pred returns true.
func (q *Queue) RemoveFirstMatching(pred func(playerID int) bool) (playerID int, ok bool) {
	for slot := q.front; slot != none; slot = q.nodes[slot].next {
		if pred(q.nodes[slot].playerID) {
			playerID = q.nodes[slot].playerID
			q.unlink(slot)
			ok = true
			return
		}
	}
	return
}

// Remove takes playerID out of the queue wherever it is
func (q *Queue) Remove(playerID int) bool {
	slot, exists := q.slots[playerID]
	if !exists {
		return false
	}
	q.unlink(slot)
	return true
}

// Snapshot returns the waiting players front to back
func (q *Queue) Snapshot() []int {
	ids := make([]int, 0, q.Len())
	for slot := q.front; slot != none; slot = q.nodes[slot].next {
		ids = append(ids, q.nodes[slot].playerID)
	}
	return ids
}

func (q *Queue) unlink(slot int) {
	n := q.nodes[slot]
	if n.prev == none {
		q.front = n.next
	} else {
		q.nodes[n.prev].next = n.next
	}
	if n.next == none {
		q.back = n.prev
	} else {
		q.nodes[n.next].prev = n.prev
	}

	delete(q.slots, n.playerID)
	q.nodes[slot] = node{prev: none, next: none}
	q.free = append(q.free, slot)
}
