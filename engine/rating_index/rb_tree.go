package rating_index

import (
	"fmt"
)

type Color uint8

const (
	red   Color = 0
	black Color = 1
)

// ref addresses a node in the arena
type ref int32

// absent is the empty link; it reads as a black leaf
const absent ref = -1

type node struct {
	playerID int
	rating   int
	color    Color
	left     ref
	right    ref
	parent   ref
}

// Index is a red-black tree of waiting players keyed by rating. Equal ratings
// are kept as separate nodes and go to the right subtree on insert.
type Index struct {
	nodes    []node
	free     []ref
	root     ref
	byPlayer map[int]ref
}

func New() *Index {
	return &Index{
		root:     absent,
		byPlayer: make(map[int]ref),
	}
}

func (t *Index) Len() int { return len(t.byPlayer) }

// Rating returns the indexed rating of playerID
func (t *Index) Rating(playerID int) (rating int, ok bool) {
	var r ref
	if r, ok = t.byPlayer[playerID]; ok {
		rating = t.nodes[r].rating
	}
	return
}

// Insert adds playerID with rating. A player already present is replaced.
func (t *Index) Insert(playerID int, rating int) {
	if _, exists := t.byPlayer[playerID]; exists {
		t.Delete(playerID)
	}

	y := absent
	x := t.root
	for x != absent {
		y = x
		if rating < t.nodes[x].rating {
			x = t.nodes[x].left
		} else {
			x = t.nodes[x].right
		}
	}

	z := t.alloc(node{
		playerID: playerID,
		rating:   rating,
		color:    red,
		left:     absent,
		right:    absent,
		parent:   y,
	})

	if y == absent {
		t.root = z
	} else if rating < t.nodes[y].rating {
		t.nodes[y].left = z
	} else {
		t.nodes[y].right = z
	}
	t.byPlayer[playerID] = z
	t.insertFixup(z)
}

// Delete removes playerID from the tree
func (t *Index) Delete(playerID int) bool {
	z, exists := t.byPlayer[playerID]
	if !exists {
		return false
	}

	y := z
	yOrigColor := t.colorOf(y)
	var x, xParent ref

	if t.nodes[z].left == absent {
		x = t.nodes[z].right
		xParent = t.nodes[z].parent
		t.transplant(z, x)
	} else if t.nodes[z].right == absent {
		x = t.nodes[z].left
		xParent = t.nodes[z].parent
		t.transplant(z, x)
	} else {
		y = t.minNode(t.nodes[z].right)
		yOrigColor = t.colorOf(y)
		x = t.nodes[y].right
		if t.nodes[y].parent == z {
			xParent = y
		} else {
			xParent = t.nodes[y].parent
			t.transplant(y, x)
			t.nodes[y].right = t.nodes[z].right
			t.nodes[t.nodes[y].right].parent = y
		}
		t.transplant(z, y)
		t.nodes[y].left = t.nodes[z].left
		t.nodes[t.nodes[y].left].parent = y
		t.nodes[y].color = t.nodes[z].color
	}

	if yOrigColor == black {
		t.deleteFixup(x, xParent)
	}

	delete(t.byPlayer, playerID)
	t.release(z)
	return true
}

// FindClosest walks down from the root and returns the first player on the
// search path whose rating is within threshold of rating. It is not a global
// nearest neighbour search.
func (t *Index) FindClosest(rating int, threshold int) (playerID int, ok bool) {
	n := t.root
	for n != absent {
		cur := &t.nodes[n]
		if Within(cur.rating, rating, threshold) {
			return cur.playerID, true
		}
		if rating < cur.rating {
			n = cur.left
		} else {
			n = cur.right
		}
	}
	return
}

// Ascend calls fn in rating order for every player with lo <= rating <= hi
// until fn returns false.
func (t *Index) Ascend(lo, hi int, fn func(playerID, rating int) bool) {
	t.ascend(t.root, lo, hi, fn)
}

func (t *Index) ascend(n ref, lo, hi int, fn func(playerID, rating int) bool) bool {
	if n == absent {
		return true
	}
	cur := t.nodes[n]
	// equal ratings can sit on either side after rotations
	if cur.rating >= lo {
		if !t.ascend(cur.left, lo, hi, fn) {
			return false
		}
	}
	if cur.rating >= lo && cur.rating <= hi {
		if !fn(cur.playerID, cur.rating) {
			return false
		}
	}
	if cur.rating <= hi {
		return t.ascend(cur.right, lo, hi, fn)
	}
	return true
}

// Validate checks ordering, parent links and the red-black properties
func (t *Index) Validate() (err error) {
	if t.root == absent {
		if len(t.byPlayer) != 0 {
			err = fmt.Errorf("empty tree with %d indexed players", len(t.byPlayer))
		}
		return
	}
	if t.nodes[t.root].parent != absent {
		return fmt.Errorf("root has a parent")
	}
	if t.nodes[t.root].color != black {
		return fmt.Errorf("root is red")
	}

	count := 0
	if _, err = t.validate(t.root, &count); err != nil {
		return
	}
	if count != len(t.byPlayer) {
		err = fmt.Errorf("tree holds %d nodes but %d players are indexed", count, len(t.byPlayer))
	}
	return
}

func (t *Index) validate(n ref, count *int) (blackHeight int, err error) {
	if n == absent {
		return 1, nil
	}
	*count++
	cur := t.nodes[n]
	if indexed, ok := t.byPlayer[cur.playerID]; !ok || indexed != n {
		return 0, fmt.Errorf("player %d is not indexed at its node", cur.playerID)
	}

	for _, child := range []ref{cur.left, cur.right} {
		if child == absent {
			continue
		}
		if t.nodes[child].parent != n {
			return 0, fmt.Errorf("broken parent link below player %d", cur.playerID)
		}
		if cur.color == red && t.nodes[child].color == red {
			return 0, fmt.Errorf("red node %d has a red child", cur.playerID)
		}
	}
	if cur.left != absent && t.maxNodeRating(cur.left) > cur.rating {
		return 0, fmt.Errorf("left subtree of player %d is out of order", cur.playerID)
	}
	if cur.right != absent && t.nodes[t.minNode(cur.right)].rating < cur.rating {
		return 0, fmt.Errorf("right subtree of player %d is out of order", cur.playerID)
	}

	var lh, rh int
	if lh, err = t.validate(cur.left, count); err != nil {
		return
	}
	if rh, err = t.validate(cur.right, count); err != nil {
		return
	}
	if lh != rh {
		return 0, fmt.Errorf("black height mismatch at player %d: %d vs %d", cur.playerID, lh, rh)
	}
	if cur.color == black {
		lh++
	}
	return lh, nil
}

/******************** arena ********************/

func (t *Index) alloc(n node) ref {
	if len(t.free) > 0 {
		r := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.nodes[r] = n
		return r
	}
	t.nodes = append(t.nodes, n)
	return ref(len(t.nodes) - 1)
}

func (t *Index) release(r ref) {
	t.nodes[r] = node{left: absent, right: absent, parent: absent}
	t.free = append(t.free, r)
}

/******************** internal helpers ********************/

func (t *Index) colorOf(n ref) Color {
	if n == absent {
		return black
	}
	return t.nodes[n].color
}

func (t *Index) setColor(n ref, c Color) {
	if n != absent {
		t.nodes[n].color = c
	}
}

func (t *Index) parentOf(n ref) ref {
	if n == absent {
		return absent
	}
	return t.nodes[n].parent
}

func (t *Index) leftOf(n ref) ref {
	if n == absent {
		return absent
	}
	return t.nodes[n].left
}

func (t *Index) rightOf(n ref) ref {
	if n == absent {
		return absent
	}
	return t.nodes[n].right
}

func (t *Index) minNode(n ref) ref {
	for t.nodes[n].left != absent {
		n = t.nodes[n].left
	}
	return n
}

func (t *Index) maxNodeRating(n ref) int {
	for t.nodes[n].right != absent {
		n = t.nodes[n].right
	}
	return t.nodes[n].rating
}

func (t *Index) leftRotate(x ref) {
	y := t.nodes[x].right
	t.nodes[x].right = t.nodes[y].left
	if t.nodes[y].left != absent {
		t.nodes[t.nodes[y].left].parent = x
	}
	t.nodes[y].parent = t.nodes[x].parent
	if p := t.nodes[x].parent; p == absent {
		t.root = y
	} else if x == t.nodes[p].left {
		t.nodes[p].left = y
	} else {
		t.nodes[p].right = y
	}
	t.nodes[y].left = x
	t.nodes[x].parent = y
}

func (t *Index) rightRotate(y ref) {
	x := t.nodes[y].left
	t.nodes[y].left = t.nodes[x].right
	if t.nodes[x].right != absent {
		t.nodes[t.nodes[x].right].parent = y
	}
	t.nodes[x].parent = t.nodes[y].parent
	if p := t.nodes[y].parent; p == absent {
		t.root = x
	} else if y == t.nodes[p].right {
		t.nodes[p].right = x
	} else {
		t.nodes[p].left = x
	}
	t.nodes[x].right = y
	t.nodes[y].parent = x
}

func (t *Index) insertFixup(z ref) {
	for t.colorOf(t.parentOf(z)) == red {
		p := t.parentOf(z)
		g := t.parentOf(p)
		if p == t.leftOf(g) {
			u := t.rightOf(g)
			if t.colorOf(u) == red {
				t.setColor(p, black)
				t.setColor(u, black)
				t.setColor(g, red)
				z = g
				continue
			}
			if z == t.rightOf(p) {
				z = p
				t.leftRotate(z)
				p = t.parentOf(z)
				g = t.parentOf(p)
			}
			t.setColor(p, black)
			t.setColor(g, red)
			t.rightRotate(g)
		} else {
			u := t.leftOf(g)
			if t.colorOf(u) == red {
				t.setColor(p, black)
				t.setColor(u, black)
				t.setColor(g, red)
				z = g
				continue
			}
			if z == t.leftOf(p) {
				z = p
				t.rightRotate(z)
				p = t.parentOf(z)
				g = t.parentOf(p)
			}
			t.setColor(p, black)
			t.setColor(g, red)
			t.leftRotate(g)
		}
	}
	t.setColor(t.root, black)
}

func (t *Index) transplant(u, v ref) {
	p := t.nodes[u].parent
	if p == absent {
		t.root = v
	} else if u == t.nodes[p].left {
		t.nodes[p].left = v
	} else {
		t.nodes[p].right = v
	}
	if v != absent {
		t.nodes[v].parent = p
	}
}

// deleteFixup restores the red-black properties after removing a black node.
// x may be absent, so its parent is tracked explicitly.
func (t *Index) deleteFixup(x, parent ref) {
	for x != t.root && t.colorOf(x) == black {
		if x == t.leftOf(parent) {
			w := t.rightOf(parent)
			if t.colorOf(w) == red {
				t.setColor(w, black)
				t.setColor(parent, red)
				t.leftRotate(parent)
				w = t.rightOf(parent)
			}
			if t.colorOf(t.leftOf(w)) == black && t.colorOf(t.rightOf(w)) == black {
				t.setColor(w, red)
				x = parent
				parent = t.parentOf(x)
			} else {
				if t.colorOf(t.rightOf(w)) == black {
					t.setColor(t.leftOf(w), black)
					t.setColor(w, red)
					t.rightRotate(w)
					w = t.rightOf(parent)
				}
				t.setColor(w, t.colorOf(parent))
				t.setColor(parent, black)
				t.setColor(t.rightOf(w), black)
				t.leftRotate(parent)
				x = t.root
				parent = absent
			}
		} else {
			w := t.leftOf(parent)
			if t.colorOf(w) == red {
				t.setColor(w, black)
				t.setColor(parent, red)
				t.rightRotate(parent)
				w = t.leftOf(parent)
			}
			if t.colorOf(t.rightOf(w)) == black && t.colorOf(t.leftOf(w)) == black {
				t.setColor(w, red)
				x = parent
				parent = t.parentOf(x)
			} else {
				if t.colorOf(t.leftOf(w)) == black {
					t.setColor(t.rightOf(w), black)
					t.setColor(w, red)
					t.leftRotate(w)
					w = t.leftOf(parent)
				}
				t.setColor(w, t.colorOf(parent))
				t.setColor(parent, black)
				t.setColor(t.leftOf(w), black)
				t.rightRotate(parent)
				x = t.root
				parent = absent
			}
		}
	}
	t.setColor(x, black)
}

// Within reports whether a and b are at most threshold apart. The gap is
// never computed directly so ratings at the ends of the int range cannot wrap.
func Within(a, b, threshold int) bool {
	if a > b {
		a, b = b, a
	}
	gap := b - a
	return gap >= 0 && gap <= threshold
}
