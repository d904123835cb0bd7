package anim

import (
	"math/rand"

	"github.com/ankitraut99/Tocino/network"
)

// moveEpsilon absorbs floating-point jitter when comparing positions so
// that an unmoved node does not generate position-update noise.
const moveEpsilon = 1e-6

// synthesizedExtent is the side length of the square in which positions
// are synthesized for nodes without a mobility model.
const synthesizedExtent = 100.0

// TopoBounds is the bounding box of all observed node positions. Each
// scalar only ever widens.
type TopoBounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// WithMargin returns the bounds padded for the output coordinate space.
func (b TopoBounds) WithMargin() TopoBounds {
	marginX := (b.MaxX - b.MinX) * 0.1
	marginY := (b.MaxY - b.MinY) * 0.1
	if marginX < 1 {
		marginX = 1
	}
	if marginY < 1 {
		marginY = 1
	}

	return TopoBounds{
		MinX: b.MinX - marginX,
		MinY: b.MinY - marginY,
		MaxX: b.MaxX + marginX,
		MaxY: b.MaxY + marginY,
	}
}

// A positionTracker keeps the last-known position of every node and the
// bounding box of everything it has seen.
type positionTracker struct {
	positions map[uint32]network.Vector
	bounds    TopoBounds
	boundsSet bool

	synthesize bool
	rng        *rand.Rand
}

func newPositionTracker(synthesize bool, seed int64) *positionTracker {
	return &positionTracker{
		positions:  make(map[uint32]network.Vector),
		synthesize: synthesize,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// nodeHasMoved compares two positions with a small epsilon.
func nodeHasMoved(old, new network.Vector) bool {
	return old.DistanceTo(new) > moveEpsilon
}

// update refreshes the cached position of a node. It returns the position,
// whether it changed since the last observation (a first observation
// counts as a change), and whether a position is known at all. A node
// without a mobility model gets a synthesized position once if synthesis
// is enabled, and is otherwise unknown.
func (t *positionTracker) update(n *network.Node) (pos network.Vector, changed, known bool) {
	cached, haveCached := t.positions[n.ID()]

	if m := n.Mobility(); m != nil {
		pos = m.Position()
		if haveCached && !nodeHasMoved(cached, pos) {
			return cached, false, true
		}
		t.observe(n.ID(), pos)
		return pos, true, true
	}

	if haveCached {
		return cached, false, true
	}

	if !t.synthesize {
		return network.Vector{}, false, false
	}

	pos = network.Vector{
		X: t.rng.Float64() * synthesizedExtent,
		Y: t.rng.Float64() * synthesizedExtent,
	}
	t.observe(n.ID(), pos)

	return pos, true, true
}

func (t *positionTracker) observe(id uint32, pos network.Vector) {
	t.positions[id] = pos
	t.widen(pos)
}

func (t *positionTracker) widen(pos network.Vector) {
	if !t.boundsSet {
		t.bounds = TopoBounds{MinX: pos.X, MinY: pos.Y, MaxX: pos.X, MaxY: pos.Y}
		t.boundsSet = true
		return
	}

	if pos.X < t.bounds.MinX {
		t.bounds.MinX = pos.X
	}
	if pos.Y < t.bounds.MinY {
		t.bounds.MinY = pos.Y
	}
	if pos.X > t.bounds.MaxX {
		t.bounds.MaxX = pos.X
	}
	if pos.Y > t.bounds.MaxY {
		t.bounds.MaxY = pos.Y
	}
}
