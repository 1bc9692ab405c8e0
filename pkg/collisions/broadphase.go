package collisions

import (
	"math"
	"sort"

	"github.com/cbodonnell/rigid2d/pkg/body"
	"github.com/cbodonnell/rigid2d/pkg/vector"
	"github.com/solarlune/resolv"
)

const DefaultCellSize = 16

// BroadPhase buckets body bounding boxes into a resolv space so that only
// bodies sharing a cell are handed to the SAT test. Bodies outside the world
// rectangle are never reported as candidates.
type BroadPhase struct {
	space   *resolv.Space
	origin  vector.Vector
	objects map[*body.Body]*resolv.Object
}

type NewBroadPhaseOptions struct {
	// Origin is the lower left corner of the world rectangle.
	Origin   vector.Vector
	Width    float64
	Height   float64
	CellSize int
}

func NewBroadPhase(opts NewBroadPhaseOptions) *BroadPhase {
	cellSize := opts.CellSize
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &BroadPhase{
		space:   resolv.NewSpace(int(math.Ceil(opts.Width)), int(math.Ceil(opts.Height)), cellSize, cellSize),
		origin:  opts.Origin,
		objects: make(map[*body.Body]*resolv.Object),
	}
}

// Sync inserts or moves an object for every live body and drops objects of
// bodies that are no longer listed or have been removed.
func (bp *BroadPhase) Sync(bodies []*body.Body) {
	seen := make(map[*body.Body]bool, len(bodies))
	for _, b := range bodies {
		if b.IsRemoved() {
			continue
		}
		seen[b] = true
		x, y, w, h := bp.rect(b)
		obj, ok := bp.objects[b]
		if !ok {
			obj = resolv.NewObject(x, y, w, h)
			obj.Data = b
			bp.space.Add(obj)
			bp.objects[b] = obj
			continue
		}
		obj.Position.X = x
		obj.Position.Y = y
		obj.Size.X = w
		obj.Size.Y = h
		obj.Update()
	}
	for b := range bp.objects {
		if !seen[b] {
			bp.Remove(b)
		}
	}
}

// Candidates returns the bodies whose cells overlap those of b.
func (bp *BroadPhase) Candidates(b *body.Body) []*body.Body {
	obj, ok := bp.objects[b]
	if !ok {
		return nil
	}
	collision := obj.Check(0, 0)
	if collision == nil {
		return nil
	}
	candidates := make([]*body.Body, 0, len(collision.Objects))
	for _, o := range collision.Objects {
		if other, ok := o.Data.(*body.Body); ok {
			candidates = append(candidates, other)
		}
	}
	return candidates
}

func (bp *BroadPhase) Remove(b *body.Body) {
	obj, ok := bp.objects[b]
	if !ok {
		return
	}
	bp.space.Remove(obj)
	delete(bp.objects, b)
}

// Len returns the number of tracked bodies.
func (bp *BroadPhase) Len() int {
	return len(bp.objects)
}

// rect converts a body's bounds into space coordinates. resolv treats the
// far edge as exclusive whole units, so the box is padded by one unit.
func (bp *BroadPhase) rect(b *body.Body) (float64, float64, float64, float64) {
	min, max := b.Polygon().Bounds()
	min = min.Subtract(bp.origin)
	max = max.Subtract(bp.origin)
	return min.X, min.Y, max.X - min.X + 1, max.Y - min.Y + 1
}

// Pair is a colliding pair of bodies. A precedes B in the input order.
type Pair struct {
	A    *body.Body
	B    *body.Body
	Info Info
}

// FindAll syncs the broad phase with bodies and runs the SAT test on every
// candidate pair once. Pairs are ordered by the index of A, then of B.
func FindAll(bp *BroadPhase, bodies []*body.Body) []Pair {
	bp.Sync(bodies)

	index := make(map[*body.Body]int, len(bodies))
	for i, b := range bodies {
		index[b] = i
	}

	type indexedPair struct {
		i, j int
		pair Pair
	}
	var found []indexedPair
	for i, a := range bodies {
		if a.IsRemoved() {
			continue
		}
		for _, b := range bp.Candidates(a) {
			j, ok := index[b]
			if !ok || j <= i {
				continue
			}
			if info := Find(a, b); info.Collided {
				found = append(found, indexedPair{i: i, j: j, pair: Pair{A: a, B: b, Info: info}})
			}
		}
	}
	sort.Slice(found, func(x, y int) bool {
		if found[x].i != found[y].i {
			return found[x].i < found[y].i
		}
		return found[x].j < found[y].j
	})

	pairs := make([]Pair, len(found))
	for k, f := range found {
		pairs[k] = f.pair
	}
	return pairs
}
