package mapmodel

import "encoding/json"

// Orientation is the long axis a wall's five slices are subdivided along.
type Orientation int

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

// Material determines which hitscan/explosion damage categories apply to a
// wall (see the weapon/material matrix owned by the weapons package). It does
// NOT change the destruction threshold for bullet passability — a slice with
// health <= 0 is always passable regardless of material.
type Material int

const (
	MaterialConcrete Material = iota
	MaterialWood
	MaterialGlass
	MaterialMetal
)

// String renders a Material the way the wire protocol names it.
func (m Material) String() string {
	switch m {
	case MaterialWood:
		return "wood"
	case MaterialGlass:
		return "glass"
	case MaterialMetal:
		return "metal"
	default:
		return "concrete"
	}
}

// MarshalJSON renders a Material as its wire name rather than its
// underlying int.
func (m Material) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// SliceCount is the number of equal-width subdivisions every wall has along
// its long axis.
const SliceCount = 5

// Wall is a destructible rectangle subdivided into SliceCount independently
// destructible slices along its longer dimension.
type Wall struct {
	ID          uint32
	Rect        Rect
	Orientation Orientation
	Material    Material

	// SliceHealth holds the remaining health of each slice; zero or below
	// means destroyed. Index 0 is the slice nearest (X,Y) for a horizontal
	// wall's long axis, or nearest (X,Y) along Y for a vertical wall.
	SliceHealth [SliceCount]int
	MaxSlice    int

	// Renderable is false for invisible boundary walls used only for
	// physics containment; such walls never appear in filtered state.
	Renderable bool

	sliceLongDim float32
}

// NewWall derives orientation and slice geometry from rect and constructs a
// wall with all slices at full health.
func NewWall(id uint32, rect Rect, material Material, maxSliceHealth int, renderable bool) *Wall {
	orientation := OrientationHorizontal
	if rect.H > rect.W {
		orientation = OrientationVertical
	}

	longDim := rect.W
	if orientation == OrientationVertical {
		longDim = rect.H
	}

	w := &Wall{
		ID:           id,
		Rect:         rect,
		Orientation:  orientation,
		Material:     material,
		MaxSlice:     maxSliceHealth,
		Renderable:   renderable,
		sliceLongDim: longDim / float32(SliceCount),
	}
	for i := range w.SliceHealth {
		w.SliceHealth[i] = maxSliceHealth
	}
	return w
}

// PreZeroSlices zeroes the given slice indices at load time, used to
// represent partial walls (shorter than five full tiles).
func (w *Wall) PreZeroSlices(indices ...int) {
	for _, i := range indices {
		if i >= 0 && i < SliceCount {
			w.SliceHealth[i] = 0
		}
	}
}

// DestructionMask derives the boolean destroyed-vector from slice health.
// destructionMask[i] <=> sliceHealth[i] <= 0, a correctness invariant.
func (w *Wall) DestructionMask() [SliceCount]bool {
	var mask [SliceCount]bool
	for i, h := range w.SliceHealth {
		mask[i] = h <= 0
	}
	return mask
}

// SliceRect returns the rectangle of the i'th slice, regardless of whether it
// is currently intact or destroyed.
func (w *Wall) SliceRect(i int) Rect {
	if w.Orientation == OrientationHorizontal {
		return Rect{
			X: w.Rect.X + float32(i)*w.sliceLongDim,
			Y: w.Rect.Y,
			W: w.sliceLongDim,
			H: w.Rect.H,
		}
	}
	return Rect{
		X: w.Rect.X,
		Y: w.Rect.Y + float32(i)*w.sliceLongDim,
		W: w.Rect.W,
		H: w.sliceLongDim,
	}
}

// SliceLongDim returns longDim/5 for this wall, used by DestructionEngine's
// SliceAt to locate the slice containing a local point.
func (w *Wall) SliceLongDim() float32 {
	return w.sliceLongDim
}

// IntactRects returns the rectangles of every slice whose health is above
// zero. The AABB used for collision is the union of these rectangles, not
// the wall's original bounding box — a wall with destroyed end slices no
// longer collides there.
func (w *Wall) IntactRects() []Rect {
	rects := make([]Rect, 0, SliceCount)
	for i, h := range w.SliceHealth {
		if h > 0 {
			rects = append(rects, w.SliceRect(i))
		}
	}
	return rects
}

// IsFullyDestroyed reports whether every slice has health <= 0.
func (w *Wall) IsFullyDestroyed() bool {
	for _, h := range w.SliceHealth {
		if h > 0 {
			return false
		}
	}
	return true
}

// Reset restores every slice to full health — used on match reset.
func (w *Wall) Reset() {
	for i := range w.SliceHealth {
		w.SliceHealth[i] = w.MaxSlice
	}
}
