// Package mapmodel owns static match geometry: walls with their destructible
// slice model, spawn points, and the spatial tile index used by the vision
// and physics engines.
package mapmodel

import (
	"encoding/json"
	"fmt"
)

// Team identifies one of the two fixed teams.
type Team int

const (
	TeamRed Team = iota
	TeamBlue
)

// String renders a Team the way the wire protocol names it.
func (t Team) String() string {
	if t == TeamBlue {
		return "blue"
	}
	return "red"
}

// MarshalJSON renders a Team as its wire name ("red"/"blue") rather than
// its underlying int.
func (t Team) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either the wire name or a raw int, so internal
// round-trips and client payloads both decode cleanly.
func (t *Team) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		if name == "blue" {
			*t = TeamBlue
		} else {
			*t = TeamRed
		}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Team(n)
	return nil
}

// SpawnPoint is a candidate spawn location for a team.
type SpawnPoint struct {
	Team Team
	Pos  Vector2
}

// WallDescriptor is the on-disk shape a map file contributes for one wall;
// the on-disk representation is an input the core consumes, not something
// this package specifies beyond these fields.
type WallDescriptor struct {
	Rect           Rect
	Material       Material
	MaxSliceHealth int
	ZeroedSlices   []int // pre-destroyed slices, for partial walls
}

// MapDescriptor is the input to Load: walls plus spawn points for a map.
type MapDescriptor struct {
	Width, Height float32
	Walls         []WallDescriptor
	Spawns        []SpawnPoint
}

// TileSize is the fixed tile edge length the vision/physics spatial index
// uses, per the field-of-view contract.
const TileSize = 8

// Model is the static geometry for one match: walls (including synthetic
// boundary walls), spawn points, and a read-only spatial index from 8x8
// tiles to overlapping wall ids.
type Model struct {
	Width, Height float32
	Walls         map[uint32]*Wall
	BoundaryIDs   map[uint32]struct{}
	Spawns        []SpawnPoint
	Grid          *TileGrid

	nextWallID uint32
}

// DefaultFallbackSpawn returns the team fallback spawn used when a
// requested position is invalid (e.g. overlaps a wall, or is (0,0)).
func DefaultFallbackSpawn(team Team) Vector2 {
	if team == TeamRed {
		return Vector2{X: 50, Y: 135}
	}
	return Vector2{X: 430, Y: 135}
}

// Load builds a Model from a MapDescriptor, computing slice geometry once
// per wall and synthesizing four invisible boundary walls around the field.
func Load(desc MapDescriptor) (*Model, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("mapmodel: invalid dimensions %vx%v", desc.Width, desc.Height)
	}

	m := &Model{
		Width:       desc.Width,
		Height:      desc.Height,
		Walls:       make(map[uint32]*Wall, len(desc.Walls)+4),
		BoundaryIDs: make(map[uint32]struct{}, 4),
		Spawns:      append([]SpawnPoint(nil), desc.Spawns...),
		Grid:        NewTileGrid(desc.Width, desc.Height, TileSize),
	}

	for _, wd := range desc.Walls {
		id := m.nextWallID
		m.nextWallID++
		w := NewWall(id, wd.Rect, wd.Material, wd.MaxSliceHealth, true)
		w.PreZeroSlices(wd.ZeroedSlices...)
		m.Walls[id] = w
	}

	m.addBoundaryWalls()
	m.rebuildIndex()

	return m, nil
}

// boundaryThickness is how deep each invisible containment wall extends
// outward; thick enough that fast projectiles can't tunnel through in one
// physics tick at realistic speeds.
const boundaryThickness = 40

func (m *Model) addBoundaryWalls() {
	bounds := []Rect{
		{X: -boundaryThickness, Y: -boundaryThickness, W: m.Width + 2*boundaryThickness, H: boundaryThickness},       // top
		{X: -boundaryThickness, Y: m.Height, W: m.Width + 2*boundaryThickness, H: boundaryThickness},                 // bottom
		{X: -boundaryThickness, Y: -boundaryThickness, W: boundaryThickness, H: m.Height + 2*boundaryThickness},      // left
		{X: m.Width, Y: -boundaryThickness, W: boundaryThickness, H: m.Height + 2*boundaryThickness},                 // right
	}
	for _, r := range bounds {
		id := m.nextWallID
		m.nextWallID++
		w := NewWall(id, r, MaterialConcrete, 1<<30, false)
		m.Walls[id] = w
		m.BoundaryIDs[id] = struct{}{}
	}
}

// rebuildIndex repopulates the spatial grid from current wall rects. Called
// once at load; slice destruction does not move a wall's bounding rect so
// the index never needs rebuilding after a hit, only after Reset.
func (m *Model) rebuildIndex() {
	m.Grid.Clear()
	for id, w := range m.Walls {
		m.Grid.InsertRect(id, w.Rect)
	}
}

// Reset restores every wall to full slice health and rebuilds the index.
func (m *Model) Reset() {
	for _, w := range m.Walls {
		w.Reset()
	}
	m.rebuildIndex()
}

// IsRenderable reports whether wall id should ever appear in filtered
// client state (boundary walls never do).
func (m *Model) IsRenderable(id uint32) bool {
	w, ok := m.Walls[id]
	return ok && w.Renderable
}

// SpawnPointsFor returns every spawn point registered for team.
func (m *Model) SpawnPointsFor(team Team) []Vector2 {
	var pts []Vector2
	for _, sp := range m.Spawns {
		if sp.Team == team {
			pts = append(pts, sp.Pos)
		}
	}
	if len(pts) == 0 {
		pts = append(pts, DefaultFallbackSpawn(team))
	}
	return pts
}

// WallsOverlapping returns the walls (including boundary walls) whose
// bounding rect shares a tile with rect, via the spatial index.
func (m *Model) WallsOverlapping(rect Rect) []*Wall {
	ids := m.Grid.QueryRect(rect)
	out := make([]*Wall, 0, len(ids))
	for _, id := range ids {
		if w, ok := m.Walls[id]; ok {
			out = append(out, w)
		}
	}
	return out
}

// RenderableWalls returns every non-boundary wall, for inclusion in
// filtered snapshots (walls are global — never hidden by vision).
func (m *Model) RenderableWalls() []*Wall {
	out := make([]*Wall, 0, len(m.Walls))
	for _, w := range m.Walls {
		if w.Renderable {
			out = append(out, w)
		}
	}
	return out
}
