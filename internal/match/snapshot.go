package match

import (
	"time"

	"github.com/arenacore/server/internal/mapmodel"
	"github.com/arenacore/server/internal/vision"
)

// PlayerView is the wire-shape of one player within a filtered snapshot.
type PlayerView struct {
	ID           string
	Team         mapmodel.Team
	Pos          mapmodel.Vector2
	Rotation     float32
	Health       int
	Armor        int
	Alive        bool
	Kills        int
	Deaths       int
	MovementMode MovementMode
	CurrentWeapon string
}

// WallView mirrors a wall's destructible state for the wire; walls are
// global and always included regardless of visibility.
type WallView struct {
	ID          uint32
	Rect        mapmodel.Rect
	Material    mapmodel.Material
	SliceHealth [mapmodel.SliceCount]int
}

// ProjectileView mirrors one in-flight projectile.
type ProjectileView struct {
	ID   string
	Kind int
	Pos  mapmodel.Vector2
}

// SmokeView mirrors one smoke cloud.
type SmokeView struct {
	ID     string
	Center mapmodel.Vector2
	Radius float32
}

// Snapshot is the full per-recipient filtered state delivered at the 20Hz
// network tick.
type Snapshot struct {
	Players     map[string]PlayerView
	Walls       map[uint32]WallView
	Projectiles []ProjectileView
	SmokeZones  []SmokeView
	Vision      vision.Result
	LastProcessedInputSequence uint64
}

// BuildSnapshot constructs the filtered view delivered to recipient id: its
// own full state, every other player/projectile/smoke zone whose center
// lies within a tile the recipient's vision marks visible, and every
// renderable (non-boundary) wall unconditionally (walls are never hidden by
// vision). Dead players report health 0
// regardless of the authoritative value.
func (s *Simulation) BuildSnapshot(id string, now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	self, ok := s.players[id]
	if !ok {
		return Snapshot{}
	}
	vis := s.VisionFor(id, now)

	out := Snapshot{
		Players:     make(map[string]PlayerView, len(s.players)),
		Walls:       make(map[uint32]WallView, len(s.model.Walls)),
		Vision:      vis,
		LastProcessedInputSequence: self.LastProcessedInputSequence,
	}

	out.Players[id] = viewOf(self)

	for otherID, p := range s.players {
		if otherID == id {
			continue
		}
		if tileVisible(&vis.Tiles, p.Center()) {
			out.Players[otherID] = viewOf(p)
		}
	}

	for _, w := range s.model.RenderableWalls() {
		out.Walls[w.ID] = WallView{ID: w.ID, Rect: w.Rect, Material: w.Material, SliceHealth: w.SliceHealth}
	}

	for _, proj := range s.projectiles {
		if tileVisible(&vis.Tiles, proj.State.Pos) {
			out.Projectiles = append(out.Projectiles, ProjectileView{ID: proj.ID, Kind: int(proj.Kind), Pos: proj.State.Pos})
		}
	}

	for _, z := range s.smoke {
		if tileVisible(&vis.Tiles, z.Center) {
			out.SmokeZones = append(out.SmokeZones, SmokeView{ID: z.ID, Center: z.Center, Radius: z.CurrentRadius})
		}
	}

	return out
}

func viewOf(p *Player) PlayerView {
	health := p.Health
	if !p.Alive {
		health = 0
	}
	return PlayerView{
		ID: p.ID, Team: p.Team, Pos: p.Pos, Rotation: p.Rotation,
		Health: health, Armor: p.Armor, Alive: p.Alive,
		Kills: p.Kills, Deaths: p.Deaths, MovementMode: p.MovementMode,
		CurrentWeapon: p.Current,
	}
}

func tileVisible(tiles *vision.Bitmap, pos mapmodel.Vector2) bool {
	col := int(pos.X / vision.TileSize)
	row := int(pos.Y / vision.TileSize)
	if col < 0 || col >= vision.TileCols || row < 0 || row >= vision.TileRows {
		return false
	}
	return tiles.Test(vision.TileIndex(col, row))
}
