package vision

import (
	"math"

	"github.com/arenacore/server/internal/mapmodel"
)

// degrees-per-bucket for the angular ray sweep; 2 degrees gives 180 rays,
// enough resolution to resolve individual 96px-wide wall slices at the
// vision ranges this system operates at while staying cheap per player.
const bucketDegrees = 2
const bucketCount = 360 / bucketDegrees

// SmokeZone is the subset of match.SmokeZone the vision system needs to
// compute occlusion: a stationary circle with linearly-falling density.
type SmokeZone struct {
	Center       mapmodel.Vector2
	CurrentRadius float32
	MaxDensity   float32
}

// Config mirrors config.VisionConfig without importing the config package,
// keeping this package dependency-free of server wiring concerns.
type Config struct {
	ForwardConeRadius  float32
	ForwardConeHalfDeg float32
	PeripheralRadius   float32
	ExtensionRadius    float32
	ExtensionHalfDeg   float32
	RearExclusionDeg   float32
}

// DefaultConfig returns the spec's fixed vision tuning.
func DefaultConfig() Config {
	return Config{
		ForwardConeRadius:  100,
		ForwardConeHalfDeg: 60,
		PeripheralRadius:   30,
		ExtensionRadius:    130,
		ExtensionHalfDeg:   15,
		RearExclusionDeg:   45,
	}
}

// Result is one player's computed field of view for a network tick.
type Result struct {
	Tiles   Bitmap
	Polygon []mapmodel.Vector2
}

// Compute casts bucketCount rays from eye in a full circle, each ray
// terminating at the first intact slice it would enter (destroyed slices
// are space: the ray continues through them), attenuated by smoke opacity
// accumulated along the way. Each ray's reach is then gated per-sector by
// the forward cone / peripheral disc / forward extension rules, and the
// tile grid is rasterized against the resulting per-angle range table by
// testing tile-center inclusion.
func Compute(model *mapmodel.Model, eye mapmodel.Vector2, aimDir mapmodel.Vector2, smoke []SmokeZone, cfg Config) Result {
	aimAngle := math.Atan2(float64(aimDir.Y), float64(aimDir.X))
	maxRange := maxF(cfg.ForwardConeRadius, maxF(cfg.PeripheralRadius, cfg.ExtensionRadius))

	var ranges [bucketCount]float32
	for b := 0; b < bucketCount; b++ {
		theta := float64(b*bucketDegrees) * math.Pi / 180

		blockDist := raymarch(model, eye, theta, maxRange, smoke)

		sectorRange := sectorMaxRange(theta, aimAngle, cfg)
		r := blockDist
		if sectorRange < r {
			r = sectorRange
		}
		ranges[b] = r
	}

	var res Result
	res.Polygon = make([]mapmodel.Vector2, 0, bucketCount)
	for b := 0; b < bucketCount; b++ {
		theta := float64(b*bucketDegrees) * math.Pi / 180
		r := ranges[b]
		res.Polygon = append(res.Polygon, mapmodel.Vector2{
			X: eye.X + float32(math.Cos(theta))*r,
			Y: eye.Y + float32(math.Sin(theta))*r,
		})
	}

	rasterize(&res.Tiles, eye, ranges, maxRange)
	return res
}

// sectorMaxRange returns the maximum radius visible at absolute angle theta,
// the union of whichever of the three sectors (forward cone, forward
// extension, peripheral disc) cover that direction.
func sectorMaxRange(theta, aimAngle float64, cfg Config) float32 {
	delta := angleDiffDeg(theta, aimAngle)

	var best float32
	if math.Abs(delta) <= float64(cfg.ForwardConeHalfDeg) {
		best = maxF(best, cfg.ForwardConeRadius)
	}
	if math.Abs(delta) <= float64(cfg.ExtensionHalfDeg) {
		best = maxF(best, cfg.ExtensionRadius)
	}
	// Peripheral disc covers everything except a rear arc directly behind
	// the aim direction.
	behindDelta := angleDiffDeg(theta, aimAngle+math.Pi)
	if math.Abs(behindDelta) > float64(cfg.RearExclusionDeg) {
		best = maxF(best, cfg.PeripheralRadius)
	}
	return best
}

func angleDiffDeg(a, b float64) float64 {
	d := (a - b) * 180 / math.Pi
	for d > 180 {
		d -= 360
	}
	for d < -180 {
		d += 360
	}
	return d
}

// raymarch casts a ray from eye in direction theta up to maxRange, stopping
// at the first intact wall slice, passing through destroyed slices, and
// accumulating smoke opacity at 5px samples until it reaches 0.5 cumulative,
// at which point the ray is considered blocked at that sample.
func raymarch(model *mapmodel.Model, eye mapmodel.Vector2, theta float64, maxRange float32, smoke []SmokeZone) float32 {
	dirX := float32(math.Cos(theta))
	dirY := float32(math.Sin(theta))
	end := mapmodel.Vector2{X: eye.X + dirX*maxRange, Y: eye.Y + dirY*maxRange}

	blockDist := maxRange

	sweep := mapmodel.Rect{
		X: minF(eye.X, end.X), Y: minF(eye.Y, end.Y),
		W: absF(end.X-eye.X) + 1, H: absF(end.Y-eye.Y) + 1,
	}
	for _, w := range model.WallsOverlapping(sweep) {
		for i := 0; i < mapmodel.SliceCount; i++ {
			if w.SliceHealth[i] <= 0 {
				continue // destroyed slices are space
			}
			sr := w.SliceRect(i)
			t, hit := segmentVsRect(eye.X, eye.Y, end.X, end.Y, sr)
			if !hit {
				continue
			}
			d := t * maxRange
			if d < blockDist {
				blockDist = d
			}
		}
	}

	if len(smoke) > 0 {
		smokeDist := marchSmoke(eye, dirX, dirY, blockDist, smoke)
		if smokeDist < blockDist {
			blockDist = smokeDist
		}
	}

	return blockDist
}

const smokeSampleStep = 5

// marchSmoke walks 5px samples along a ray accumulating opacity at 0.3 times
// local smoke density per sample; once cumulative opacity reaches 0.5 the
// ray is blocked at that sample distance.
func marchSmoke(eye mapmodel.Vector2, dirX, dirY float32, maxDist float32, zones []SmokeZone) float32 {
	var cumulative float32
	for d := float32(smokeSampleStep); d < maxDist; d += smokeSampleStep {
		px := eye.X + dirX*d
		py := eye.Y + dirY*d
		density := localSmokeDensity(px, py, zones)
		if density <= 0 {
			continue
		}
		cumulative += 0.3 * density
		if cumulative >= 0.5 {
			return d
		}
	}
	return maxDist
}

// localSmokeDensity returns the highest density among zones covering (x,y),
// density falling linearly from maxDensity at the zone center to
// 0.5*maxDensity at its edge.
func localSmokeDensity(x, y float32, zones []SmokeZone) float32 {
	var best float32
	for _, z := range zones {
		dx := x - z.Center.X
		dy := y - z.Center.Y
		d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
		if d > z.CurrentRadius || z.CurrentRadius <= 0 {
			continue
		}
		frac := d / z.CurrentRadius
		density := z.MaxDensity * (1 - 0.5*frac)
		if density > best {
			best = density
		}
	}
	return best
}

// rasterize marks every tile whose center lies within the visible-range
// table as visible, scanning only the bounding box of maxRange around eye.
func rasterize(tiles *Bitmap, eye mapmodel.Vector2, ranges [bucketCount]float32, maxRange float32) {
	minCol := int((eye.X - maxRange) / TileSize)
	maxCol := int((eye.X + maxRange) / TileSize)
	minRow := int((eye.Y - maxRange) / TileSize)
	maxRow := int((eye.Y + maxRange) / TileSize)

	if minCol < 0 {
		minCol = 0
	}
	if maxCol >= TileCols {
		maxCol = TileCols - 1
	}
	if minRow < 0 {
		minRow = 0
	}
	if maxRow >= TileRows {
		maxRow = TileRows - 1
	}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			cx := float32(col)*TileSize + TileSize/2
			cy := float32(row)*TileSize + TileSize/2
			dx := cx - eye.X
			dy := cy - eye.Y
			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			if d > maxRange {
				continue
			}
			theta := math.Atan2(float64(dy), float64(dx))
			bucket := bucketFor(theta)
			if d <= ranges[bucket] {
				tiles.Set(TileIndex(col, row))
			}
		}
	}
}

func bucketFor(theta float64) int {
	deg := theta * 180 / math.Pi
	for deg < 0 {
		deg += 360
	}
	b := int(deg/bucketDegrees) % bucketCount
	return b
}

func segmentVsRect(ax, ay, bx, by float32, rect mapmodel.Rect) (float32, bool) {
	dx := bx - ax
	dy := by - ay
	tMin, tMax := float32(0), float32(1)

	if dx == 0 {
		if ax < rect.X || ax > rect.X+rect.W {
			return 0, false
		}
	} else {
		t1, t2 := (rect.X-ax)/dx, (rect.X+rect.W-ax)/dx
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin, tMax = maxF(tMin, t1), minF(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	if dy == 0 {
		if ay < rect.Y || ay > rect.Y+rect.H {
			return 0, false
		}
	} else {
		t1, t2 := (rect.Y-ay)/dy, (rect.Y+rect.H-ay)/dy
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin, tMax = maxF(tMin, t1), minF(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	if tMin < 0 || tMin > 1 {
		return 0, false
	}
	return tMin, true
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
