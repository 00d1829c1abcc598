package mapmodel

import "math"

// TileGrid is a uniform grid keyed by fixed-size tiles mapping each tile to
// the wall ids whose rectangle overlaps it. Unlike a single-cell-per-entity
// index, a wall can (and usually does) span many tiles, so insertion walks
// every tile the wall's rect touches.
//
// This mirrors the teacher's spatial.SpatialGrid cache-friendly layout
// (row-major slice-of-slices keyed by cell, preallocated capacity) but keys
// cells by wall ids overlapping the cell's rectangle rather than a single
// entity position, since walls are extended geometry, not points.
type TileGrid struct {
	tileSize    float32
	invTileSize float32
	cols, rows  int
	cells       [][]uint32
	scratch     []uint32
}

// NewTileGrid builds a tile grid covering [0,width)x[0,height) at the given
// tile size (8px per the vision/physics contract).
func NewTileGrid(width, height, tileSize float32) *TileGrid {
	cols := int(math.Ceil(float64(width / tileSize)))
	rows := int(math.Ceil(float64(height / tileSize)))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	cells := make([][]uint32, cols*rows)
	return &TileGrid{
		tileSize:    tileSize,
		invTileSize: 1 / tileSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Dimensions returns the grid's column/row counts and tile size.
func (g *TileGrid) Dimensions() (cols, rows int, tileSize float32) {
	return g.cols, g.rows, g.tileSize
}

// Clear empties every cell while retaining backing capacity.
func (g *TileGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *TileGrid) colRow(x, y float32) (int, int) {
	col := int(x * g.invTileSize)
	row := int(y * g.invTileSize)
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// InsertRect adds id to every tile overlapped by rect.
func (g *TileGrid) InsertRect(id uint32, rect Rect) {
	minCol, minRow := g.colRow(rect.X, rect.Y)
	maxCol, maxRow := g.colRow(rect.X+rect.W, rect.Y+rect.H)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			g.cells[idx] = appendUnique(g.cells[idx], id)
		}
	}
}

func appendUnique(s []uint32, v uint32) []uint32 {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// QueryRect returns (a de-duplicated, reused scratch slice of) every id
// whose tiles overlap rect. The slice is invalidated by the next query.
func (g *TileGrid) QueryRect(rect Rect) []uint32 {
	g.scratch = g.scratch[:0]
	minCol, minRow := g.colRow(rect.X, rect.Y)
	maxCol, maxRow := g.colRow(rect.X+rect.W, rect.Y+rect.H)
	seen := make(map[uint32]struct{}, 8)
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			idx := row*g.cols + col
			for _, id := range g.cells[idx] {
				if _, ok := seen[id]; !ok {
					seen[id] = struct{}{}
					g.scratch = append(g.scratch, id)
				}
			}
		}
	}
	return g.scratch
}

// QueryTile returns the ids registered in the tile containing (x, y).
func (g *TileGrid) QueryTile(x, y float32) []uint32 {
	col, row := g.colRow(x, y)
	return g.cells[row*g.cols+col]
}

// TileIndex returns the flattened tile index containing (x, y), used by the
// vision system's packed-bitmap rasterization.
func (g *TileGrid) TileIndex(x, y float32) int {
	col, row := g.colRow(x, y)
	return row*g.cols + col
}
