package mapmodel

// DefaultField builds the symmetric two-team arena every lobby loads: a
// 480x270 field with a mix of concrete, wood, glass, and metal cover so
// every material's destruction/penetration rule gets exercised in a normal
// match, plus four spawn points per team spread across the back third of
// the field.
func DefaultField() MapDescriptor {
	return MapDescriptor{
		Width:  480,
		Height: 270,
		Walls: []WallDescriptor{
			// Center divider cover, concrete, stops everything until destroyed.
			{Rect: Rect{X: 220, Y: 60, W: 40, H: 60}, Material: MaterialConcrete, MaxSliceHealth: 120},
			{Rect: Rect{X: 220, Y: 150, W: 40, H: 60}, Material: MaterialConcrete, MaxSliceHealth: 120},

			// Wood crates flanking mid, cheap to break, soft-penetrate.
			{Rect: Rect{X: 140, Y: 40, W: 50, H: 10}, Material: MaterialWood, MaxSliceHealth: 60},
			{Rect: Rect{X: 290, Y: 220, W: 50, H: 10}, Material: MaterialWood, MaxSliceHealth: 60},

			// Glass partitions near each spawn lane, visually transparent to
			// vision rays but still a bullet-soft obstacle until shot out.
			{Rect: Rect{X: 90, Y: 100, W: 10, H: 70}, Material: MaterialGlass, MaxSliceHealth: 40},
			{Rect: Rect{X: 380, Y: 100, W: 10, H: 70}, Material: MaterialGlass, MaxSliceHealth: 40},

			// Metal containers at the flanks, hard cover like concrete but
			// cheaper to eventually clear with explosives.
			{Rect: Rect{X: 40, Y: 200, W: 60, H: 12}, Material: MaterialMetal, MaxSliceHealth: 100},
			{Rect: Rect{X: 380, Y: 58, W: 60, H: 12}, Material: MaterialMetal, MaxSliceHealth: 100},
		},
		Spawns: []SpawnPoint{
			{Team: TeamRed, Pos: Vector2{X: 30, Y: 60}},
			{Team: TeamRed, Pos: Vector2{X: 30, Y: 135}},
			{Team: TeamRed, Pos: Vector2{X: 30, Y: 210}},
			{Team: TeamRed, Pos: Vector2{X: 60, Y: 135}},
			{Team: TeamBlue, Pos: Vector2{X: 450, Y: 60}},
			{Team: TeamBlue, Pos: Vector2{X: 450, Y: 135}},
			{Team: TeamBlue, Pos: Vector2{X: 450, Y: 210}},
			{Team: TeamBlue, Pos: Vector2{X: 420, Y: 135}},
		},
	}
}
