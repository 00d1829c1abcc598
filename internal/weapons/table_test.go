package weapons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetKnownWeapon(t *testing.T) {
	d, ok := Get("rifle")
	assert.True(t, ok)
	assert.Equal(t, "rifle", d.ID)
	assert.Equal(t, 25, d.Damage)
}

func TestGetUnknownWeapon(t *testing.T) {
	_, ok := Get("lightsaber")
	assert.False(t, ok)
}

func TestMinIntervalMsRateLimited(t *testing.T) {
	d, _ := Get("rifle")
	assert.InDelta(t, 100.0, d.MinIntervalMs(), 0.01)
}

func TestMinIntervalMsThrownWeaponIsZero(t *testing.T) {
	d, _ := Get("grenade")
	assert.Equal(t, 0.0, d.MinIntervalMs())
}

func TestAntiMaterialRifleHasExtendedPenetration(t *testing.T) {
	d, ok := Get("anti_material_rifle")
	assert.True(t, ok)
	assert.Equal(t, PenetrationExtended, d.Penetration)
	assert.Equal(t, 3, d.MaxPenetrationHits)
}

func TestShotgunFiresMultiplePellets(t *testing.T) {
	d, _ := Get("shotgun")
	assert.Equal(t, 8, d.PelletCount)
}

func TestEveryTableEntryHasAPositiveSlotCost(t *testing.T) {
	for id, d := range Table {
		assert.Greaterf(t, d.SlotCost, 0, "weapon %q must consume at least one loadout slot", id)
	}
}
