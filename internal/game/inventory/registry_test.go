package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/inventory"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := inventory.NewRegistry()
	w := &inventory.WeaponDef{ID: "dragon_dagger", Name: "Dragon Dagger", Type: inventory.WeaponDagger}
	require.NoError(t, r.RegisterWeapon(w))
	assert.Same(t, w, r.Weapon("dragon_dagger"))
	assert.Nil(t, r.Weapon("missing"))
}

func TestRegistry_DuplicateRejected(t *testing.T) {
	r := inventory.NewRegistry()
	w := &inventory.WeaponDef{ID: "a", Name: "A"}
	require.NoError(t, r.RegisterWeapon(w))
	assert.Error(t, r.RegisterWeapon(w))
}

func TestRegistry_AllWeapons_Sorted(t *testing.T) {
	r := inventory.NewRegistry()
	require.NoError(t, r.RegisterWeapon(&inventory.WeaponDef{ID: "b", Name: "B"}))
	require.NoError(t, r.RegisterWeapon(&inventory.WeaponDef{ID: "a", Name: "A"}))
	all := r.AllWeapons()
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}

func TestRegistry_Armor(t *testing.T) {
	r := inventory.NewRegistry()
	a := &inventory.ArmorDef{ID: "helm", Name: "Helm", Slot: inventory.SlotHead}
	require.NoError(t, r.RegisterArmor(a))
	assert.Same(t, a, r.Armor("helm"))
	assert.Nil(t, r.Armor("missing"))
	assert.Error(t, r.RegisterArmor(a))
	assert.Equal(t, 1, r.ArmorCount())
}
