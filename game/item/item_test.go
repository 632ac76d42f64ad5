package item

import (
	"errors"
	"testing"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *resource.Catalog {
	t.Helper()
	c, err := resource.LoadDefault()
	require.NoError(t, err)
	return c
}

func warrior(items ...string) *model.Snapshot {
	inv := map[string]int{}
	for _, id := range items {
		inv[id]++
	}
	return &model.Snapshot{PlayerID: "p1", Class: "warrior", Level: 1, Inventory: inv}
}

// ---- Equip ----

func TestEquip_Success(t *testing.T) {
	cat := testCatalog(t)
	s := warrior("arm_sr_1")
	out, err := Equip(s, cat, "arm_sr_1")
	require.NoError(t, err)
	assert.Equal(t, "arm_sr_1", out.Equipment.Armor)
	assert.Empty(t, s.Equipment.Armor, "input snapshot must not change")
}

func TestEquip_ReplacesSlot(t *testing.T) {
	cat := testCatalog(t)
	s := warrior("wpn_n_2", "wpn_r_2")
	s, err := Equip(s, cat, "wpn_n_2")
	require.NoError(t, err)
	s, err = Equip(s, cat, "wpn_r_2")
	require.NoError(t, err)
	assert.Equal(t, "wpn_r_2", s.Equipment.Weapon)
}

func TestEquip_WrongClass(t *testing.T) {
	cat := testCatalog(t)
	_, err := Equip(warrior("wpn_n_1"), cat, "wpn_n_1")
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))
}

func TestEquip_NotOwned(t *testing.T) {
	cat := testCatalog(t)
	_, err := Equip(warrior(), cat, "acc_n_1")
	assert.True(t, errors.Is(err, rule.ErrInsufficientResource))
}

func TestEquip_RecipeBook(t *testing.T) {
	cat := testCatalog(t)
	_, err := Equip(warrior("recipe_earth_titan"), cat, "recipe_earth_titan")
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))
}

func TestEquip_UnknownItem(t *testing.T) {
	cat := testCatalog(t)
	_, err := Equip(warrior(), cat, "nope")
	assert.True(t, errors.Is(err, rule.ErrNotFound))
}

func TestUnequip(t *testing.T) {
	s := warrior()
	s.Equipment.Accessory = "acc_n_1"
	out, err := Unequip(s, resource.ItemAccessory)
	require.NoError(t, err)
	assert.Empty(t, out.Equipment.Accessory)
	assert.Equal(t, "acc_n_1", s.Equipment.Accessory)

	_, err = Unequip(s, resource.ItemConsumable)
	assert.True(t, errors.Is(err, rule.ErrNotFound))
}

// ---- Modifiers ----

func TestEquipmentModifiers_Additive(t *testing.T) {
	cat := testCatalog(t)
	m, err := EquipmentModifiers(cat, model.Equipment{
		Weapon:    "wpn_sr_2", // QUICK_KILL 100
		Armor:     "arm_ssr_1", // SHIELD 5
		Accessory: "acc_sr_1", // TIME_SLOW 15
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, m.QuickKill)
	assert.Equal(t, 5, m.ShieldCharges)
	assert.Equal(t, 15.0, m.TimeSlow)
	assert.Zero(t, m.ExpBoost)
}

func TestEquipmentModifiers_RecomputedPerCall(t *testing.T) {
	cat := testCatalog(t)
	eq := model.Equipment{Accessory: "acc_n_1"}
	m1, err := EquipmentModifiers(cat, eq)
	require.NoError(t, err)
	eq.Weapon = "wpn_r_3"
	m2, err := EquipmentModifiers(cat, eq)
	require.NoError(t, err)
	assert.Equal(t, 1.0, m1.ExpBoost)
	assert.Equal(t, 11.0, m2.ExpBoost)
}

func TestEquipmentModifiers_UnknownItem(t *testing.T) {
	cat := testCatalog(t)
	_, err := EquipmentModifiers(cat, model.Equipment{Weapon: "ghost"})
	assert.Error(t, err)
}
