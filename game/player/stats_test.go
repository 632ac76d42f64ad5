package player

import (
	"testing"

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

func TestClassStats_Interpolation(t *testing.T) {
	c := testCatalog(t)
	w, _ := c.Class(resource.ClassWarrior)

	assert.Equal(t, resource.Stats{HP: 10, MP: 30, Atk: 5, Def: 3, Spd: 2}, ClassStats(w, 1))
	// Level 3 is halfway between level 1 and level 5.
	assert.Equal(t, resource.Stats{HP: 20, MP: 40, Atk: 11, Def: 7, Spd: 3}, ClassStats(w, 3))
	assert.Equal(t, resource.Stats{HP: 30, MP: 50, Atk: 18, Def: 12, Spd: 5}, ClassStats(w, 5))
	assert.Equal(t, resource.Stats{HP: 60, MP: 80, Atk: 40, Def: 30, Spd: 10}, ClassStats(w, 12))
}

func TestStageOf(t *testing.T) {
	c := testCatalog(t)
	m, _ := c.Class(resource.ClassMage)
	assert.Equal(t, 0, StageOf(m, 1))
	assert.Equal(t, 0, StageOf(m, 4))
	assert.Equal(t, 1, StageOf(m, 5))
	assert.Equal(t, 2, StageOf(m, 10))
}

func TestCalcStats_PassivesAndEquipment(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{
		Class:          "warrior",
		Level:          5,
		UnlockedSkills: []string{"w_passive_atk"},
		Equipment:      model.Equipment{Weapon: "wpn_n_2", Armor: "arm_r_1"},
	}
	st, err := CalcStats(s, c)
	require.NoError(t, err)
	assert.Equal(t, 19, st.Atk) // floor(18 * 1.1)
	assert.Equal(t, 30, st.HP)
	assert.Equal(t, "Knight", st.StageName)
	assert.Equal(t, 1.0, st.Modifiers.TimeSlow)
	assert.Equal(t, 2, st.Modifiers.ShieldCharges)
}

func TestCalcStats_MageTimeSlowBonus(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{
		Class:     "mage",
		Level:     1,
		Equipment: model.Equipment{Accessory: "acc_ssr_1"},
	}
	st, err := CalcStats(s, c)
	require.NoError(t, err)
	assert.Equal(t, 60.0, st.Modifiers.TimeSlow)

	s.Equipment.Accessory = ""
	st, err = CalcStats(s, c)
	require.NoError(t, err)
	assert.Equal(t, 30.0, st.Modifiers.TimeSlow)
}

func TestCalcStats_MerchantTicketDrop(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{
		Class:          "merchant",
		Level:          4,
		UnlockedSkills: []string{"me_passive_gold"},
		Equipment:      model.Equipment{Weapon: "wpn_ssr_3", Accessory: "acc_r_2"},
	}
	st, err := CalcStats(s, c)
	require.NoError(t, err)
	assert.Equal(t, 65.0, st.Modifiers.TicketDrop)
}

func TestCalcStats_UnknownClass(t *testing.T) {
	c := testCatalog(t)
	_, err := CalcStats(&model.Snapshot{Class: "bard", Level: 1}, c)
	assert.Error(t, err)
}
