package player

import (
	"errors"
	"testing"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectClass_RoundTrip(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{
		Class:           "merchant",
		Level:           4,
		Exp:             320,
		UnlockedSkills:  []string{"s_a"},
		EquippedSkills:  []string{"s_a"},
		Equipment:       model.Equipment{Accessory: "acc_n_1"},
		UnlockedClasses: []string{"merchant"},
	}

	out, sw, err := SelectClass(s, c, "warrior")
	require.NoError(t, err)
	assert.Equal(t, ClassSwitch{From: "merchant", To: "warrior", FirstTime: true}, sw)
	assert.Equal(t, 1, out.Level)
	assert.Zero(t, out.Exp)
	assert.Equal(t, []string{}, out.UnlockedSkills)
	assert.Equal(t, model.Equipment{}, out.Equipment)
	assert.Equal(t, "merchant", s.Class, "input untouched")

	back, sw, err := SelectClass(out, c, "merchant")
	require.NoError(t, err)
	assert.False(t, sw.FirstTime)
	assert.Equal(t, 4, back.Level)
	assert.Equal(t, 320, back.Exp)
	assert.Equal(t, []string{"s_a"}, back.EquippedSkills)
	assert.Equal(t, "acc_n_1", back.Equipment.Accessory)
	assert.Equal(t, model.ClassProgress{Level: 1, UnlockedSkills: []string{}, EquippedSkills: []string{}}, back.SavedProgress["warrior"])
	assert.Equal(t, []string{"merchant", "warrior"}, back.UnlockedClasses)
}

func TestSelectClass_LegacySnapshot(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{Class: "mage", Level: 2}
	out, sw, err := SelectClass(s, c, "mage")
	require.NoError(t, err)
	assert.Equal(t, ClassSwitch{From: "mage", To: "mage"}, sw)
	assert.Equal(t, []string{"mage"}, out.UnlockedClasses)
	assert.Equal(t, 2, out.Level)
}

func TestSelectClass_Unknown(t *testing.T) {
	_, _, err := SelectClass(&model.Snapshot{Class: "mage"}, testCatalog(t), "bard")
	assert.True(t, errors.Is(err, rule.ErrNotFound))
}
