package skill

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

func mustSkill(t *testing.T, c *resource.Catalog, id string) *resource.SkillDef {
	t.Helper()
	sk, ok := c.Skill(id)
	require.True(t, ok, "skill %s", id)
	return sk
}

// ---- Unlock ----

func TestUnlock_ScenarioLevel5(t *testing.T) {
	sk := &resource.SkillDef{ID: "guard", Class: resource.ClassWarrior, Type: resource.SkillPassive,
		SPCost: 8, RequiredLevel: 5, Passive: &resource.PassiveEffect{Stat: resource.PassiveDef, Percent: 5}}
	s := &model.Snapshot{Class: "warrior", Level: 5, SP: 10}

	require.True(t, CanUnlock(sk, s))
	out, err := Unlock(sk, s)
	require.NoError(t, err)
	assert.Equal(t, 2, out.SP)
	assert.Contains(t, out.UnlockedSkills, "guard")
	assert.Equal(t, 10, s.SP, "input untouched")

	again, err := Unlock(sk, out)
	require.NoError(t, err)
	assert.Equal(t, 2, again.SP)
	assert.Len(t, again.UnlockedSkills, 1)
}

func TestUnlock_LevelTooLow(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{Class: "mage", Level: 1, SP: 50}
	_, err := Unlock(mustSkill(t, c, "m_fire"), s)
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))
}

func TestUnlock_NotEnoughSP(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{Class: "mage", Level: 2, SP: 4}
	_, err := Unlock(mustSkill(t, c, "m_fire"), s)
	assert.True(t, errors.Is(err, rule.ErrInsufficientResource))
	assert.Equal(t, 4, s.SP)
}

func TestUnlock_WrongClass(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{Class: "merchant", Level: 10, SP: 50}
	assert.False(t, CanUnlock(mustSkill(t, c, "w_slash"), s))
	_, err := Unlock(mustSkill(t, c, "w_slash"), s)
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))
}

func TestUnlock_ParentRequired(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{Class: "warrior", Level: 10, SP: 100}
	_, err := Unlock(mustSkill(t, c, "w_cross"), s)
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))

	s, err = Unlock(mustSkill(t, c, "w_slash"), s)
	require.NoError(t, err)
	s, err = Unlock(mustSkill(t, c, "w_cross"), s)
	require.NoError(t, err)
	assert.Equal(t, []string{"w_slash", "w_cross"}, s.UnlockedSkills)
	assert.Equal(t, 80, s.SP)
}

func permutations(ids []string) [][]string {
	if len(ids) <= 1 {
		return [][]string{append([]string(nil), ids...)}
	}
	var out [][]string
	for i := range ids {
		rest := make([]string, 0, len(ids)-1)
		rest = append(rest, ids[:i]...)
		rest = append(rest, ids[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{ids[i]}, p...))
		}
	}
	return out
}

func TestUnlock_EveryOrderRespectsParents(t *testing.T) {
	c := testCatalog(t)
	for _, class := range []resource.ClassID{resource.ClassWarrior, resource.ClassMage, resource.ClassMerchant} {
		var ids []string
		for _, sk := range c.SkillsOf(class) {
			ids = append(ids, sk.ID)
		}
		for _, order := range permutations(ids) {
			s := &model.Snapshot{Class: string(class), Level: 10, SP: 1000}
			for i, id := range order {
				sk := mustSkill(t, c, id)
				parentFirst := sk.RequiredSkillID == "" || contains(order[:i], sk.RequiredSkillID)
				next, err := Unlock(sk, s)
				if parentFirst {
					require.NoError(t, err, "order %v", order)
					s = next
				} else {
					require.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet), "order %v", order)
				}
			}
			for _, id := range s.UnlockedSkills {
				if p := mustSkill(t, c, id).RequiredSkillID; p != "" {
					assert.True(t, s.HasSkill(p), "%s unlocked without %s", id, p)
				}
			}
		}
	}
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

// ---- Equip ----

func TestEquip_MaxSlots(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{Class: "warrior", UnlockedSkills: []string{"w_slash", "w_shield", "w_cross", "w_passive_atk"}}

	var err error
	for _, id := range []string{"w_slash", "w_shield"} {
		s, err = Equip(mustSkill(t, c, id), s, 2)
		require.NoError(t, err)
	}
	_, err = Equip(mustSkill(t, c, "w_cross"), s, 2)
	assert.True(t, errors.Is(err, rule.ErrInsufficientResource))

	_, err = Equip(mustSkill(t, c, "w_passive_atk"), s, 3)
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))

	s = Unequip("w_slash", s)
	assert.Equal(t, []string{"w_shield"}, s.EquippedSkills)
}

func TestEquip_NotUnlocked(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{Class: "mage"}
	_, err := Equip(mustSkill(t, c, "m_fire"), s, 3)
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))
}

// ---- Passives ----

func TestPassiveModifiers(t *testing.T) {
	c := testCatalog(t)
	s := &model.Snapshot{Class: "merchant", UnlockedSkills: []string{"me_coin", "me_passive_gold"}}
	m := PassiveModifiers(c, s)
	assert.Equal(t, 10.0, m[resource.PassiveTicketDrop])
	assert.Zero(t, m[resource.PassiveAtk])
}
