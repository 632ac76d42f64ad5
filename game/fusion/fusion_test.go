package fusion

import (
	"errors"
	"testing"
	"time"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T) *resource.Catalog {
	t.Helper()
	c, err := resource.LoadDefault()
	require.NoError(t, err)
	return c
}

// arena builds a snapshot owning one instance per given entry.
func arena(t *testing.T, c *resource.Catalog, specs ...model.PartnerInstance) *model.Snapshot {
	t.Helper()
	s := &model.Snapshot{Class: "mage", Inventory: map[string]int{}}
	for _, sp := range specs {
		var p model.PartnerInstance
		var err error
		s, p, err = Acquire(s, c, sp.PartnerID, now)
		require.NoError(t, err)
		i := s.PartnerIndex(p.ID)
		s.Partners[i].Stage = sp.Stage
		s.Partners[i].MergedCount = sp.MergedCount
		s.Partners[i].LifetimeMerged = sp.LifetimeMerged
	}
	return s
}

func ids(s *model.Snapshot) []string {
	out := make([]string, len(s.Partners))
	for i, p := range s.Partners {
		out[i] = p.ID
	}
	return out
}

// maxed returns a final-stage, fully limit-broken instance template.
func maxed(t *testing.T, c *resource.Catalog, partnerID string) model.PartnerInstance {
	def, ok := c.Partner(partnerID)
	require.True(t, ok)
	return model.PartnerInstance{PartnerID: partnerID, Stage: def.MaxStage(), MergedCount: c.LimitBreakMax(def.Rarity)}
}

// ---- Acquire ----

func TestAcquire_SequentialIDs(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c, model.PartnerInstance{PartnerID: "1"}, model.PartnerInstance{PartnerID: "2"})
	assert.Equal(t, []string{"p-1", "p-2"}, ids(s))
	assert.Equal(t, 2, s.NextPartnerSeq)

	_, _, err := Acquire(s, c, "404", now)
	assert.True(t, errors.Is(err, rule.ErrNotFound))
}

// ---- Generic ----

func TestGeneric_StageUp(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c,
		model.PartnerInstance{PartnerID: "1", MergedCount: 2, LifetimeMerged: 2},
		model.PartnerInstance{PartnerID: "2", LifetimeMerged: 1},
		model.PartnerInstance{PartnerID: "3"},
		model.PartnerInstance{PartnerID: "4"},
	)
	out, p, err := Generic(s, c, []string{"p-1", "p-2", "p-3"}, now)
	require.NoError(t, err)
	assert.Equal(t, "1", p.PartnerID)
	assert.Equal(t, 1, p.Stage)
	assert.Equal(t, 0, p.MergedCount)
	assert.Equal(t, 3, p.LifetimeMerged)
	assert.Equal(t, []string{"p-4", "p-5"}, ids(out))
	assert.Len(t, s.Partners, 4, "input untouched")
}

func TestGeneric_WrongCount(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c, model.PartnerInstance{PartnerID: "1"}, model.PartnerInstance{PartnerID: "2"})
	_, _, err := Generic(s, c, []string{"p-1", "p-2"}, now)
	assert.True(t, errors.Is(err, rule.ErrRecipeNotSatisfied))
}

func TestGeneric_MixedRarityOrStage(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c,
		model.PartnerInstance{PartnerID: "1"},
		model.PartnerInstance{PartnerID: "2"},
		model.PartnerInstance{PartnerID: "4"}, // R
		model.PartnerInstance{PartnerID: "3", Stage: 1},
	)
	_, _, err := Generic(s, c, []string{"p-1", "p-2", "p-3"}, now)
	assert.True(t, errors.Is(err, rule.ErrRecipeNotSatisfied))
	_, _, err = Generic(s, c, []string{"p-1", "p-2", "p-4"}, now)
	assert.True(t, errors.Is(err, rule.ErrRecipeNotSatisfied))
}

func TestGeneric_FinalStage(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c,
		model.PartnerInstance{PartnerID: "1", Stage: 2},
		model.PartnerInstance{PartnerID: "2", Stage: 2},
		model.PartnerInstance{PartnerID: "3", Stage: 2},
	)
	_, _, err := Generic(s, c, ids(s), now)
	assert.True(t, errors.Is(err, rule.ErrRecipeNotSatisfied))
}

func TestGeneric_ReplayConsumedFails(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c, model.PartnerInstance{PartnerID: "1"}, model.PartnerInstance{PartnerID: "2"}, model.PartnerInstance{PartnerID: "3"})
	in := []string{"p-1", "p-2", "p-3"}
	out, _, err := Generic(s, c, in, now)
	require.NoError(t, err)
	_, _, err = Generic(out, c, in, now)
	assert.True(t, errors.Is(err, rule.ErrIngredientNotOwned))
}

func TestGeneric_DuplicateID(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c, model.PartnerInstance{PartnerID: "1"}, model.PartnerInstance{PartnerID: "2"})
	_, _, err := Generic(s, c, []string{"p-1", "p-1", "p-2"}, now)
	assert.True(t, errors.Is(err, rule.ErrIngredientNotOwned))
}

// ---- Special ----

func titanArena(t *testing.T, c *resource.Catalog) *model.Snapshot {
	s := arena(t, c, maxed(t, c, "11"), maxed(t, c, "11"), maxed(t, c, "12"), maxed(t, c, "12"), model.PartnerInstance{PartnerID: "1"})
	s.Inventory["recipe_earth_titan"] = 1
	return s
}

func TestSpecial_Success(t *testing.T) {
	c := testCatalog(t)
	s := titanArena(t, c)
	out, p, err := Special(s, c, "earth_titan", []string{"p-1", "p-2", "p-3", "p-4"}, now)
	require.NoError(t, err)
	assert.Equal(t, "13", p.PartnerID)
	assert.Equal(t, 0, p.Stage)
	assert.Equal(t, []string{"p-5", "p-6"}, ids(out))
	assert.Equal(t, 1, out.Inventory["recipe_earth_titan"])
}

func TestSpecial_Failures(t *testing.T) {
	c := testCatalog(t)
	cases := []struct {
		name   string
		mutate func(s *model.Snapshot)
		ids    []string
		want   error
	}{
		{"missing ingredient", nil, []string{"p-1", "p-2", "p-3"}, rule.ErrRecipeNotSatisfied},
		{"extra ingredient", nil, []string{"p-1", "p-2", "p-3", "p-4", "p-5"}, rule.ErrRecipeNotSatisfied},
		{"under limit break", func(s *model.Snapshot) { s.Partners[2].MergedCount-- }, []string{"p-1", "p-2", "p-3", "p-4"}, rule.ErrRecipeNotSatisfied},
		{"under leveled", func(s *model.Snapshot) { s.Partners[0].Stage = 1 }, []string{"p-1", "p-2", "p-3", "p-4"}, rule.ErrRecipeNotSatisfied},
		{"no recipe book", func(s *model.Snapshot) { delete(s.Inventory, "recipe_earth_titan") }, []string{"p-1", "p-2", "p-3", "p-4"}, rule.ErrRecipeNotSatisfied},
		{"not owned", nil, []string{"p-1", "p-2", "p-3", "p-9"}, rule.ErrIngredientNotOwned},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := titanArena(t, c)
			if tc.mutate != nil {
				tc.mutate(s)
			}
			before := len(s.Partners)
			out, _, err := Special(s, c, "earth_titan", tc.ids, now)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Nil(t, out)
			assert.Len(t, s.Partners, before)
		})
	}
}

func TestSpecial_UnknownRecipe(t *testing.T) {
	c := testCatalog(t)
	_, _, err := Special(titanArena(t, c), c, "nope", nil, now)
	assert.True(t, errors.Is(err, rule.ErrNotFound))
}

// ---- LimitBreak ----

func TestLimitBreak(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c,
		model.PartnerInstance{PartnerID: "16", MergedCount: 1},
		model.PartnerInstance{PartnerID: "16"},
		model.PartnerInstance{PartnerID: "16"},
		model.PartnerInstance{PartnerID: "1"},
	)
	out, p, err := LimitBreak(s, c, "p-1", []string{"p-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, p.MergedCount)
	assert.Equal(t, 1, p.LifetimeMerged)
	assert.Equal(t, []string{"p-1", "p-3", "p-4"}, ids(out))

	// SSR caps at 3.
	_, _, err = LimitBreak(out, c, "p-1", []string{"p-3", "p-3"})
	assert.True(t, errors.Is(err, rule.ErrIngredientNotOwned))
	out2, _, err := LimitBreak(out, c, "p-1", []string{"p-3"})
	require.NoError(t, err)
	assert.Equal(t, 3, out2.Partners[0].MergedCount)

	_, _, err = LimitBreak(s, c, "p-1", []string{"p-4"})
	assert.True(t, errors.Is(err, rule.ErrRecipeNotSatisfied))

	_, _, err = LimitBreak(s, c, "p-1", []string{"p-2", "p-3", "p-1"})
	assert.True(t, errors.Is(err, rule.ErrIngredientNotOwned))
}

func TestLimitBreak_OverCap(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c,
		model.PartnerInstance{PartnerID: "16", MergedCount: 3},
		model.PartnerInstance{PartnerID: "16"},
	)
	_, _, err := LimitBreak(s, c, "p-1", []string{"p-2"})
	assert.True(t, errors.Is(err, rule.ErrRecipeNotSatisfied))
}

// ---- Dismantle ----

func TestDismantle(t *testing.T) {
	c := testCatalog(t)
	s := arena(t, c,
		model.PartnerInstance{PartnerID: "16"}, // SSR 10
		model.PartnerInstance{PartnerID: "8"},  // SR 5
		model.PartnerInstance{PartnerID: "4"},  // R 2
	)
	s.EggFragments = 4
	out, res, err := Dismantle(s, c, ids(s))
	require.NoError(t, err)
	assert.Equal(t, 17, res.Fragments)
	assert.Equal(t, 4, res.EggTickets)
	assert.Equal(t, 1, out.EggFragments)
	assert.Empty(t, out.Partners)
}

// ---- No partial consumption ----

func TestFusion_FailedAttemptsNeverConsume(t *testing.T) {
	c := testCatalog(t)
	s := titanArena(t, c)
	attempts := [][]string{
		{"p-1", "p-2", "p-5"},
		{"p-5", "p-1", "p-3"},
		{"p-1", "p-2", "p-3", "p-3"},
		{"p-1", "p-2", "p-3", "p-5"},
		{"p-9"},
	}
	for _, a := range attempts {
		out, _, err := Generic(s, c, a, now)
		if err != nil {
			assert.Nil(t, out)
		}
		out, _, err = Special(s, c, "earth_titan", a, now)
		require.Error(t, err)
		assert.Nil(t, out)
		assert.Len(t, s.Partners, 5)
	}
}
