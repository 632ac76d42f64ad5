package progression

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

func testCatalog(t *testing.T) *resource.Catalog {
	t.Helper()
	c, err := resource.LoadDefault()
	require.NoError(t, err)
	return c
}

func fresh() *model.Snapshot {
	return &model.Snapshot{Class: "warrior", Level: 1, Inventory: map[string]int{}}
}

func TestDay_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	at := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-01", Day(at, time.UTC))
	assert.Equal(t, "2026-03-02", Day(at, tokyo))
	assert.Equal(t, "2026-03-01", Day(at, nil))
}

func TestLevelFor(t *testing.T) {
	th := []int{0, 100, 200, 300}
	cases := map[int]int{0: 1, 99: 1, 100: 2, 150: 2, 299: 3, 300: 4, 10000: 4}
	for exp, want := range cases {
		assert.Equal(t, want, LevelFor(th, exp), "exp %d", exp)
	}
}

func TestGainExp_LevelAndHistory(t *testing.T) {
	c := testCatalog(t)
	s := fresh()
	out, g := GainExp(s, c, 120, 0, "2026-03-01")
	assert.Equal(t, 120, out.Exp)
	assert.Equal(t, 2, out.Level)
	assert.Equal(t, 1, g.LevelBefore)
	assert.Equal(t, 2, g.LevelAfter)
	assert.False(t, g.Evolved)
	assert.Equal(t, 0, s.Exp, "input untouched")

	out, _ = GainExp(out, c, 30, 0, "2026-03-01")
	out, _ = GainExp(out, c, 10, 0, "2026-03-02")
	assert.Equal(t, []model.HistoryRecord{{Date: "2026-03-01", Exp: 150}, {Date: "2026-03-02", Exp: 10}}, out.History)
}

func TestGainExp_BoostAndEvolution(t *testing.T) {
	c := testCatalog(t)
	s := fresh()
	s.Exp, s.Level = 390, 4
	out, g := GainExp(s, c, 15, 50, "2026-03-01")
	assert.Equal(t, 22, g.Amount) // 15 + floor(7.5)
	assert.Equal(t, 5, out.Level)
	assert.True(t, g.Evolved)
}

func TestGainExp_LevelNeverLowered(t *testing.T) {
	c := testCatalog(t)
	s := fresh()
	s.Level = 7
	out, _ := GainExp(s, c, 5, 0, "2026-03-01")
	assert.Equal(t, 7, out.Level)
}

func TestGainExp_CappedAtMaxLevel(t *testing.T) {
	c := testCatalog(t)
	out, _ := GainExp(fresh(), c, 99999, 0, "2026-03-01")
	assert.Equal(t, c.Progression.MaxLevel(), out.Level)
}

func TestNextStreak(t *testing.T) {
	cases := []struct {
		name        string
		streak      int
		last, today string
		want        int
		newDay      bool
	}{
		{"first", 0, "", "2026-03-01", 1, true},
		{"same day", 4, "2026-03-01", "2026-03-01", 4, false},
		{"next day", 4, "2026-03-01", "2026-03-02", 5, true},
		{"gap", 4, "2026-03-01", "2026-03-03", 1, true},
		{"month boundary", 2, "2026-02-28", "2026-03-01", 3, true},
		{"clock went back", 4, "2026-03-02", "2026-03-01", 4, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, newDay, err := NextStreak(tc.streak, tc.last, tc.today)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.newDay, newDay)
		})
	}
}

func TestRecordActivity_ResetAfterMissedDay(t *testing.T) {
	c := testCatalog(t)
	s, res, err := RecordActivity(fresh(), c, "2026-03-01", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Streak)

	// D+2 with nothing on D+1
	s, res, err = RecordActivity(s, c, "2026-03-03", 0)
	require.NoError(t, err)
	assert.True(t, res.NewDay)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 1, s.Streak)
}

func TestRecordActivity_LoginBonus(t *testing.T) {
	c := testCatalog(t)
	s := fresh()
	var res ActivityResult
	var err error
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var exps []int
	for i := 0; i < 7; i++ {
		s, res, err = RecordActivity(s, c, day.AddDate(0, 0, i).Format(DateLayout), 0)
		require.NoError(t, err)
		exps = append(exps, res.Exp.Amount)
	}
	assert.Equal(t, []int{10, 15, 20, 25, 30, 35, 40}, exps)
	assert.Equal(t, 7, s.Streak)
	assert.Equal(t, 2, s.GachaTickets) // days 3 and 6
	assert.Equal(t, 1, s.EggTickets)   // day 7

	again, res, err := RecordActivity(s, c, "2026-03-07", 0)
	require.NoError(t, err)
	assert.False(t, res.NewDay)
	assert.Equal(t, s.Exp, again.Exp)
}

func TestLoginExp_Capped(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, 50, LoginExp(c.Progression.LoginBonus, 9))
	assert.Equal(t, 50, LoginExp(c.Progression.LoginBonus, 30))
}

func TestCompleteLesson(t *testing.T) {
	c := testCatalog(t)
	s, res, err := CompleteLesson(fresh(), c, "lesson_1", "2026-03-01", 0)
	require.NoError(t, err)
	assert.Equal(t, 50, s.Exp)
	assert.Equal(t, 2, s.SP)
	assert.Equal(t, 1, s.GachaTickets)
	assert.False(t, res.AlreadyDone)

	again, res, err := CompleteLesson(s, c, "lesson_1", "2026-03-01", 0)
	require.NoError(t, err)
	assert.True(t, res.AlreadyDone)
	assert.Equal(t, 50, again.Exp)
	assert.Equal(t, 2, again.SP)

	_, _, err = CompleteLesson(s, c, "lesson_99", "2026-03-01", 0)
	assert.True(t, errors.Is(err, rule.ErrNotFound))
}

func TestClaimExpGoal(t *testing.T) {
	c := testCatalog(t)
	s, _ := GainExp(fresh(), c, 40, 0, "2026-03-01")
	_, _, err := ClaimExpGoal(s, c, "2026-03-01")
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))

	s, _ = GainExp(s, c, 10, 0, "2026-03-01")
	s, r, err := ClaimExpGoal(s, c, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, 5, r.SP)
	assert.Equal(t, 5, s.SP)
	assert.Equal(t, 1, s.GachaTickets)

	_, _, err = ClaimExpGoal(s, c, "2026-03-01")
	assert.True(t, errors.Is(err, rule.ErrAlreadyClaimed))

	// next day needs fresh EXP
	_, _, err = ClaimExpGoal(s, c, "2026-03-02")
	assert.True(t, errors.Is(err, rule.ErrPrerequisiteNotMet))
}

func TestCompleteDailyQuiz(t *testing.T) {
	c := testCatalog(t)
	s, r, err := CompleteDailyQuiz(fresh(), c, false, "2026-03-01", 50)
	require.NoError(t, err)
	assert.False(t, r.Correct)
	assert.Equal(t, 45, r.Exp.Amount) // 30 boosted by 50%
	assert.Equal(t, 1, r.Reward.GachaTickets)
	assert.Equal(t, 1, s.GachaTickets)
	assert.Equal(t, 45, s.ExpOn("2026-03-01"))

	before := s.Clone()
	_, _, err = CompleteDailyQuiz(s, c, true, "2026-03-01", 0)
	assert.True(t, errors.Is(err, rule.ErrAlreadyClaimed))
	assert.Equal(t, before, s)

	s, r, err = CompleteDailyQuiz(s, c, true, "2026-03-02", 0)
	require.NoError(t, err)
	assert.Equal(t, 100, r.Exp.Amount)
	assert.Equal(t, 145, s.Exp)
	assert.Equal(t, 2, s.GachaTickets)
}

func TestGainExp_SaturatesAtMax(t *testing.T) {
	c := testCatalog(t)
	s := fresh()
	s.Exp = MaxExp - 3
	out, g := GainExp(s, c, 1<<62, 100, "2026-03-01")
	assert.Equal(t, MaxExp, out.Exp)
	assert.Equal(t, 3, g.Amount)
	assert.Equal(t, 3, out.ExpOn("2026-03-01"))
	assert.Equal(t, MaxExp, Boosted(MaxExp, 100))
}

func TestHeatmap(t *testing.T) {
	history := []model.HistoryRecord{
		{Date: "2026-02-27", Exp: 500},
		{Date: "2026-02-28", Exp: 1},
		{Date: "2026-03-01", Exp: 49},
		{Date: "2026-03-02", Exp: 50},
		{Date: "2026-03-03", Exp: 100},
		{Date: "2026-03-05", Exp: 200},
	}
	cells, err := Heatmap(history, "2026-03-05", 6, []int{1, 50, 100, 200})
	require.NoError(t, err)
	require.Len(t, cells, 6)
	assert.Equal(t, "2026-02-28", cells[0].Date)
	tiers := make([]int, len(cells))
	for i, c := range cells {
		tiers[i] = c.Tier
	}
	assert.Equal(t, []int{1, 1, 2, 3, 0, 4}, tiers)

	_, err = Heatmap(history, "bad", 3, nil)
	assert.Error(t, err)
}

func TestAwardBadges(t *testing.T) {
	c := testCatalog(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := fresh()
	s.Streak = 7
	s.Level = 3
	s.CompletedLessons = []string{"lesson_1", "lesson_2", "lesson_3", "lesson_4", "lesson_5"}

	out, minted := AwardBadges(s, c, at, "2026-03-01", 0)
	ids := make([]string, len(minted))
	for i, b := range minted {
		ids[i] = b.ID
		assert.Equal(t, at, b.EarnedAt)
	}
	assert.ElementsMatch(t, []string{"first_step", "streak_3", "streak_7", "level_2", "level_3", "first_lesson", "all_lessons"}, ids)
	assert.Equal(t, 3, out.EggTickets) // streak_7 + all_lessons
	assert.Empty(t, s.Badges)

	// nothing new, nothing removed even if the predicate stops holding
	out.Streak = 1
	again, minted := AwardBadges(out, c, at.Add(time.Hour), "2026-03-01", 0)
	assert.Empty(t, minted)
	assert.Len(t, again.Badges, 7)
	assert.Equal(t, 3, again.EggTickets)
}

func TestSatisfied_MaxLevel(t *testing.T) {
	c := testCatalog(t)
	b := &resource.BadgeDef{ID: "m", Kind: resource.BadgeMaxLevel}
	s := fresh()
	assert.False(t, Satisfied(b, s, c))
	s.Level = c.Progression.MaxLevel()
	assert.True(t, Satisfied(b, s, c))
}
