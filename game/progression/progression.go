package progression

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// DateLayout is the calendar-day key used by history, streaks and goals.
const DateLayout = "2006-01-02"

// Day returns the calendar day of t in loc.
func Day(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// DaysBetween counts calendar days from one day key to another. Both keys
// are parsed as UTC midnights so daylight saving never shifts the count.
func DaysBetween(from, to string) (int, error) {
	a, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, err
	}
	b, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, err
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// LevelFor maps EXP onto the threshold table: level i+1 is reached at
// thresholds[i].
func LevelFor(thresholds []int, exp int) int {
	n := sort.Search(len(thresholds), func(i int) bool { return thresholds[i] > exp })
	return max(n, 1)
}

// MaxExp bounds total EXP. Gains past it are clipped so EXP never wraps.
const MaxExp = math.MaxInt32

// Boosted applies an EXP_BOOST percentage to an EXP amount, floored.
func Boosted(amount int, percent float64) int {
	amount = min(amount, MaxExp)
	if percent <= 0 {
		return amount
	}
	return min(amount+int(math.Floor(float64(amount)*percent/100)), MaxExp)
}

// ExpGain describes one EXP award.
type ExpGain struct {
	Amount      int  `json:"amount"`
	LevelBefore int  `json:"level_before"`
	LevelAfter  int  `json:"level_after"`
	Evolved     bool `json:"evolved,omitempty"`
}

// GainExp awards amount EXP (boosted by percent) on day.
func GainExp(s *model.Snapshot, cat *resource.Catalog, amount int, percent float64, day string) (*model.Snapshot, ExpGain) {
	out := s.Clone()
	g := addExp(out, cat, Boosted(amount, percent), day)
	return out, g
}

// addExp mutates s. EXP only grows, saturating at MaxExp, and the level is
// never lowered.
func addExp(s *model.Snapshot, cat *resource.Catalog, amount int, day string) ExpGain {
	g := ExpGain{Amount: min(max(amount, 0), max(MaxExp-s.Exp, 0)), LevelBefore: s.Level}
	s.Exp += g.Amount
	record(s, day, g.Amount)
	s.Level = max(s.Level, min(LevelFor(cat.Progression.LevelThresholds, s.Exp), cat.Progression.MaxLevel()))
	g.LevelAfter = s.Level
	if class, ok := cat.Class(resource.ClassID(s.Class)); ok {
		for _, st := range class.Stages[1:] {
			if g.LevelBefore < st.Level && g.LevelAfter >= st.Level {
				g.Evolved = true
			}
		}
	}
	return g
}

func record(s *model.Snapshot, day string, exp int) {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].Date == day {
			s.History[i].Exp += exp
			return
		}
	}
	s.History = append(s.History, model.HistoryRecord{Date: day, Exp: exp})
}

// Grant applies a reward bundle. Its EXP part is boosted like any other gain.
func Grant(s *model.Snapshot, cat *resource.Catalog, r resource.Reward, percent float64, day string) (*model.Snapshot, ExpGain) {
	out := s.Clone()
	g := grant(out, cat, r, percent, day)
	return out, g
}

func grant(s *model.Snapshot, cat *resource.Catalog, r resource.Reward, percent float64, day string) ExpGain {
	g := ExpGain{LevelBefore: s.Level, LevelAfter: s.Level}
	if r.Exp > 0 {
		g = addExp(s, cat, Boosted(r.Exp, percent), day)
	}
	s.SP += r.SP
	s.GachaTickets += r.GachaTickets
	s.EggTickets += r.EggTickets
	return g
}

// NextStreak computes the streak after activity on today. Same day keeps the
// streak, the following day extends it and any gap resets it to 1. A date
// before the last activity is ignored.
func NextStreak(streak int, last, today string) (int, bool, error) {
	if last == "" {
		return 1, true, nil
	}
	d, err := DaysBetween(last, today)
	if err != nil {
		return streak, false, err
	}
	switch {
	case d <= 0:
		return streak, false, nil
	case d == 1:
		return streak + 1, true, nil
	default:
		return 1, true, nil
	}
}

// ActivityResult reports a recorded activity day.
type ActivityResult struct {
	NewDay       bool    `json:"new_day"`
	Streak       int     `json:"streak"`
	Exp          ExpGain `json:"exp"`
	GachaTickets int     `json:"gacha_tickets,omitempty"`
	EggTickets   int     `json:"egg_tickets,omitempty"`
}

// LoginExp is the bonus EXP for a given streak day.
func LoginExp(b resource.LoginBonus, streak int) int {
	return min(b.BaseExp+(streak-1)*b.ExpPerDay, b.MaxExp)
}

// RecordActivity updates the streak for today and, on a new day, pays the
// login bonus with its milestone tickets.
func RecordActivity(s *model.Snapshot, cat *resource.Catalog, today string, percent float64) (*model.Snapshot, ActivityResult, error) {
	streak, newDay, err := NextStreak(s.Streak, s.LastActivityDate, today)
	if err != nil {
		return nil, ActivityResult{}, fmt.Errorf("progression: activity date: %w", err)
	}
	out := s.Clone()
	res := ActivityResult{NewDay: newDay, Streak: out.Streak}
	if !newDay {
		return out, res, nil
	}
	out.Streak = streak
	out.LastActivityDate = today
	res.Streak = streak

	b := cat.Progression.LoginBonus
	reward := resource.Reward{Exp: LoginExp(b, streak)}
	if b.GachaTicketEvery > 0 && streak%b.GachaTicketEvery == 0 {
		reward.GachaTickets = 1
	}
	if b.EggTicketEvery > 0 && streak%b.EggTicketEvery == 0 {
		reward.EggTickets = 1
	}
	res.Exp = grant(out, cat, reward, percent, today)
	res.GachaTickets = reward.GachaTickets
	res.EggTickets = reward.EggTickets
	return out, res, nil
}

// LessonResult reports a lesson completion.
type LessonResult struct {
	LessonID    string          `json:"lesson_id"`
	AlreadyDone bool            `json:"already_done,omitempty"`
	Exp         ExpGain         `json:"exp"`
	Reward      resource.Reward `json:"reward"`
}

// CompleteLesson marks a catalog lesson done and pays the lesson reward.
// Completing a lesson twice is a no-op success.
func CompleteLesson(s *model.Snapshot, cat *resource.Catalog, lessonID, today string, percent float64) (*model.Snapshot, LessonResult, error) {
	if !cat.HasLesson(lessonID) {
		return nil, LessonResult{}, rule.Errorf(rule.ReasonNotFound, "unknown lesson %q", lessonID)
	}
	out := s.Clone()
	res := LessonResult{LessonID: lessonID}
	if s.LessonDone(lessonID) {
		res.AlreadyDone = true
		return out, res, nil
	}
	out.CompletedLessons = append(out.CompletedLessons, lessonID)
	res.Reward = cat.Progression.Lesson
	res.Exp = grant(out, cat, res.Reward, percent, today)
	return out, res, nil
}

type QuizResult struct {
	Correct bool            `json:"correct"`
	Exp     ExpGain         `json:"exp"`
	Reward  resource.Reward `json:"reward"`
}

// CompleteDailyQuiz pays the daily quiz once per day. A wrong answer still
// earns the smaller participation EXP and the same ticket reward.
func CompleteDailyQuiz(s *model.Snapshot, cat *resource.Catalog, correct bool, today string, percent float64) (*model.Snapshot, QuizResult, error) {
	if s.LastQuizDate == today {
		return nil, QuizResult{}, rule.Errorf(rule.ReasonAlreadyClaimed, "daily quiz already completed on %s", today)
	}
	q := cat.Progression.DailyQuiz
	res := QuizResult{Correct: correct, Reward: q.Reward}
	res.Reward.Exp = q.MissExp
	if correct {
		res.Reward.Exp = q.CorrectExp
	}
	out := s.Clone()
	out.LastQuizDate = today
	res.Exp = grant(out, cat, res.Reward, percent, today)
	return out, res, nil
}

// ClaimExpGoal pays the daily EXP goal reward once per day when today's
// EXP reached the target.
func ClaimExpGoal(s *model.Snapshot, cat *resource.Catalog, today string) (*model.Snapshot, resource.Reward, error) {
	goal := cat.Progression.ExpGoal
	if s.LastExpGoalDate == today {
		return nil, resource.Reward{}, rule.Errorf(rule.ReasonAlreadyClaimed, "exp goal already claimed on %s", today)
	}
	if got := s.ExpOn(today); got < goal.Target {
		return nil, resource.Reward{}, rule.Errorf(rule.ReasonPrerequisiteNotMet, "exp goal needs %d exp today, have %d", goal.Target, got)
	}
	out := s.Clone()
	out.LastExpGoalDate = today
	grant(out, cat, goal.Reward, 0, today)
	return out, goal.Reward, nil
}
