package engine

import (
	"time"

	"github.com/kasuganosora/learnquest/game/progression"
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

// RecordActivity registers today's activity: the streak moves and a new day
// pays the login bonus. With the streak flag off nothing is evaluated.
func (e *Engine) RecordActivity(s *model.Snapshot, now time.Time) (*Change[progression.ActivityResult], error) {
	return run(e, "activity", s, now, func(cat *resource.Catalog) (*model.Snapshot, progression.ActivityResult, error) {
		if !e.flags.StreakBonus {
			return s.Clone(), progression.ActivityResult{Streak: s.Streak}, nil
		}
		boost, err := expBoost(cat, s)
		if err != nil {
			return nil, progression.ActivityResult{}, err
		}
		return progression.RecordActivity(s, cat, e.day(now), boost)
	})
}

// GainExp awards EXP earned outside lessons, such as quizzes.
func (e *Engine) GainExp(s *model.Snapshot, amount int, now time.Time) (*Change[progression.ExpGain], error) {
	return run(e, "gain_exp", s, now, func(cat *resource.Catalog) (*model.Snapshot, progression.ExpGain, error) {
		if amount <= 0 {
			return nil, progression.ExpGain{}, rule.Errorf(rule.ReasonInvalidRequest, "exp amount must be positive, got %d", amount)
		}
		boost, err := expBoost(cat, s)
		if err != nil {
			return nil, progression.ExpGain{}, err
		}
		out, g := progression.GainExp(s, cat, amount, boost, e.day(now))
		return out, g, nil
	})
}

func (e *Engine) CompleteLesson(s *model.Snapshot, lessonID string, now time.Time) (*Change[progression.LessonResult], error) {
	return run(e, "lesson", s, now, func(cat *resource.Catalog) (*model.Snapshot, progression.LessonResult, error) {
		boost, err := expBoost(cat, s)
		if err != nil {
			return nil, progression.LessonResult{}, err
		}
		return progression.CompleteLesson(s, cat, lessonID, e.day(now), boost)
	})
}

// CompleteDailyQuiz records today's quiz answer and pays its reward.
func (e *Engine) CompleteDailyQuiz(s *model.Snapshot, correct bool, now time.Time) (*Change[progression.QuizResult], error) {
	return run(e, "daily_quiz", s, now, func(cat *resource.Catalog) (*model.Snapshot, progression.QuizResult, error) {
		boost, err := expBoost(cat, s)
		if err != nil {
			return nil, progression.QuizResult{}, err
		}
		return progression.CompleteDailyQuiz(s, cat, correct, e.day(now), boost)
	})
}

func (e *Engine) ClaimExpGoal(s *model.Snapshot, now time.Time) (*Change[resource.Reward], error) {
	return run(e, "exp_goal", s, now, func(cat *resource.Catalog) (*model.Snapshot, resource.Reward, error) {
		return progression.ClaimExpGoal(s, cat, e.day(now))
	})
}

// Heatmap is the trailing activity calendar ending today.
func (e *Engine) Heatmap(s *model.Snapshot, now time.Time) ([]progression.Cell, error) {
	if !e.flags.Heatmap {
		return nil, rule.Errorf(rule.ReasonPrerequisiteNotMet, "learning heatmap is disabled")
	}
	p := e.Catalog().Progression
	return progression.Heatmap(s.History, e.day(now), p.HeatmapDays, p.HeatmapThresholds)
}
