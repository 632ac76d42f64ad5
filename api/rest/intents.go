package rest

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/learnquest/game/battle"
	"github.com/kasuganosora/learnquest/game/engine"
	"github.com/kasuganosora/learnquest/game/fusion"
	"github.com/kasuganosora/learnquest/game/item"
	"github.com/kasuganosora/learnquest/game/player"
	"github.com/kasuganosora/learnquest/game/progression"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
)

type drawRequest struct {
	Banner string `json:"banner" binding:"required"`
	Count  int    `json:"count"  binding:"required,min=1,max=100"`
}

// Draw handles POST /api/players/:id/gacha/draw.
func (h *Handler) Draw(c *gin.Context) {
	var req drawRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "gacha.draw", req, func(s *model.Snapshot, now time.Time) (*engine.Change[engine.DrawResult], error) {
		return h.eng.Draw(s, req.Banner, req.Count, now)
	})
}

type fuseRequest struct {
	Recipe   string   `json:"recipe"`
	Partners []string `json:"partners" binding:"required,min=1,dive,required"`
}

// Fuse handles POST /api/players/:id/fusion. With a recipe the special
// fusion is attempted, otherwise the generic stage-up.
func (h *Handler) Fuse(c *gin.Context) {
	var req fuseRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "fusion.fuse", req, func(s *model.Snapshot, now time.Time) (*engine.Change[model.PartnerInstance], error) {
		if req.Recipe != "" {
			return h.eng.FuseRecipe(s, req.Recipe, req.Partners, now)
		}
		return h.eng.Fuse(s, req.Partners, now)
	})
}

type limitBreakRequest struct {
	Base      string   `json:"base"      binding:"required"`
	Materials []string `json:"materials" binding:"required,min=1,dive,required"`
}

// LimitBreak handles POST /api/players/:id/fusion/limit-break.
func (h *Handler) LimitBreak(c *gin.Context) {
	var req limitBreakRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "fusion.limit_break", req, func(s *model.Snapshot, now time.Time) (*engine.Change[model.PartnerInstance], error) {
		return h.eng.LimitBreak(s, req.Base, req.Materials, now)
	})
}

type dismantleRequest struct {
	Partners []string `json:"partners" binding:"required,min=1,dive,required"`
}

// Dismantle handles POST /api/players/:id/fusion/dismantle.
func (h *Handler) Dismantle(c *gin.Context) {
	var req dismantleRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "fusion.dismantle", req, func(s *model.Snapshot, now time.Time) (*engine.Change[fusion.DismantleResult], error) {
		return h.eng.Dismantle(s, req.Partners, now)
	})
}

type skillRequest struct {
	Skill string `json:"skill" binding:"required"`
}

// UnlockSkill handles POST /api/players/:id/skills/unlock.
func (h *Handler) UnlockSkill(c *gin.Context) {
	var req skillRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "skill.unlock", req, func(s *model.Snapshot, now time.Time) (*engine.Change[engine.Empty], error) {
		return h.eng.UnlockSkill(s, req.Skill, now)
	})
}

// EquipSkill handles POST /api/players/:id/skills/equip.
func (h *Handler) EquipSkill(c *gin.Context) {
	var req skillRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "skill.equip", req, func(s *model.Snapshot, now time.Time) (*engine.Change[engine.Empty], error) {
		return h.eng.EquipSkill(s, req.Skill, now)
	})
}

// UnequipSkill handles POST /api/players/:id/skills/unequip.
func (h *Handler) UnequipSkill(c *gin.Context) {
	var req skillRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "skill.unequip", req, func(s *model.Snapshot, now time.Time) (*engine.Change[engine.Empty], error) {
		return h.eng.UnequipSkill(s, req.Skill, now)
	})
}

type equipItemRequest struct {
	Item string `json:"item" binding:"required"`
}

// EquipItem handles POST /api/players/:id/items/equip.
func (h *Handler) EquipItem(c *gin.Context) {
	var req equipItemRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "item.equip", req, func(s *model.Snapshot, now time.Time) (*engine.Change[item.Modifiers], error) {
		return h.eng.EquipItem(s, req.Item, now)
	})
}

type unequipItemRequest struct {
	Slot string `json:"slot" binding:"required,oneof=weapon armor accessory"`
}

// UnequipItem handles POST /api/players/:id/items/unequip.
func (h *Handler) UnequipItem(c *gin.Context) {
	var req unequipItemRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "item.unequip", req, func(s *model.Snapshot, now time.Time) (*engine.Change[item.Modifiers], error) {
		return h.eng.UnequipItem(s, resource.ItemType(req.Slot), now)
	})
}

type battleRequest struct {
	Enemies []enemyRequest `json:"enemies" binding:"required,min=1,max=20,dive"`
	Actions []battleAction `json:"actions" binding:"required,min=1,max=50,dive"`
}

type enemyRequest struct {
	ID     string `json:"id"     binding:"required,max=64"`
	HP     int    `json:"hp"     binding:"min=0,max=1000000"`
	MP     int    `json:"mp"     binding:"min=0,max=1000000"`
	Atk    int    `json:"atk"    binding:"min=0,max=1000000"`
	Shield int    `json:"shield" binding:"min=0,max=100"`
	Boss   bool   `json:"boss"`
	Exp    int    `json:"exp"    binding:"min=0,max=10000"`
}

func (r enemyRequest) combatant() battle.Combatant {
	return battle.Combatant{ID: r.ID, HP: r.HP, MP: r.MP, Atk: r.Atk, Shield: r.Shield, Boss: r.Boss, Exp: r.Exp}
}

type battleAction struct {
	Skill  string `json:"skill"  binding:"required"`
	Target string `json:"target"`
	Wait   int    `json:"wait"   binding:"min=0,max=3600"`
}

// Battle handles POST /api/players/:id/battle.
func (h *Handler) Battle(c *gin.Context) {
	var req battleRequest
	if !bind(c, &req) {
		return
	}
	var in engine.BattleRequest
	for _, en := range req.Enemies {
		in.Enemies = append(in.Enemies, en.combatant())
	}
	for _, a := range req.Actions {
		in.Actions = append(in.Actions, engine.BattleAction{SkillID: a.Skill, Target: a.Target, Wait: a.Wait})
	}
	mutate(h, c, "battle", req, func(s *model.Snapshot, now time.Time) (*engine.Change[engine.BattleReport], error) {
		return h.eng.Battle(s, in, now)
	})
}

// RecordActivity handles POST /api/players/:id/activity.
func (h *Handler) RecordActivity(c *gin.Context) {
	mutate(h, c, "progress.activity", nil, func(s *model.Snapshot, now time.Time) (*engine.Change[progression.ActivityResult], error) {
		return h.eng.RecordActivity(s, now)
	})
}

type expRequest struct {
	Amount int `json:"amount" binding:"required,min=1,max=10000"`
}

// GainExp handles POST /api/players/:id/exp.
func (h *Handler) GainExp(c *gin.Context) {
	var req expRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "progress.exp", req, func(s *model.Snapshot, now time.Time) (*engine.Change[progression.ExpGain], error) {
		return h.eng.GainExp(s, req.Amount, now)
	})
}

// CompleteLesson handles POST /api/players/:id/lessons/:lesson/complete.
func (h *Handler) CompleteLesson(c *gin.Context) {
	lesson := c.Param("lesson")
	mutate(h, c, "progress.lesson", gin.H{"lesson": lesson}, func(s *model.Snapshot, now time.Time) (*engine.Change[progression.LessonResult], error) {
		return h.eng.CompleteLesson(s, lesson, now)
	})
}

// ClaimExpGoal handles POST /api/players/:id/exp-goal/claim.
func (h *Handler) ClaimExpGoal(c *gin.Context) {
	mutate(h, c, "progress.exp_goal", nil, func(s *model.Snapshot, now time.Time) (*engine.Change[resource.Reward], error) {
		return h.eng.ClaimExpGoal(s, now)
	})
}

type quizRequest struct {
	Correct *bool `json:"correct" binding:"required"`
}

// CompleteDailyQuiz handles POST /api/players/:id/daily-quiz.
func (h *Handler) CompleteDailyQuiz(c *gin.Context) {
	var req quizRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "progress.daily_quiz", req, func(s *model.Snapshot, now time.Time) (*engine.Change[progression.QuizResult], error) {
		return h.eng.CompleteDailyQuiz(s, *req.Correct, now)
	})
}

type classRequest struct {
	Class string `json:"class" binding:"required,oneof=warrior mage merchant"`
}

// SelectClass handles POST /api/players/:id/class.
func (h *Handler) SelectClass(c *gin.Context) {
	var req classRequest
	if !bind(c, &req) {
		return
	}
	mutate(h, c, "player.select_class", req, func(s *model.Snapshot, now time.Time) (*engine.Change[player.ClassSwitch], error) {
		return h.eng.SelectClass(s, req.Class, now)
	})
}
