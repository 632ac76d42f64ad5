package rest

import "github.com/gin-gonic/gin"

// Register mounts the player API under api. intentMW wraps only the
// state-changing routes (per-player rate limiting).
func (h *Handler) Register(api gin.IRouter, intentMW ...gin.HandlerFunc) {
	api.GET("/catalog", h.Catalog)
	api.GET("/leaderboard", h.Leaderboard)
	api.POST("/players", h.Create)

	p := api.Group("/players/:id")
	{
		p.GET("", h.Get)
		p.GET("/stats", h.Stats)
		p.GET("/heatmap", h.Heatmap)
		p.GET("/audit", h.History)
		p.GET("/skills/:skill", h.CanUnlock)
	}

	in := p.Group("", intentMW...)
	{
		in.POST("/gacha/draw", h.Draw)
		in.POST("/fusion", h.Fuse)
		in.POST("/fusion/limit-break", h.LimitBreak)
		in.POST("/fusion/dismantle", h.Dismantle)
		in.POST("/skills/unlock", h.UnlockSkill)
		in.POST("/skills/equip", h.EquipSkill)
		in.POST("/skills/unequip", h.UnequipSkill)
		in.POST("/items/equip", h.EquipItem)
		in.POST("/items/unequip", h.UnequipItem)
		in.POST("/battle", h.Battle)
		in.POST("/activity", h.RecordActivity)
		in.POST("/exp", h.GainExp)
		in.POST("/lessons/:lesson/complete", h.CompleteLesson)
		in.POST("/exp-goal/claim", h.ClaimExpGoal)
		in.POST("/daily-quiz", h.CompleteDailyQuiz)
		in.POST("/class", h.SelectClass)
	}
}
