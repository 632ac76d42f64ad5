package rest

import (
	"encoding/binary"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kasuganosora/learnquest/audit"
	"github.com/kasuganosora/learnquest/game/rule"
	mw "github.com/kasuganosora/learnquest/middleware"
	"github.com/kasuganosora/learnquest/store"
	"go.uber.org/zap"
)

type createPlayerRequest struct {
	PlayerID string `json:"player_id" binding:"omitempty,max=36"`
	Class    string `json:"class"     binding:"required,oneof=warrior mage merchant"`
	// Seed pins the random stream; zero picks one.
	Seed uint64 `json:"seed"`
}

// Create handles POST /api/players.
func (h *Handler) Create(c *gin.Context) {
	start := time.Now()
	var req createPlayerRequest
	if !bind(c, &req) {
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = uuid.NewString()
	}
	if req.Seed == 0 {
		u := uuid.New()
		req.Seed = binary.BigEndian.Uint64(u[:8])
	}
	entry := audit.Entry{
		TraceID:  mw.GetTraceID(c),
		PlayerID: req.PlayerID,
		Action:   "player.create",
		Request:  req,
		IP:       c.ClientIP(),
	}
	defer func() {
		entry.Duration = time.Since(start)
		h.audit.Log(entry)
	}()

	change, err := h.eng.NewCharacter(req.PlayerID, req.Class, req.Seed, h.now())
	if err != nil {
		h.reject(c, &entry, err)
		return
	}
	if err := h.store.Create(c.Request.Context(), change.Snapshot); err != nil {
		if errors.Is(err, store.ErrExists) {
			entry.Reason = "exists"
			fail(c, http.StatusConflict, "exists", "player already exists")
			return
		}
		h.logger.Error("create snapshot", zap.String("player_id", req.PlayerID), zap.Error(err))
		entry.Reason, entry.Error = reasonInternal, err.Error()
		fail(c, http.StatusInternalServerError, reasonInternal, "internal error")
		return
	}
	entry.Version = change.Snapshot.Version
	entry.Response = change.Result
	c.Header("ETag", strconv.FormatInt(change.Snapshot.Version, 10))
	c.JSON(http.StatusCreated, change)
}

// Get handles GET /api/players/:id.
func (h *Handler) Get(c *gin.Context) {
	snap, _ := h.loadSnapshot(c)
	if snap == nil {
		return
	}
	c.Header("ETag", strconv.FormatInt(snap.Version, 10))
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// Stats handles GET /api/players/:id/stats.
func (h *Handler) Stats(c *gin.Context) {
	snap, _ := h.loadSnapshot(c)
	if snap == nil {
		return
	}
	st, err := h.eng.Stats(snap)
	if err != nil {
		h.query(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": st})
}

// Heatmap handles GET /api/players/:id/heatmap.
func (h *Handler) Heatmap(c *gin.Context) {
	snap, _ := h.loadSnapshot(c)
	if snap == nil {
		return
	}
	cells, err := h.eng.Heatmap(snap, h.now())
	if err != nil {
		h.query(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"heatmap": cells})
}

// CanUnlock handles GET /api/players/:id/skills/:skill.
func (h *Handler) CanUnlock(c *gin.Context) {
	snap, _ := h.loadSnapshot(c)
	if snap == nil {
		return
	}
	id := c.Param("skill")
	if _, ok := h.eng.Catalog().Skill(id); !ok {
		fail(c, http.StatusNotFound, string(rule.ReasonNotFound), "unknown skill")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"skill":      id,
		"unlocked":   snap.HasSkill(id),
		"can_unlock": h.eng.CanUnlock(snap, id),
	})
}

// History handles GET /api/players/:id/audit?limit=50.
func (h *Handler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.audit.Recent(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.logger.Error("audit history", zap.Error(err))
		fail(c, http.StatusInternalServerError, reasonInternal, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": logs})
}

// Catalog handles GET /api/catalog.
func (h *Handler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.eng.Catalog())
}

// Leaderboard handles GET /api/leaderboard?limit=20.
func (h *Handler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.store.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("leaderboard", zap.Error(err))
		fail(c, http.StatusInternalServerError, reasonInternal, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranking": entries})
}

// query answers a failed read-only engine call.
func (h *Handler) query(c *gin.Context, err error) {
	if reason := rule.ReasonOf(err); reason != "" {
		fail(c, statusOf(reason), string(reason), err.Error())
		return
	}
	h.logger.Error("query failed", zap.String("path", c.FullPath()), zap.Error(err))
	fail(c, http.StatusInternalServerError, reasonInternal, "internal error")
}
