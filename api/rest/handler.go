// Package rest exposes engine intents over HTTP. Handlers carry no game
// rules: they load a snapshot, hand it to the engine and persist the result.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/learnquest/audit"
	"github.com/kasuganosora/learnquest/game/engine"
	"github.com/kasuganosora/learnquest/game/rule"
	mw "github.com/kasuganosora/learnquest/middleware"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/store"
	"go.uber.org/zap"
)

// SnapshotStore is the persistence the handlers need.
type SnapshotStore interface {
	Load(ctx context.Context, playerID string) (*model.Snapshot, error)
	Create(ctx context.Context, snap *model.Snapshot) error
	Save(ctx context.Context, snap *model.Snapshot, expected int64) error
	Leaderboard(ctx context.Context, limit int) ([]store.RankEntry, error)
}

// Auditor records every submitted intent.
type Auditor interface {
	Log(entry audit.Entry)
	Recent(ctx context.Context, playerID string, limit int) ([]model.AuditLog, error)
}

// ConflictCounter is told about every write lost to a concurrent writer.
type ConflictCounter interface {
	Conflict()
}

// Handler serves the player API.
type Handler struct {
	eng       *engine.Engine
	store     SnapshotStore
	audit     Auditor
	conflicts ConflictCounter
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates a Handler. conflicts may be nil.
func NewHandler(eng *engine.Engine, st SnapshotStore, a Auditor, conflicts ConflictCounter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{eng: eng, store: st, audit: a, conflicts: conflicts, logger: logger, now: time.Now}
}

// SetClock replaces the time source. Tests use it to pin calendar days.
func (h *Handler) SetClock(now func() time.Time) { h.now = now }

const (
	reasonInvalidRequest = string(rule.ReasonInvalidRequest)
	reasonStale          = "stale_snapshot"
	reasonInternal       = "internal"
)

// statusOf maps a rejection reason to an HTTP status.
func statusOf(reason rule.Reason) int {
	switch reason {
	case rule.ReasonNotFound:
		return http.StatusNotFound
	case rule.ReasonInvalidTarget, rule.ReasonInvalidRequest:
		return http.StatusBadRequest
	case rule.ReasonAlreadyClaimed:
		return http.StatusConflict
	case rule.ReasonConfiguration:
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}

func fail(c *gin.Context, status int, reason, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "reason": reason})
}

// loadSnapshot fetches the player's snapshot and honours If-Match. It writes
// the error response itself and returns a nil snapshot plus the reason when
// the request must stop.
func (h *Handler) loadSnapshot(c *gin.Context) (*model.Snapshot, string) {
	id := c.Param("id")
	snap, err := h.store.Load(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, string(rule.ReasonNotFound), "player not found")
		return nil, string(rule.ReasonNotFound)
	}
	if err != nil {
		h.logger.Error("load snapshot", zap.String("player_id", id), zap.Error(err))
		fail(c, http.StatusInternalServerError, reasonInternal, "internal error")
		return nil, reasonInternal
	}
	if v := c.GetHeader("If-Match"); v != "" {
		want, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			fail(c, http.StatusBadRequest, reasonInvalidRequest, "If-Match must be a snapshot version")
			return nil, reasonInvalidRequest
		}
		if want != snap.Version {
			fail(c, http.StatusPreconditionFailed, reasonStale, "snapshot version moved on")
			return nil, reasonStale
		}
	}
	return snap, ""
}

// mutate runs one state-changing intent: load, apply, save, audit.
func mutate[T any](h *Handler, c *gin.Context, action string, req interface{},
	apply func(s *model.Snapshot, now time.Time) (*engine.Change[T], error)) {
	start := time.Now()
	entry := audit.Entry{
		TraceID:  mw.GetTraceID(c),
		PlayerID: c.Param("id"),
		Action:   action,
		Request:  req,
		IP:       c.ClientIP(),
	}
	defer func() {
		entry.Duration = time.Since(start)
		h.audit.Log(entry)
	}()

	snap, reason := h.loadSnapshot(c)
	if snap == nil {
		entry.Reason = reason
		return
	}
	entry.Version = snap.Version

	change, err := apply(snap, h.now())
	if err != nil {
		h.reject(c, &entry, err)
		return
	}

	err = h.store.Save(c.Request.Context(), change.Snapshot, snap.Version)
	switch {
	case errors.Is(err, store.ErrStaleSnapshot):
		if h.conflicts != nil {
			h.conflicts.Conflict()
		}
		entry.Reason = reasonStale
		fail(c, http.StatusConflict, reasonStale, "snapshot changed concurrently, retry")
		return
	case err != nil:
		h.logger.Error("save snapshot", zap.String("player_id", snap.PlayerID), zap.Error(err))
		entry.Reason, entry.Error = reasonInternal, err.Error()
		fail(c, http.StatusInternalServerError, reasonInternal, "internal error")
		return
	}
	entry.Version = change.Snapshot.Version
	entry.Response = change.Result
	c.Header("ETag", strconv.FormatInt(change.Snapshot.Version, 10))
	c.JSON(http.StatusOK, change)
}

func (h *Handler) reject(c *gin.Context, entry *audit.Entry, err error) {
	reason := rule.ReasonOf(err)
	if reason == "" {
		h.logger.Error("intent failed", zap.String("action", entry.Action), zap.Error(err))
		entry.Reason, entry.Error = reasonInternal, err.Error()
		fail(c, http.StatusInternalServerError, reasonInternal, "internal error")
		return
	}
	entry.Reason, entry.Error = string(reason), err.Error()
	fail(c, statusOf(reason), string(reason), err.Error())
}

// bind decodes the JSON body into req, answering 400 on failure.
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		fail(c, http.StatusBadRequest, reasonInvalidRequest, err.Error())
		return false
	}
	return true
}
