package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/learnquest/cache"
	"github.com/kasuganosora/learnquest/store"
	"go.uber.org/zap"
)

// CatalogChannel carries catalog reload announcements to every stream.
const CatalogChannel = "catalog"

const keepalive = 30 * time.Second

// Handler streams player events over server-sent events.
type Handler struct {
	pubsub  cache.PubSub
	origins []string
	logger  *zap.Logger
}

// NewHandler creates a new SSE Handler. An empty origins list allows every
// origin.
func NewHandler(pubsub cache.PubSub, origins []string, logger *zap.Logger) *Handler {
	return &Handler{pubsub: pubsub, origins: origins, logger: logger}
}

func (h *Handler) allowed(origin string) bool {
	return origin == "" || len(h.origins) == 0 || slices.Contains(h.origins, origin)
}

// ServeEvents handles GET /api/players/:id/events.
// Every committed write of the player arrives as a "snapshot" event carrying
// the new version; catalog reloads arrive as "catalog" events.
func (h *Handler) ServeEvents(c *gin.Context) {
	origin := c.GetHeader("Origin")
	if !h.allowed(origin) {
		c.JSON(http.StatusForbidden, gin.H{"error": "origin not allowed", "reason": "forbidden"})
		return
	}
	playerID := c.Param("id")
	playerCh := store.EventsChannel(playerID)

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, playerCh, CatalogChannel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.String("player_id", playerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "reason": "internal"})
		return
	}
	defer unsub()

	// Set SSE headers.
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", origin)
	}

	// Send initial connected event.
	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"player_id\":%q}\n\n", playerID)
	c.Writer.Flush()

	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			name := "catalog"
			if msg.Channel == playerCh {
				name = eventName(msg.Payload)
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", name, msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

func eventName(payload string) string {
	var ev store.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil || ev.Type == "" {
		return "snapshot"
	}
	return ev.Type
}

// AnnounceCatalog tells every open stream that a new catalog is live.
func (h *Handler) AnnounceCatalog(ctx context.Context, info interface{}) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return h.pubsub.Publish(ctx, CatalogChannel, string(payload))
}
