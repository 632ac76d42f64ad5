// Package integration drives the fully wired HTTP service end to end.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/learnquest/api/rest"
	"github.com/kasuganosora/learnquest/api/sse"
	"github.com/kasuganosora/learnquest/audit"
	"github.com/kasuganosora/learnquest/game/engine"
	"github.com/kasuganosora/learnquest/metrics"
	mw "github.com/kasuganosora/learnquest/middleware"
	"github.com/kasuganosora/learnquest/store"
	"github.com/kasuganosora/learnquest/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// TestServer wraps a real HTTP server with every subsystem wired together.
type TestServer struct {
	DB      *gorm.DB
	Engine  *engine.Engine
	Store   *store.Store
	Audit   *audit.Service
	Metrics *metrics.Metrics
	SSE     *sse.Handler
	Server  *httptest.Server
	URL     string // http://127.0.0.1:<port>
}

// NewTestServer creates a fully wired service for integration testing.
// It mirrors the dependency wiring in main.go.
func NewTestServer(t *testing.T, now time.Time) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// ---- Infrastructure ----
	db := testutil.SetupTestDB(t)
	c, pubsub := testutil.SetupTestCache(t)
	logger := zap.NewNop()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	auditSvc := audit.NewWithOptions(db, logger, audit.Options{FlushInterval: 20 * time.Millisecond})
	t.Cleanup(func() { auditSvc.Stop(context.Background()) })

	// ---- Engine ----
	m := metrics.New()
	eng := engine.New(testutil.Catalog(t),
		engine.Flags{StreakBonus: true, Heatmap: true, Badges: true}, time.UTC, logger, m)
	st := store.New(db, c, pubsub, time.Minute, logger)
	sseH := sse.NewHandler(pubsub, nil, logger)

	// ---- Router ----
	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger), m.Middleware())
	r.Use(mw.RateLimit(ctx, rate.Limit(1000), 2000, mw.ByIP))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")
	h := apirest.NewHandler(eng, st, auditSvc, m, logger)
	h.SetClock(func() time.Time { return now })
	h.Register(api, mw.RateLimit(ctx, rate.Limit(1000), 2000, mw.ByPlayer))
	api.GET("/players/:id/events", sseH.ServeEvents)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &TestServer{
		DB:      db,
		Engine:  eng,
		Store:   st,
		Audit:   auditSvc,
		Metrics: m,
		SSE:     sseH,
		Server:  srv,
		URL:     srv.URL,
	}
}

// Do sends a JSON request and decodes the JSON response into out (if not nil).
func (ts *TestServer) Do(t *testing.T, method, path string, body, out interface{}) int {
	t.Helper()
	var b []byte
	if body != nil {
		var err error
		b, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req, err := http.NewRequest(method, ts.URL+path, bytes.NewReader(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "%s %s", method, path)
	}
	return resp.StatusCode
}

// MustOK is Do that fails the test on any status but 200 or 201.
func (ts *TestServer) MustOK(t *testing.T, method, path string, body, out interface{}) {
	t.Helper()
	var raw json.RawMessage
	code := ts.Do(t, method, path, body, &raw)
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, code, "%s %s: %s", method, path, string(raw))
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), fmt.Sprintf("%s %s", method, path))
	}
}
