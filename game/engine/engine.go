package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kasuganosora/learnquest/game/player"
	"github.com/kasuganosora/learnquest/game/progression"
	"github.com/kasuganosora/learnquest/game/rule"
	"github.com/kasuganosora/learnquest/model"
	"github.com/kasuganosora/learnquest/resource"
	"go.uber.org/zap"
)

// Flags switches the optional progression subsystems. A disabled subsystem
// is skipped entirely; the snapshot fields it owns are left as they are.
type Flags struct {
	StreakBonus bool
	Heatmap     bool
	Badges      bool
}

// Observer is notified of every intent outcome. reason is "" on success.
type Observer interface {
	Intent(name string, reason rule.Reason)
	Draw(banner string, rarity resource.Rarity)
}

type nopObserver struct{}

func (nopObserver) Intent(string, rule.Reason)   {}
func (nopObserver) Draw(string, resource.Rarity) {}

// Change is an accepted intent: the new snapshot, the intent's own result
// and any badges minted along the way.
type Change[T any] struct {
	Snapshot *model.Snapshot     `json:"snapshot"`
	Result   T                   `json:"result"`
	Badges   []model.EarnedBadge `json:"badges,omitempty"`
}

// Engine applies player intents to snapshots. It holds no per-player state
// and is safe for concurrent use; the catalog can be swapped at any time.
type Engine struct {
	catalog atomic.Pointer[resource.Catalog]
	flags   Flags
	loc     *time.Location
	logger  *zap.Logger
	obs     Observer
}

// New creates an Engine. loc is the time zone that defines calendar days.
func New(cat *resource.Catalog, flags Flags, loc *time.Location, logger *zap.Logger, obs Observer) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if obs == nil {
		obs = nopObserver{}
	}
	e := &Engine{flags: flags, loc: loc, logger: logger, obs: obs}
	e.catalog.Store(cat)
	return e
}

func (e *Engine) Catalog() *resource.Catalog { return e.catalog.Load() }

// SetCatalog swaps the catalog used by subsequent intents.
func (e *Engine) SetCatalog(cat *resource.Catalog) {
	e.catalog.Store(cat)
	e.logger.Info("catalog swapped",
		zap.Int("items", len(cat.Items)),
		zap.Int("skills", len(cat.Skills)),
		zap.Int("partners", len(cat.Partners)))
}

func (e *Engine) Flags() Flags { return e.flags }

func (e *Engine) day(now time.Time) string { return progression.Day(now, e.loc) }

// run evaluates one intent against the current catalog. Rejections leave s
// untouched and return no snapshot; accepted changes get badges evaluated
// and the version bumped.
func run[T any](e *Engine, name string, s *model.Snapshot, now time.Time, fn func(cat *resource.Catalog) (*model.Snapshot, T, error)) (*Change[T], error) {
	cat := e.Catalog()
	out, res, err := fn(cat)
	if err != nil {
		e.obs.Intent(name, reasonOf(err))
		e.logger.Debug("intent rejected",
			zap.String("intent", name),
			zap.String("player", s.PlayerID),
			zap.Error(err))
		return nil, err
	}
	c := &Change[T]{Snapshot: out, Result: res}
	if e.flags.Badges {
		boost, err := expBoost(cat, out)
		if err != nil {
			e.obs.Intent(name, reasonOf(err))
			return nil, err
		}
		c.Snapshot, c.Badges = progression.AwardBadges(out, cat, now, e.day(now), boost)
	}
	c.Snapshot.Version = s.Version + 1
	e.obs.Intent(name, "")
	e.logger.Debug("intent applied",
		zap.String("intent", name),
		zap.String("player", s.PlayerID),
		zap.Int64("version", c.Snapshot.Version),
		zap.Int("badges", len(c.Badges)))
	return c, nil
}

// reasonOf labels non-rule failures as internal.
func reasonOf(err error) rule.Reason {
	if r := rule.ReasonOf(err); r != "" {
		return r
	}
	return "internal"
}

// expBoost is the EXP_BOOST percentage of the snapshot's current loadout.
func expBoost(cat *resource.Catalog, s *model.Snapshot) (float64, error) {
	st, err := player.CalcStats(s, cat)
	if err != nil {
		return 0, fmt.Errorf("engine: stats: %w", err)
	}
	return st.Modifiers.ExpBoost, nil
}
