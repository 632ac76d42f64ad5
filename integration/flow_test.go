package integration

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/kasuganosora/learnquest/game/engine"
	"github.com/kasuganosora/learnquest/game/fusion"
	"github.com/kasuganosora/learnquest/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type snapshotResp struct {
	Snapshot model.Snapshot      `json:"snapshot"`
	Badges   []model.EarnedBadge `json:"badges"`
}

func TestLearnerJourney(t *testing.T) {
	ts := NewTestServer(t, day1)

	// Open the event stream before anything happens to the player.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/players/p1/events", nil)
	require.NoError(t, err)
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	events := bufio.NewScanner(stream.Body)
	require.True(t, events.Scan())
	require.Equal(t, "event: connected", events.Text())

	ts.MustOK(t, http.MethodPost, "/api/players", map[string]interface{}{"player_id": "p1", "class": "warrior", "seed": 42}, nil)

	// ---- Lessons ----
	var s snapshotResp
	earned := map[string]bool{}
	for _, l := range []string{"lesson_1", "lesson_2", "lesson_3", "lesson_4", "lesson_5"} {
		ts.MustOK(t, http.MethodPost, "/api/players/p1/lessons/"+l+"/complete", nil, &s)
		for _, b := range s.Badges {
			earned[b.ID] = true
		}
	}
	assert.True(t, earned["first_lesson"])
	assert.True(t, earned["all_lessons"])
	assert.True(t, earned["level_3"])
	assert.Equal(t, 3, s.Snapshot.Level)
	assert.Equal(t, 250, s.Snapshot.Exp)
	assert.Equal(t, 10, s.Snapshot.SP)
	assert.Equal(t, 25, s.Snapshot.GachaTickets)
	assert.Equal(t, 22, s.Snapshot.EggTickets)

	// ---- Partner gacha ----
	var draw engine.Change[engine.DrawResult]
	ts.MustOK(t, http.MethodPost, "/api/players/p1/gacha/draw", map[string]interface{}{"banner": "partner", "count": 22}, &draw)
	require.Len(t, draw.Result.Partners, 22)
	assert.Zero(t, draw.Snapshot.EggTickets)
	assert.Equal(t, 22, draw.Snapshot.Pity["partner"])

	// Replaying the same intent on the same snapshot gives the same partners.
	replay, err := ts.Engine.Draw(&s.Snapshot, "partner", 22, day1)
	require.NoError(t, err)
	assert.Equal(t, draw.Result.Outcomes, replay.Result.Outcomes)

	// ---- Dismantle ----
	ids := []string{}
	for _, p := range draw.Result.Partners[:5] {
		ids = append(ids, p.ID)
	}
	var dis engine.Change[fusion.DismantleResult]
	ts.MustOK(t, http.MethodPost, "/api/players/p1/fusion/dismantle", map[string]interface{}{"partners": ids}, &dis)
	assert.GreaterOrEqual(t, dis.Result.Fragments, 5)
	assert.Equal(t, dis.Result.Fragments/5, dis.Result.EggTickets)
	assert.Len(t, dis.Snapshot.Partners, 17)

	// Dismantling the same instances again is rejected and changes nothing.
	var rej map[string]interface{}
	code := ts.Do(t, http.MethodPost, "/api/players/p1/fusion/dismantle", map[string]interface{}{"partners": ids}, &rej)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "ingredient_not_owned", rej["reason"])

	var now snapshotResp
	ts.MustOK(t, http.MethodGet, "/api/players/p1", nil, &now)
	assert.Equal(t, dis.Snapshot.Version, now.Snapshot.Version)

	// ---- Events ----
	snapshots := 0
	for snapshots < 3 && events.Scan() {
		if events.Text() == "event: snapshot" {
			snapshots++
		}
	}
	assert.Equal(t, 3, snapshots)

	// ---- Audit ----
	require.Eventually(t, func() bool {
		logs, err := ts.Audit.Recent(context.Background(), "p1", 50)
		return err == nil && len(logs) == 9
	}, 3*time.Second, 20*time.Millisecond, "create + 5 lessons + draw + 2 dismantles")
	logs, err := ts.Audit.Recent(context.Background(), "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, "fusion.dismantle", logs[0].Action)
	assert.Equal(t, "ingredient_not_owned", logs[0].Reason)

	// ---- Metrics ----
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	text := string(body)
	assert.True(t, strings.Contains(text, `learnquest_intents_total{intent="lesson",result="ok"} 5`), text)
	assert.True(t, strings.Contains(text, `learnquest_intents_total{intent="dismantle",result="ingredient_not_owned"} 1`))
}

func TestLeaderboardAcrossPlayers(t *testing.T) {
	ts := NewTestServer(t, day1)
	for i, id := range []string{"a", "b", "c"} {
		ts.MustOK(t, http.MethodPost, "/api/players", map[string]interface{}{"player_id": id, "class": "mage"}, nil)
		ts.MustOK(t, http.MethodPost, "/api/players/"+id+"/exp", map[string]interface{}{"amount": (i + 1) * 100}, nil)
	}

	var lb struct {
		Ranking []struct {
			PlayerID string `json:"player_id"`
			Level    int    `json:"level"`
		} `json:"ranking"`
	}
	ts.MustOK(t, http.MethodGet, "/api/leaderboard", nil, &lb)
	require.Len(t, lb.Ranking, 3)
	assert.Equal(t, "c", lb.Ranking[0].PlayerID)
	assert.Equal(t, 4, lb.Ranking[0].Level)
	assert.Equal(t, "a", lb.Ranking[2].PlayerID)
}
