package progression

import (
	"time"

	"github.com/kasuganosora/learnquest/model"
)

// Cell is one day of the activity heatmap.
type Cell struct {
	Date string `json:"date"`
	Exp  int    `json:"exp"`
	Tier int    `json:"tier"`
}

// Tier buckets an EXP total: 0 below the first threshold, otherwise the
// number of thresholds reached.
func Tier(exp int, thresholds []int) int {
	t := 0
	for _, th := range thresholds {
		if exp >= th {
			t++
		}
	}
	return t
}

// Heatmap returns the trailing days ending on today, oldest first.
func Heatmap(history []model.HistoryRecord, today string, days int, thresholds []int) ([]Cell, error) {
	end, err := time.Parse(DateLayout, today)
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]int, len(history))
	for _, h := range history {
		byDate[h.Date] += h.Exp
	}
	cells := make([]Cell, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i).Format(DateLayout)
		exp := byDate[d]
		cells = append(cells, Cell{Date: d, Exp: exp, Tier: Tier(exp, thresholds)})
	}
	return cells, nil
}
