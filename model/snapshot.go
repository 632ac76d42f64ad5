package model

import (
	"slices"
	"time"

	"github.com/kasuganosora/learnquest/game/rule"
)

// Equipment holds the item id worn in each slot; "" means empty.
type Equipment struct {
	Weapon    string `json:"weapon,omitempty"`
	Armor     string `json:"armor,omitempty"`
	Accessory string `json:"accessory,omitempty"`
}

// IDs returns the non-empty slots in weapon, armor, accessory order.
func (e Equipment) IDs() []string {
	out := make([]string, 0, 3)
	for _, id := range []string{e.Weapon, e.Armor, e.Accessory} {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

// PartnerInstance is one owned creature. ID is stable for the lifetime of
// the instance; only fusion changes Stage and MergedCount.
type PartnerInstance struct {
	ID             string    `json:"id"`
	PartnerID      string    `json:"partner_id"`
	Stage          int       `json:"stage"`
	MergedCount    int       `json:"merged_count"`
	LifetimeMerged int       `json:"lifetime_merged"`
	AcquiredAt     time.Time `json:"acquired_at"`
}

// HistoryRecord is the EXP gained on one calendar day (YYYY-MM-DD).
type HistoryRecord struct {
	Date string `json:"date"`
	Exp  int    `json:"exp"`
}

type EarnedBadge struct {
	ID       string    `json:"id"`
	EarnedAt time.Time `json:"earned_at"`
}

// ClassProgress is the parked state of a class that is not active. SP,
// tickets, inventory and partners belong to the player and are shared.
type ClassProgress struct {
	Level          int       `json:"level"`
	Exp            int       `json:"exp"`
	Equipment      Equipment `json:"equipment"`
	UnlockedSkills []string  `json:"unlocked_skills"`
	EquippedSkills []string  `json:"equipped_skills"`
}

// Snapshot is the complete persisted state of one player's character.
// Engines never modify a snapshot they receive; they return a new one.
type Snapshot struct {
	PlayerID string `json:"player_id"`
	Version  int64  `json:"version"`
	Class    string `json:"class"`

	UnlockedClasses []string                 `json:"unlocked_classes"`
	SavedProgress   map[string]ClassProgress `json:"saved_progress,omitempty"`

	Level int `json:"level"`
	Exp   int `json:"exp"`
	SP    int `json:"sp"`

	UnlockedSkills []string       `json:"unlocked_skills"`
	EquippedSkills []string       `json:"equipped_skills"`
	Equipment      Equipment      `json:"equipment"`
	Inventory      map[string]int `json:"inventory"`

	GachaTickets int            `json:"gacha_tickets"`
	EggTickets   int            `json:"egg_tickets"`
	EggFragments int            `json:"egg_fragments"`
	Pity         map[string]int `json:"pity"`
	RNG          rule.RNGState  `json:"rng"`

	Partners       []PartnerInstance `json:"partners"`
	NextPartnerSeq int               `json:"next_partner_seq"`

	CompletedLessons []string        `json:"completed_lessons"`
	Streak           int             `json:"streak"`
	LastActivityDate string          `json:"last_activity_date,omitempty"`
	LastExpGoalDate  string          `json:"last_exp_goal_date,omitempty"`
	LastQuizDate     string          `json:"last_quiz_date,omitempty"`
	History          []HistoryRecord `json:"history"`
	Badges           []EarnedBadge   `json:"badges"`

	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.UnlockedSkills = slices.Clone(s.UnlockedSkills)
	c.EquippedSkills = slices.Clone(s.EquippedSkills)
	c.Partners = slices.Clone(s.Partners)
	c.CompletedLessons = slices.Clone(s.CompletedLessons)
	c.History = slices.Clone(s.History)
	c.Badges = slices.Clone(s.Badges)
	c.Inventory = cloneCounts(s.Inventory)
	c.Pity = cloneCounts(s.Pity)
	c.UnlockedClasses = slices.Clone(s.UnlockedClasses)
	if s.SavedProgress != nil {
		c.SavedProgress = make(map[string]ClassProgress, len(s.SavedProgress))
		for k, p := range s.SavedProgress {
			p.UnlockedSkills = slices.Clone(p.UnlockedSkills)
			p.EquippedSkills = slices.Clone(p.EquippedSkills)
			c.SavedProgress[k] = p
		}
	}
	return &c
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Snapshot) HasSkill(id string) bool { return slices.Contains(s.UnlockedSkills, id) }

func (s *Snapshot) HasBadge(id string) bool {
	return slices.ContainsFunc(s.Badges, func(b EarnedBadge) bool { return b.ID == id })
}

func (s *Snapshot) LessonDone(id string) bool { return slices.Contains(s.CompletedLessons, id) }

// PartnerIndex returns the arena position of instance id, or -1.
func (s *Snapshot) PartnerIndex(id string) int {
	return slices.IndexFunc(s.Partners, func(p PartnerInstance) bool { return p.ID == id })
}

// ExpOn returns the EXP recorded for a date.
func (s *Snapshot) ExpOn(date string) int {
	for _, h := range s.History {
		if h.Date == date {
			return h.Exp
		}
	}
	return 0
}
