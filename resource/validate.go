package resource

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kasuganosora/learnquest/game/rule"
)

// rateEpsilon is the tolerance on a banner's rate sum.
const rateEpsilon = 0.01

var validate = validator.New()

// validate runs struct-tag checks and then the cross-reference checks. All
// problems are collected into a single configuration error.
func (c *Catalog) validate() error {
	var errs []string
	if err := validate.Struct(c); err != nil {
		errs = append(errs, formatValidationErrors(err)...)
	}
	errs = append(errs, c.checkUnique()...)
	errs = append(errs, c.checkClasses()...)
	errs = append(errs, c.checkItems()...)
	errs = append(errs, c.checkSkills()...)
	errs = append(errs, c.checkBanners()...)
	errs = append(errs, c.checkFusion()...)
	errs = append(errs, c.checkProgression()...)
	if len(errs) > 0 {
		return rule.Errorf(rule.ReasonConfiguration, "catalog validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func formatValidationErrors(err error) []string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ves))
	for _, fe := range ves {
		switch fe.Tag() {
		case "required":
			out = append(out, fmt.Sprintf("%s is required", fe.Namespace()))
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of [%s], got %v", fe.Namespace(), fe.Param(), fe.Value()))
		case "min", "max", "len":
			out = append(out, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return out
}

func (c *Catalog) checkUnique() []string {
	var errs []string
	dup := func(kind string, ids []string) {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				errs = append(errs, fmt.Sprintf("duplicate %s id %q", kind, id))
			}
			seen[id] = true
		}
	}
	ids := func(n int, f func(int) string) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = f(i)
		}
		return out
	}
	dup("class", ids(len(c.Classes), func(i int) string { return string(c.Classes[i].ID) }))
	dup("item", ids(len(c.Items), func(i int) string { return c.Items[i].ID }))
	dup("partner", ids(len(c.Partners), func(i int) string { return c.Partners[i].ID }))
	dup("skill", ids(len(c.Skills), func(i int) string { return c.Skills[i].ID }))
	dup("banner", ids(len(c.Banners), func(i int) string { return c.Banners[i].ID }))
	dup("recipe", ids(len(c.Fusion.Recipes), func(i int) string { return c.Fusion.Recipes[i].ID }))
	dup("badge", ids(len(c.Badges), func(i int) string { return c.Badges[i].ID }))
	dup("lesson", c.Lessons)
	return errs
}

func (c *Catalog) checkClasses() []string {
	var errs []string
	for _, cl := range c.Classes {
		if len(cl.Stages) == 0 {
			continue
		}
		if cl.Stages[0].Level != 1 {
			errs = append(errs, fmt.Sprintf("class %s: first stage must be level 1", cl.ID))
		}
		for i := 1; i < len(cl.Stages); i++ {
			if cl.Stages[i].Level <= cl.Stages[i-1].Level {
				errs = append(errs, fmt.Sprintf("class %s: stage levels must increase", cl.ID))
				break
			}
		}
	}
	return errs
}

func (c *Catalog) checkItems() []string {
	var errs []string
	for i := range c.Items {
		it := &c.Items[i]
		eff, err := DecodeEffect(it.EffectType, it.EffectValue, it.EffectTargetID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("item %s: %v", it.ID, err))
			continue
		}
		it.Effect = eff
		if u, ok := eff.(UnlockRecipe); ok {
			if _, ok := c.partners[u.PartnerID]; !ok {
				errs = append(errs, fmt.Sprintf("item %s: unlocks unknown partner %q", it.ID, u.PartnerID))
			}
		}
		for _, cl := range it.RequiredClass {
			if _, ok := c.classes[cl]; !ok {
				errs = append(errs, fmt.Sprintf("item %s: unknown class %q", it.ID, cl))
			}
		}
	}
	return errs
}

func (c *Catalog) checkSkills() []string {
	var errs []string
	for _, sk := range c.Skills {
		if _, ok := c.classes[sk.Class]; !ok {
			errs = append(errs, fmt.Sprintf("skill %s: unknown class %q", sk.ID, sk.Class))
		}
		switch sk.Type {
		case SkillActive:
			if sk.Battle == nil {
				errs = append(errs, fmt.Sprintf("skill %s: active skill without battle effect", sk.ID))
				break
			}
			errs = append(errs, checkBattleEffect(sk.ID, sk.Battle)...)
		case SkillPassive:
			if sk.Passive == nil {
				errs = append(errs, fmt.Sprintf("skill %s: passive skill without modifier", sk.ID))
			}
		}
		if sk.RequiredSkillID == "" {
			continue
		}
		parent, ok := c.skills[sk.RequiredSkillID]
		if !ok {
			errs = append(errs, fmt.Sprintf("skill %s: unknown prerequisite %q", sk.ID, sk.RequiredSkillID))
			continue
		}
		if parent.Class != sk.Class {
			errs = append(errs, fmt.Sprintf("skill %s: prerequisite %s belongs to class %s", sk.ID, parent.ID, parent.Class))
		}
	}
	errs = append(errs, c.checkSkillCycles()...)
	return errs
}

func checkBattleEffect(id string, b *BattleEffect) []string {
	var errs []string
	switch b.TargetType {
	case TargetMulti:
		if b.HitCount < 1 {
			errs = append(errs, fmt.Sprintf("skill %s: multi target needs hitCount >= 1", id))
		}
	case TargetDot:
		if b.DotInterval < 1 || b.DotDuration < b.DotInterval {
			errs = append(errs, fmt.Sprintf("skill %s: dot needs 0 < dotInterval <= dotDuration", id))
		}
	}
	return errs
}

// checkSkillCycles walks every parent chain. A chain longer than the skill
// count must revisit a node.
func (c *Catalog) checkSkillCycles() []string {
	var errs []string
	for _, sk := range c.Skills {
		seen := map[string]bool{sk.ID: true}
		cur := sk.RequiredSkillID
		for cur != "" {
			if seen[cur] {
				errs = append(errs, fmt.Sprintf("skill %s: prerequisite cycle through %s", sk.ID, cur))
				break
			}
			seen[cur] = true
			parent, ok := c.skills[cur]
			if !ok {
				break
			}
			cur = parent.RequiredSkillID
		}
	}
	return errs
}

func (c *Catalog) checkBanners() []string {
	var errs []string
	for _, b := range c.Banners {
		pool := c.Pool(b.Pool)
		sum := 0.0
		rates := make(map[Rarity]bool, len(b.Rates))
		for _, r := range b.Rates {
			sum += r.Percent
			if rates[r.Rarity] {
				errs = append(errs, fmt.Sprintf("banner %s: rarity %s listed twice", b.ID, r.Rarity))
			}
			rates[r.Rarity] = true
			if r.Percent > 0 && len(pool[r.Rarity]) == 0 {
				errs = append(errs, fmt.Sprintf("banner %s: no %s entries in %s pool", b.ID, r.Rarity, b.Pool))
			}
		}
		if math.Abs(sum-100) > rateEpsilon {
			errs = append(errs, fmt.Sprintf("banner %s: rates sum to %.4f, want 100", b.ID, sum))
		}
		for _, p := range b.Pity {
			if !rates[p.Rarity] || len(pool[p.Rarity]) == 0 {
				errs = append(errs, fmt.Sprintf("banner %s: pity rarity %s not drawable", b.ID, p.Rarity))
			}
		}
		if g := b.Guarantee; g != nil && len(pool[g.Rarity]) == 0 {
			errs = append(errs, fmt.Sprintf("banner %s: guarantee rarity %s not drawable", b.ID, g.Rarity))
		}
	}
	return errs
}

func (c *Catalog) checkFusion() []string {
	var errs []string
	for _, r := range Rarities {
		if c.Fusion.LimitBreakMax[r] < 0 {
			errs = append(errs, fmt.Sprintf("fusion: negative limit break max for %s", r))
		}
		if _, ok := c.Fusion.LimitBreakMax[r]; !ok {
			errs = append(errs, fmt.Sprintf("fusion: missing limit break max for %s", r))
		}
	}
	for _, rc := range c.Fusion.Recipes {
		if _, ok := c.partners[rc.Output]; !ok {
			errs = append(errs, fmt.Sprintf("recipe %s: unknown output partner %q", rc.ID, rc.Output))
		}
		for _, ing := range rc.Ingredients {
			if _, ok := c.partners[ing.PartnerID]; !ok {
				errs = append(errs, fmt.Sprintf("recipe %s: unknown ingredient partner %q", rc.ID, ing.PartnerID))
			}
		}
		if rc.BookItemID == "" {
			continue
		}
		book, ok := c.items[rc.BookItemID]
		if !ok {
			errs = append(errs, fmt.Sprintf("recipe %s: unknown recipe book %q", rc.ID, rc.BookItemID))
			continue
		}
		if book.EffectType != EffectUnlockRecipe || book.EffectTargetID != rc.Output {
			errs = append(errs, fmt.Sprintf("recipe %s: book %s does not unlock partner %s", rc.ID, book.ID, rc.Output))
		}
	}
	return errs
}

func (c *Catalog) checkProgression() []string {
	var errs []string
	p := c.Progression
	if len(p.LevelThresholds) > 0 && p.LevelThresholds[0] != 0 {
		errs = append(errs, "progression: first level threshold must be 0")
	}
	if !slices.IsSorted(p.LevelThresholds) {
		errs = append(errs, "progression: level thresholds must be non-decreasing")
	}
	for i, th := range p.HeatmapThresholds {
		if th <= 0 || (i > 0 && th <= p.HeatmapThresholds[i-1]) {
			errs = append(errs, "progression: heatmap thresholds must be positive and strictly increasing")
			break
		}
	}
	if q := p.DailyQuiz; q.MissExp > q.CorrectExp {
		errs = append(errs, "progression: daily quiz miss exp must not exceed correct exp")
	}
	for _, b := range c.Badges {
		if (b.Kind == BadgeStreak || b.Kind == BadgeLevel || b.Kind == BadgeLessons) && b.Threshold < 1 {
			errs = append(errs, fmt.Sprintf("badge %s: %s badge needs threshold >= 1", b.ID, b.Kind))
		}
	}
	return errs
}
