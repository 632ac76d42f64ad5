package resource

import "slices"

// ---- Enumerations ----

// Rarity is an ordered rarity tier: N < R < SR < SSR.
type Rarity string

const (
	RarityN   Rarity = "N"
	RarityR   Rarity = "R"
	RaritySR  Rarity = "SR"
	RaritySSR Rarity = "SSR"
)

// Rarities lists every tier from lowest to highest.
var Rarities = []Rarity{RarityN, RarityR, RaritySR, RaritySSR}

// Rank returns the tier's position (N=0); -1 for unknown values.
func (r Rarity) Rank() int { return slices.Index(Rarities, r) }

// AtLeast reports whether r is the same tier as o or higher.
func (r Rarity) AtLeast(o Rarity) bool { return r.Rank() >= o.Rank() }

type ClassID string

const (
	ClassWarrior  ClassID = "warrior"
	ClassMage     ClassID = "mage"
	ClassMerchant ClassID = "merchant"
)

type ItemType string

const (
	ItemWeapon     ItemType = "weapon"
	ItemArmor      ItemType = "armor"
	ItemAccessory  ItemType = "accessory"
	ItemConsumable ItemType = "item"
)

type SkillType string

const (
	SkillActive  SkillType = "active"
	SkillPassive SkillType = "passive"
)

type TargetType string

const (
	TargetSingle TargetType = "single"
	TargetMulti  TargetType = "multi"
	TargetAll    TargetType = "all"
	TargetDot    TargetType = "dot"
	TargetSelf   TargetType = "self"
)

// PassiveStat is the quantity a passive skill modifies.
type PassiveStat string

const (
	PassiveHP         PassiveStat = "hp"
	PassiveMP         PassiveStat = "mp"
	PassiveAtk        PassiveStat = "atk"
	PassiveDef        PassiveStat = "def"
	PassiveExpBoost   PassiveStat = "exp_boost"
	PassiveTicketDrop PassiveStat = "ticket_drop"
	PassiveTimeSlow   PassiveStat = "time_slow"
)

type PoolKind string

const (
	PoolItem    PoolKind = "item"
	PoolPartner PoolKind = "partner"
)

type Currency string

const (
	CurrencyGachaTicket Currency = "gacha_ticket"
	CurrencyEggTicket   Currency = "egg_ticket"
)

type BadgeKind string

const (
	BadgeStreak     BadgeKind = "streak"
	BadgeLevel      BadgeKind = "level"
	BadgeMaxLevel   BadgeKind = "max_level"
	BadgeLessons    BadgeKind = "lessons"
	BadgeAllLessons BadgeKind = "all_lessons"
)

// ---- Definitions ----

// Stats is a stat block used by classes and partner stages.
type Stats struct {
	HP  int `json:"hp" validate:"min=0"`
	MP  int `json:"mp" validate:"min=0"`
	Atk int `json:"atk" validate:"min=0"`
	Def int `json:"def" validate:"min=0"`
	Spd int `json:"spd" validate:"min=0"`
}

type ClassStage struct {
	Level int    `json:"level" validate:"min=1"`
	Name  string `json:"name"`
	Stats Stats  `json:"stats"`
}

// ClassDef holds a class's stat curve. Stats between stage levels are
// interpolated linearly.
type ClassDef struct {
	ID            ClassID      `json:"id" validate:"required"`
	Name          string       `json:"name"`
	TimeSlowBonus float64      `json:"timeSlowBonus" validate:"min=0"`
	Stages        []ClassStage `json:"stages" validate:"required,min=1,dive"`
}

// ItemDef is an immutable catalog item. Effect is decoded from the raw
// effect fields at load time.
type ItemDef struct {
	ID             string     `json:"id" validate:"required"`
	Name           string     `json:"name"`
	Type           ItemType   `json:"type" validate:"oneof=weapon armor accessory item"`
	Rarity         Rarity     `json:"rarity" validate:"oneof=N R SR SSR"`
	Description    string     `json:"description,omitempty"`
	EffectType     EffectType `json:"effectType" validate:"required"`
	EffectValue    float64    `json:"effectValue" validate:"min=0"`
	EffectTargetID string     `json:"effectTargetId,omitempty"`
	RequiredClass  []ClassID  `json:"requiredClass,omitempty"`

	Effect Effect `json:"-"`
}

// Equippable reports whether the item occupies an equipment slot.
func (it *ItemDef) Equippable() bool { return it.Type != ItemConsumable }

// AllowsClass reports whether class c may equip the item.
func (it *ItemDef) AllowsClass(c ClassID) bool {
	return len(it.RequiredClass) == 0 || slices.Contains(it.RequiredClass, c)
}

type PartnerStage struct {
	Name  string `json:"name"`
	Stats Stats  `json:"stats"`
}

// PartnerDef is a creature template. Owned creatures are instances of it.
type PartnerDef struct {
	ID         string         `json:"id" validate:"required"`
	Name       string         `json:"name"`
	Rarity     Rarity         `json:"rarity" validate:"oneof=N R SR SSR"`
	FusionOnly bool           `json:"fusionOnly,omitempty"`
	Stages     []PartnerStage `json:"stages" validate:"required,min=1,dive"`
}

// MaxStage is the index of the final evolution stage.
func (p *PartnerDef) MaxStage() int { return len(p.Stages) - 1 }

type BattleEffect struct {
	MPCost            int        `json:"mpCost" validate:"min=0"`
	TargetType        TargetType `json:"targetType" validate:"oneof=single multi all dot self"`
	DamageMultiplier  float64    `json:"damageMultiplier" validate:"min=0"`
	HitCount          int        `json:"hitCount,omitempty" validate:"min=0"`
	DotDuration       int        `json:"dotDuration,omitempty" validate:"min=0"`
	DotInterval       int        `json:"dotInterval,omitempty" validate:"min=0"`
	DotTickMultiplier float64    `json:"dotTickMultiplier,omitempty" validate:"min=0"`
}

// TickMultiplier is the multiplier of each scheduled DOT repeat hit.
func (b *BattleEffect) TickMultiplier() float64 {
	if b.DotTickMultiplier > 0 {
		return b.DotTickMultiplier
	}
	return b.DamageMultiplier
}

type PassiveEffect struct {
	Stat    PassiveStat `json:"stat" validate:"oneof=hp mp atk def exp_boost ticket_drop time_slow"`
	Percent float64     `json:"percent"`
}

// SkillDef is one node of a class skill tree. RequiredSkillID is the single
// parent edge.
type SkillDef struct {
	ID              string         `json:"id" validate:"required"`
	Name            string         `json:"name"`
	Class           ClassID        `json:"class" validate:"required"`
	Type            SkillType      `json:"type" validate:"oneof=active passive"`
	SPCost          int            `json:"spCost" validate:"min=0"`
	RequiredLevel   int            `json:"requiredLevel" validate:"min=1"`
	RequiredSkillID string         `json:"requiredSkillId,omitempty"`
	Description     string         `json:"description,omitempty"`
	Battle          *BattleEffect  `json:"battle,omitempty"`
	Passive         *PassiveEffect `json:"passive,omitempty"`
}

type RateEntry struct {
	Rarity  Rarity  `json:"rarity" validate:"oneof=N R SR SSR"`
	Percent float64 `json:"percent" validate:"min=0,max=100"`
}

// PityRule forces at least Rarity on every Every-th draw of a banner.
type PityRule struct {
	Every  int    `json:"every" validate:"min=1"`
	Rarity Rarity `json:"rarity" validate:"oneof=N R SR SSR"`
}

// Guarantee upgrades the last draw of a multi-draw of at least Count draws
// when none reached Rarity.
type Guarantee struct {
	Count  int    `json:"count" validate:"min=2"`
	Rarity Rarity `json:"rarity" validate:"oneof=N R SR SSR"`
}

// BannerDef is a gacha configuration. Rates are in table order.
type BannerDef struct {
	ID        string      `json:"id" validate:"required"`
	Pool      PoolKind    `json:"pool" validate:"oneof=item partner"`
	Currency  Currency    `json:"currency" validate:"oneof=gacha_ticket egg_ticket"`
	Cost      int         `json:"cost" validate:"min=1"`
	Rates     []RateEntry `json:"rates" validate:"required,min=1,dive"`
	Pity      []PityRule  `json:"pity,omitempty" validate:"omitempty,dive"`
	Guarantee *Guarantee  `json:"guarantee,omitempty"`
}

type Ingredient struct {
	PartnerID string `json:"partnerId" validate:"required"`
	Count     int    `json:"count" validate:"min=1"`
}

// RecipeDef is a special fusion: an exact ingredient multiset producing one
// specific partner. BookItemID must be in the inventory.
type RecipeDef struct {
	ID          string       `json:"id" validate:"required"`
	Output      string       `json:"output" validate:"required"`
	BookItemID  string       `json:"bookItemId"`
	Ingredients []Ingredient `json:"ingredients" validate:"required,min=1,dive"`
}

// Size is the total number of ingredient instances.
func (r *RecipeDef) Size() int {
	n := 0
	for _, ing := range r.Ingredients {
		n += ing.Count
	}
	return n
}

type FusionDef struct {
	Requirement        int            `json:"requirement" validate:"min=2"`
	LimitBreakMax      map[Rarity]int `json:"limitBreakMax" validate:"required"`
	FragmentValue      map[Rarity]int `json:"fragmentValue"`
	FragmentsPerTicket int            `json:"fragmentsPerTicket" validate:"min=1"`
	Recipes            []RecipeDef    `json:"recipes" validate:"omitempty,dive"`
}

type LoginBonus struct {
	BaseExp          int `json:"baseExp" validate:"min=0"`
	ExpPerDay        int `json:"expPerDay" validate:"min=0"`
	MaxExp           int `json:"maxExp" validate:"min=0"`
	GachaTicketEvery int `json:"gachaTicketEvery" validate:"min=0"`
	EggTicketEvery   int `json:"eggTicketEvery" validate:"min=0"`
}

type Reward struct {
	Exp          int `json:"exp,omitempty" validate:"min=0"`
	SP           int `json:"sp,omitempty" validate:"min=0"`
	GachaTickets int `json:"gachaTickets,omitempty" validate:"min=0"`
	EggTickets   int `json:"eggTickets,omitempty" validate:"min=0"`
}

type ExpGoal struct {
	Target int `json:"target" validate:"min=1"`
	Reward
}

// DailyQuiz pays CorrectExp or MissExp plus Reward once per day.
type DailyQuiz struct {
	CorrectExp int    `json:"correctExp" validate:"min=0"`
	MissExp    int    `json:"missExp" validate:"min=0"`
	Reward     Reward `json:"reward"`
}

type ProgressionDef struct {
	LevelThresholds   []int      `json:"levelThresholds" validate:"required,min=1"`
	HeatmapThresholds []int      `json:"heatmapThresholds" validate:"len=4"`
	HeatmapDays       int        `json:"heatmapDays" validate:"min=1"`
	MaxEquippedSkills int        `json:"maxEquippedSkills" validate:"min=1"`
	LoginBonus        LoginBonus `json:"loginBonus"`
	Lesson            Reward     `json:"lesson"`
	ExpGoal           ExpGoal    `json:"expGoal"`
	DailyQuiz         DailyQuiz  `json:"dailyQuiz"`
	WelcomeGift       Reward     `json:"welcomeGift"`
}

// MaxLevel is the level reached at the last threshold.
func (p *ProgressionDef) MaxLevel() int { return len(p.LevelThresholds) }

type BadgeDef struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name"`
	Kind      BadgeKind `json:"kind" validate:"oneof=streak level max_level lessons all_lessons"`
	Threshold int       `json:"threshold,omitempty" validate:"min=0"`
	Reward    Reward    `json:"reward"`
}

// ---- Catalog ----

// Catalog is the validated, immutable catalog bundle.
type Catalog struct {
	Classes     []ClassDef     `json:"classes" validate:"required,min=1,dive"`
	Items       []ItemDef      `json:"items" validate:"required,min=1,dive"`
	Partners    []PartnerDef   `json:"partners" validate:"omitempty,dive"`
	Skills      []SkillDef     `json:"skills" validate:"omitempty,dive"`
	Banners     []BannerDef    `json:"banners" validate:"omitempty,dive"`
	Fusion      FusionDef      `json:"fusion"`
	Progression ProgressionDef `json:"progression"`
	Lessons     []string       `json:"lessons"`
	Badges      []BadgeDef     `json:"badges" validate:"omitempty,dive"`

	classes  map[ClassID]*ClassDef
	items    map[string]*ItemDef
	partners map[string]*PartnerDef
	skills   map[string]*SkillDef
	banners  map[string]*BannerDef
	recipes  map[string]*RecipeDef
}

func (c *Catalog) index() {
	c.classes = make(map[ClassID]*ClassDef, len(c.Classes))
	for i := range c.Classes {
		c.classes[c.Classes[i].ID] = &c.Classes[i]
	}
	c.items = make(map[string]*ItemDef, len(c.Items))
	for i := range c.Items {
		c.items[c.Items[i].ID] = &c.Items[i]
	}
	c.partners = make(map[string]*PartnerDef, len(c.Partners))
	for i := range c.Partners {
		c.partners[c.Partners[i].ID] = &c.Partners[i]
	}
	c.skills = make(map[string]*SkillDef, len(c.Skills))
	for i := range c.Skills {
		c.skills[c.Skills[i].ID] = &c.Skills[i]
	}
	c.banners = make(map[string]*BannerDef, len(c.Banners))
	for i := range c.Banners {
		c.banners[c.Banners[i].ID] = &c.Banners[i]
	}
	c.recipes = make(map[string]*RecipeDef, len(c.Fusion.Recipes))
	for i := range c.Fusion.Recipes {
		c.recipes[c.Fusion.Recipes[i].ID] = &c.Fusion.Recipes[i]
	}
}

func (c *Catalog) Class(id ClassID) (*ClassDef, bool) {
	v, ok := c.classes[id]
	return v, ok
}

func (c *Catalog) Item(id string) (*ItemDef, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c *Catalog) Partner(id string) (*PartnerDef, bool) {
	v, ok := c.partners[id]
	return v, ok
}

func (c *Catalog) Skill(id string) (*SkillDef, bool) {
	v, ok := c.skills[id]
	return v, ok
}

func (c *Catalog) Banner(id string) (*BannerDef, bool) {
	v, ok := c.banners[id]
	return v, ok
}

func (c *Catalog) Recipe(id string) (*RecipeDef, bool) {
	v, ok := c.recipes[id]
	return v, ok
}

// SkillsOf returns the skills owned by a class in catalog order.
func (c *Catalog) SkillsOf(class ClassID) []*SkillDef {
	var out []*SkillDef
	for i := range c.Skills {
		if c.Skills[i].Class == class {
			out = append(out, &c.Skills[i])
		}
	}
	return out
}

// LimitBreakMax returns the mergedCount cap for a rarity.
func (c *Catalog) LimitBreakMax(r Rarity) int { return c.Fusion.LimitBreakMax[r] }

func (c *Catalog) HasLesson(id string) bool { return slices.Contains(c.Lessons, id) }

// Pool returns the drawable entries of a banner, grouped by rarity in
// catalog order. Fusion-only partners are excluded.
func (c *Catalog) Pool(kind PoolKind) map[Rarity][]string {
	out := make(map[Rarity][]string)
	switch kind {
	case PoolItem:
		for _, it := range c.Items {
			out[it.Rarity] = append(out[it.Rarity], it.ID)
		}
	case PoolPartner:
		for _, p := range c.Partners {
			if p.FusionOnly {
				continue
			}
			out[p.Rarity] = append(out[p.Rarity], p.ID)
		}
	}
	return out
}
