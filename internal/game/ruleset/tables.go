package ruleset

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
)

// ProficiencyStep is the bonus one proficiency tier contributes.
type ProficiencyStep struct {
	Bonus    int  `yaml:"bonus"`
	AddLevel bool `yaml:"add_level"`
}

// SizeTier is one row of the kingdom-size table.
type SizeTier struct {
	Name              string `yaml:"name"`
	MinHexes          int    `yaml:"min_hexes"`
	ControlDCModifier int    `yaml:"control_dc_modifier"`
	ResourceDie       int    `yaml:"resource_die"`
	Storage           int    `yaml:"storage"`
}

// LeaderBonusStep grants Bonus to invested leaders from MinLevel upward.
type LeaderBonusStep struct {
	MinLevel int `yaml:"min_level"`
	Bonus    int `yaml:"bonus"`
}

// TradeRates are degree-keyed price multipliers for one trade direction.
type TradeRates struct {
	CriticalSuccess float64 `yaml:"critical_success"`
	Success         float64 `yaml:"success"`
	Failure         float64 `yaml:"failure"`
	CriticalFailure float64 `yaml:"critical_failure"`
}

// For returns the multiplier for degree d.
func (r TradeRates) For(d Degree) float64 {
	switch d {
	case CriticalSuccess:
		return r.CriticalSuccess
	case Success:
		return r.Success
	case Failure:
		return r.Failure
	default:
		return r.CriticalFailure
	}
}

// ActivityLimits caps activities per turn.
type ActivityLimits struct {
	Leadership         int `yaml:"leadership"`
	Region             int `yaml:"region"`
	CivicPerSettlement int `yaml:"civic_per_settlement"`
}

// Tables is the numeric reference data of the ruleset.
type Tables struct {
	MaxLevel       int                                `yaml:"max_level"`
	Skills         map[kingdom.Skill]kingdom.Ability  `yaml:"skills"`
	LeaderRoles    map[kingdom.Ability][]kingdom.Role `yaml:"leader_roles"`
	Proficiency    map[string]ProficiencyStep         `yaml:"proficiency"`
	Sizes          []SizeTier                         `yaml:"sizes"`
	ControlDC      map[int]int                        `yaml:"control_dc"`
	XPToLevel      map[int]int                        `yaml:"xp_to_level"`
	TrainingCost   map[string]int                     `yaml:"training_cost"`
	LeaderBonus    []LeaderBonusStep                  `yaml:"leader_bonus"`
	Consumption    map[kingdom.Tier]int               `yaml:"consumption"`
	Taxation       map[kingdom.Tier]int               `yaml:"taxation"`
	CommodityValue map[kingdom.Commodity]int          `yaml:"commodity_value"`
	SellRates      TradeRates                         `yaml:"sell_rates"`
	BuyRates       TradeRates                         `yaml:"buy_rates"`
	Limits         ActivityLimits                     `yaml:"activity_limits"`

	BaseResourceDice    int `yaml:"base_resource_dice"`
	RuinThreshold       int `yaml:"ruin_threshold"`
	VacancyUnrest       int `yaml:"vacancy_unrest"`
	RulerVacancyDC      int `yaml:"ruler_vacancy_dc"`
	RuinAccrualUnrest   int `yaml:"ruin_accrual_unrest"`
	RPToXPCap           int `yaml:"rp_to_xp_cap"`
	MaxSettlementBlocks int `yaml:"max_settlement_blocks"`
}

// AbilityFor returns the governing ability of skill.
func (t *Tables) AbilityFor(skill kingdom.Skill) (kingdom.Ability, bool) {
	a, ok := t.Skills[skill]
	return a, ok
}

// SkillNames returns every skill in the table, sorted.
func (t *Tables) SkillNames() []kingdom.Skill {
	out := make([]kingdom.Skill, 0, len(t.Skills))
	for s := range t.Skills {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProficiencyBonus returns the bonus tier p contributes at kingdom level.
//
// Postcondition: Untrained always yields 0.
func (t *Tables) ProficiencyBonus(p kingdom.Proficiency, level int) int {
	if p == kingdom.Untrained {
		return 0
	}
	step, ok := t.Proficiency[p.String()]
	if !ok {
		return 0
	}
	if step.AddLevel {
		return step.Bonus + level
	}
	return step.Bonus
}

// SizeFor returns the size tier for a kingdom holding hexes claimed hexes.
//
// Precondition: Sizes is sorted by MinHexes ascending and non-empty.
func (t *Tables) SizeFor(hexes int) SizeTier {
	tier := t.Sizes[0]
	for _, s := range t.Sizes {
		if hexes >= s.MinHexes {
			tier = s
		}
	}
	return tier
}

// LevelDC returns the level-based control DC before size and vacancy adjustments.
func (t *Tables) LevelDC(level int) int {
	if dc, ok := t.ControlDC[level]; ok {
		return dc
	}
	best, bestLevel := 0, -1
	for l, dc := range t.ControlDC {
		if l <= level && l > bestLevel {
			best, bestLevel = dc, l
		}
	}
	return best
}

// XPThreshold returns the XP needed to advance from level to level+1.
//
// Postcondition: ok is false at or beyond MaxLevel.
func (t *Tables) XPThreshold(level int) (int, bool) {
	if level >= t.MaxLevel {
		return 0, false
	}
	xp, ok := t.XPToLevel[level]
	return xp, ok
}

// TrainingCostFor returns the RP cost of training a skill into tier target.
func (t *Tables) TrainingCostFor(target kingdom.Proficiency) (int, bool) {
	c, ok := t.TrainingCost[target.String()]
	return c, ok
}

// InvestedLeaderBonus returns the status bonus an invested leader grants at level.
func (t *Tables) InvestedLeaderBonus(level int) int {
	bonus := 0
	for _, step := range t.LeaderBonus {
		if level >= step.MinLevel && step.Bonus > bonus {
			bonus = step.Bonus
		}
	}
	return bonus
}

// GrantsFeat reports whether reaching level grants a feat choice: the
// founding level and every even level do.
func GrantsFeat(level int) bool {
	return level == 1 || level%2 == 0
}

// GrowthBlocks returns how many blocks a settlement currently spanning blocks
// may build into: one new block beyond its current extent, up to the cap.
func (t *Tables) GrowthBlocks(blocks int) int {
	if blocks+1 > t.MaxSettlementBlocks {
		return t.MaxSettlementBlocks
	}
	return blocks + 1
}

// RolesFor returns the leadership roles governing ability.
func (t *Tables) RolesFor(a kingdom.Ability) []kingdom.Role {
	return t.LeaderRoles[a]
}

// validate checks the tables for internal consistency.
func (t *Tables) validate() []string {
	var errs []string
	if t.MaxLevel < 2 {
		errs = append(errs, fmt.Sprintf("tables.max_level must be >= 2, got %d", t.MaxLevel))
	}
	if len(t.Skills) == 0 {
		errs = append(errs, "tables.skills must not be empty")
	}
	for s, a := range t.Skills {
		if !a.Valid() {
			errs = append(errs, fmt.Sprintf("tables.skills[%s]: unknown ability %q", s, a))
		}
	}
	for a := range t.LeaderRoles {
		if !a.Valid() {
			errs = append(errs, fmt.Sprintf("tables.leader_roles: unknown ability %q", a))
		}
	}
	for _, name := range []string{"trained", "expert", "master", "legendary"} {
		if _, ok := t.Proficiency[name]; !ok {
			errs = append(errs, fmt.Sprintf("tables.proficiency missing tier %q", name))
		}
		if _, ok := t.TrainingCost[name]; !ok {
			errs = append(errs, fmt.Sprintf("tables.training_cost missing tier %q", name))
		}
	}
	if len(t.Sizes) == 0 {
		errs = append(errs, "tables.sizes must not be empty")
	}
	for i, s := range t.Sizes {
		if i > 0 && s.MinHexes <= t.Sizes[i-1].MinHexes {
			errs = append(errs, "tables.sizes must be sorted by min_hexes ascending")
		}
		if s.ResourceDie < 2 {
			errs = append(errs, fmt.Sprintf("tables.sizes[%s].resource_die must be >= 2", s.Name))
		}
	}
	for l := 1; l < t.MaxLevel; l++ {
		if _, ok := t.XPToLevel[l]; !ok {
			errs = append(errs, fmt.Sprintf("tables.xp_to_level missing level %d", l))
		} else if l > 1 && t.XPToLevel[l] < t.XPToLevel[l-1] {
			errs = append(errs, fmt.Sprintf("tables.xp_to_level must not decrease at level %d", l))
		}
	}
	for l := 1; l <= t.MaxLevel; l++ {
		if _, ok := t.ControlDC[l]; !ok {
			errs = append(errs, fmt.Sprintf("tables.control_dc missing level %d", l))
		}
	}
	for _, c := range kingdom.Commodities {
		if t.CommodityValue[c] <= 0 {
			errs = append(errs, fmt.Sprintf("tables.commodity_value[%s] must be > 0", c))
		}
	}
	for _, tier := range []kingdom.Tier{kingdom.Village, kingdom.Town, kingdom.City, kingdom.Metropolis} {
		if _, ok := t.Consumption[tier]; !ok {
			errs = append(errs, fmt.Sprintf("tables.consumption missing tier %q", tier))
		}
	}
	if t.MaxSettlementBlocks < 1 {
		errs = append(errs, "tables.max_settlement_blocks must be >= 1")
	}
	return errs
}
