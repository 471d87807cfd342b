// Package check computes kingdom skill modifiers and resolves d20 checks
// into the four degrees of success.
package check

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
	"github.com/cory-johannsen/kingdom/internal/game/structure"
)

// Breakdown itemises every term of a check modifier.
type Breakdown struct {
	Skill   kingdom.Skill   `json:"skill,omitempty"`
	Ability kingdom.Ability `json:"ability"`

	AbilityMod          int `json:"ability_mod"`
	ProfBonus           int `json:"prof_bonus"`
	LeaderBonus         int `json:"leader_bonus"`
	ItemBonus           int `json:"item_bonus"`
	CircumstanceBonus   int `json:"circumstance_bonus"`
	CircumstancePenalty int `json:"circumstance_penalty"`
	UnrestPenalty       int `json:"unrest_penalty"`
	Total               int `json:"total"`
}

// sum recomputes Total from the individual terms.
func (b *Breakdown) sum() {
	b.Total = b.AbilityMod + b.ProfBonus + b.LeaderBonus + b.ItemBonus +
		b.CircumstanceBonus - b.CircumstancePenalty - b.UnrestPenalty
}

// WithCircumstance returns a copy of b with an extra circumstance bonus
// (positive) or penalty (negative) folded in.
func (b Breakdown) WithCircumstance(n int) Breakdown {
	if n > 0 {
		b.CircumstanceBonus += n
	} else {
		b.CircumstancePenalty -= n
	}
	b.sum()
	return b
}

// AbilityMod returns floor((score-10)/2).
func AbilityMod(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// UnrestPenalty returns the status penalty unrest imposes on every check.
//
// Postcondition: non-decreasing in unrest; 0 only when unrest <= 0.
func UnrestPenalty(unrest int) int {
	switch {
	case unrest <= 0:
		return 0
	case unrest < 5:
		return 1
	case unrest < 10:
		return 2
	case unrest < 15:
		return 3
	default:
		return 4
	}
}

// Calculator computes modifiers and DCs against a catalog.
type Calculator struct {
	catalog    *ruleset.Catalog
	structures *structure.Resolver
	logger     *zap.Logger
}

// NewCalculator returns a Calculator.
//
// Precondition: every argument must be non-nil.
func NewCalculator(catalog *ruleset.Catalog, structures *structure.Resolver, logger *zap.Logger) *Calculator {
	if catalog == nil || structures == nil || logger == nil {
		panic("check.NewCalculator: precondition violated: catalog, structures and logger must be non-nil")
	}
	return &Calculator{catalog: catalog, structures: structures, logger: logger}
}

// Compute returns the modifier breakdown for a check using target, which
// names either a skill or an ability. activityID, when set, selects item
// bonuses granted to that activity.
//
// Postcondition: Returns an INVALID_INPUT failure when target names neither a skill nor an ability.
func (c *Calculator) Compute(k *kingdom.Kingdom, target, activityID string) (Breakdown, error) {
	var b Breakdown
	skill := kingdom.Skill(target)
	if ability, ok := c.catalog.Tables.AbilityFor(skill); ok {
		b.Skill = skill
		b.Ability = ability
		b.ProfBonus = c.catalog.Tables.ProficiencyBonus(k.Skills[skill], k.Level)
	} else if a := kingdom.Ability(target); a.Valid() {
		b.Ability = a
	} else {
		return Breakdown{}, failure.New(failure.InvalidInput, "%q is neither a skill nor an ability", target)
	}

	b.AbilityMod = AbilityMod(k.Abilities[b.Ability])
	b.LeaderBonus = c.LeaderBonus(k, b.Ability)
	b.ItemBonus = c.structures.ItemBonus(k, activityID, b.Skill)
	b.CircumstanceBonus = k.CircumstanceBonus
	b.CircumstancePenalty = k.CircumstancePenalty
	b.UnrestPenalty = UnrestPenalty(k.Unrest)
	b.sum()
	c.logger.Debug("modifier computed",
		zap.String("target", target),
		zap.String("activity", activityID),
		zap.Int("total", b.Total),
	)
	return b, nil
}

// LeaderBonus returns the bonus an invested leader grants to checks keyed
// to ability, or 0 when no invested leader holds a governing role.
func (c *Calculator) LeaderBonus(k *kingdom.Kingdom, ability kingdom.Ability) int {
	for _, role := range c.catalog.Tables.RolesFor(ability) {
		l, ok := k.Leader(role)
		if ok && l.Invested && !l.Vacant {
			return c.catalog.Tables.InvestedLeaderBonus(k.Level)
		}
	}
	return 0
}

// ItemBonus returns the item bonus built structures grant to activityID.
func (c *Calculator) ItemBonus(k *kingdom.Kingdom, activityID string) int {
	var skill kingdom.Skill
	if a, ok := c.catalog.Activity(activityID); ok {
		skill = a.Skill
	}
	return c.structures.ItemBonus(k, activityID, skill)
}

// ControlDC returns the kingdom's control DC: the level DC plus the size
// modifier, plus a penalty while the Ruler's seat is empty.
func (c *Calculator) ControlDC(k *kingdom.Kingdom) int {
	t := c.catalog.Tables
	dc := t.LevelDC(k.Level) + t.SizeFor(k.ClaimedHexCount()).ControlDCModifier
	if l, ok := k.Leader(kingdom.Ruler); !ok || l.Vacant {
		dc += t.RulerVacancyDC
	}
	return dc
}

// Result is the outcome of one check.
type Result struct {
	Roll     int            `json:"roll"`
	Modifier int            `json:"modifier"`
	Total    int            `json:"total"`
	DC       int            `json:"dc"`
	Degree   ruleset.Degree `json:"degree"`
	// Shifted is set when a natural 1 or 20 moved the degree.
	Shifted bool `json:"shifted"`
}

// String formats r for effect logs.
func (r Result) String() string {
	return fmt.Sprintf("rolled %d%+d = %d vs DC %d: %s", r.Roll, r.Modifier, r.Total, r.DC, r.Degree)
}

// DegreeFor returns the numeric degree of total against dc before any
// natural-roll adjustment.
func DegreeFor(total, dc int) ruleset.Degree {
	diff := total - dc
	switch {
	case diff >= 10:
		return ruleset.CriticalSuccess
	case diff >= 0:
		return ruleset.Success
	case diff >= -10:
		return ruleset.Failure
	default:
		return ruleset.CriticalFailure
	}
}

// Resolve resolves a check with a known d20 roll. It is pure, so a check is
// replayable from its recorded roll.
//
// Precondition: roll is in [1, 20].
func Resolve(b Breakdown, dc, roll int) Result {
	total := roll + b.Total
	numeric := DegreeFor(total, dc)
	degree := numeric
	switch roll {
	case 20:
		degree = numeric.Up()
	case 1:
		degree = numeric.Down()
	}
	return Result{
		Roll:     roll,
		Modifier: b.Total,
		Total:    total,
		DC:       dc,
		Degree:   degree,
		Shifted:  degree != numeric,
	}
}

// Roll draws a d20 from src and resolves the check.
func Roll(src dice.Source, b Breakdown, dc int) Result {
	return Resolve(b, dc, dice.D20(src))
}
