// Package progression handles kingdom experience, levelling, feats,
// milestones and RP-funded skill training.
package progression

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/effect"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// AbilityIncrease is added to the chosen ability on every level-up.
const AbilityIncrease = 2

// Eligibility describes whether a kingdom may level up now.
type Eligibility struct {
	Eligible  bool `json:"eligible"`
	Level     int  `json:"level"`
	XP        int  `json:"xp"`
	Threshold int  `json:"threshold"`
	// FeatRequired reports whether the next level grants a feat choice.
	FeatRequired bool `json:"feat_required"`
}

// Choice carries the player's level-up selections. Feat is ignored on
// levels that do not grant one.
type Choice struct {
	Ability kingdom.Ability `json:"ability"`
	Skill   kingdom.Skill   `json:"skill"`
	Feat    string          `json:"feat,omitempty"`
}

// Outcome is the proposed result of a progression operation.
type Outcome struct {
	State *kingdom.Kingdom `json:"-"`
	Log   []string         `json:"log"`
	Delta kingdom.Delta    `json:"delta"`
}

// Engine evaluates progression rules against the ruleset.
type Engine struct {
	catalog *ruleset.Catalog
	book    *effect.Book
	applier *effect.Applier
	logger  *zap.Logger
}

// NewEngine returns a progression Engine.
//
// Precondition: every argument must be non-nil.
func NewEngine(catalog *ruleset.Catalog, book *effect.Book, applier *effect.Applier, logger *zap.Logger) *Engine {
	if catalog == nil || book == nil || applier == nil || logger == nil {
		panic("progression.NewEngine: precondition violated: all dependencies must be non-nil")
	}
	return &Engine{catalog: catalog, book: book, applier: applier, logger: logger}
}

// CheckLevelUp reports level-up eligibility without applying anything.
func (e *Engine) CheckLevelUp(k *kingdom.Kingdom) Eligibility {
	el := Eligibility{Level: k.Level, XP: k.XP}
	threshold, ok := e.catalog.Tables.XPThreshold(k.Level)
	if !ok {
		return el
	}
	el.Threshold = threshold
	el.Eligible = k.XP >= threshold
	el.FeatRequired = ruleset.GrantsFeat(k.Level + 1)
	return el
}

// CheckMilestones returns the milestones k now satisfies but has not been
// awarded, in table order.
func (e *Engine) CheckMilestones(k *kingdom.Kingdom) []*ruleset.Milestone {
	var out []*ruleset.Milestone
	for _, m := range e.catalog.Milestones() {
		if k.Milestones[m.ID] {
			continue
		}
		if m.Measure(k) >= m.Threshold {
			out = append(out, m)
		}
	}
	return out
}

// AwardMilestones records every newly satisfied milestone on k and adds its
// XP, mutating k in place. It returns one log line per award.
func (e *Engine) AwardMilestones(k *kingdom.Kingdom) (awarded []*ruleset.Milestone, log []string) {
	for _, m := range e.CheckMilestones(k) {
		k.Milestones[m.ID] = true
		k.XP += m.XP
		awarded = append(awarded, m)
		log = append(log, fmt.Sprintf("Milestone reached: %s (+%d XP)", m.Name, m.XP))
		e.logger.Info("milestone awarded", zap.String("kingdom", k.ID), zap.String("milestone", m.ID), zap.Int("xp", m.XP))
	}
	return awarded, log
}

// ValidateFeat checks that k may take featID on reaching level.
func (e *Engine) ValidateFeat(k *kingdom.Kingdom, featID string, level int) (*ruleset.Feat, error) {
	f, ok := e.catalog.Feat(featID)
	if !ok {
		return nil, failure.New(failure.UnknownFeat, "unknown feat %q", featID)
	}
	if f.Level > level {
		return nil, failure.New(failure.PrerequisiteNotMet, "%s requires kingdom level %d", f.Name, f.Level)
	}
	if k.Feats[f.ID] {
		return nil, failure.New(failure.PrerequisiteNotMet, "%s has already been taken", f.Name)
	}
	if f.Prerequisite != "" && !k.Feats[f.Prerequisite] {
		name := f.Prerequisite
		if p, ok := e.catalog.Feat(f.Prerequisite); ok {
			name = p.Name
		}
		return nil, failure.New(failure.PrerequisiteNotMet, "%s requires the %s feat", f.Name, name)
	}
	return f, nil
}

// AvailableFeats lists the feats k could take on reaching level.
func (e *Engine) AvailableFeats(k *kingdom.Kingdom, level int) []*ruleset.Feat {
	var out []*ruleset.Feat
	for _, f := range e.catalog.Feats() {
		if _, err := e.ValidateFeat(k, f.ID, level); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// ApplyLevelUp advances k one level with the given choices.
//
// Postcondition: k is unchanged; on success State.Level == k.Level+1 and
// State.XP == k.XP minus the threshold.
func (e *Engine) ApplyLevelUp(k *kingdom.Kingdom, c Choice, src dice.Source) (Outcome, error) {
	el := e.CheckLevelUp(k)
	if el.Threshold == 0 {
		return Outcome{}, failure.New(failure.InvalidInput, "kingdom is already at the maximum level %d", k.Level)
	}
	if !el.Eligible {
		return Outcome{}, failure.New(failure.InvalidInput, "kingdom needs %d XP to level up, has %d", el.Threshold, k.XP)
	}
	if !c.Ability.Valid() {
		return Outcome{}, failure.New(failure.InvalidInput, "unknown ability %q", c.Ability)
	}
	if _, ok := k.Skills[c.Skill]; !ok {
		return Outcome{}, failure.New(failure.InvalidInput, "unknown skill %q", c.Skill)
	}
	newLevel := k.Level + 1
	var feat *ruleset.Feat
	if el.FeatRequired {
		if c.Feat == "" {
			return Outcome{}, failure.New(failure.InvalidInput, "level %d grants a feat; one must be chosen", newLevel)
		}
		f, err := e.ValidateFeat(k, c.Feat, newLevel)
		if err != nil {
			return Outcome{}, err
		}
		feat = f
	}

	next := k.Clone()
	next.Level = newLevel
	next.XP -= el.Threshold
	next.Abilities[c.Ability] += AbilityIncrease
	log := []string{
		fmt.Sprintf("%s reaches level %d", k.Name, newLevel),
		fmt.Sprintf("%s increases to %d", c.Ability, next.Abilities[c.Ability]),
	}
	if tier, ok := next.Skills[c.Skill].Next(); ok {
		next.Skills[c.Skill] = tier
		log = append(log, fmt.Sprintf("%s becomes %s", c.Skill, tier))
	} else {
		log = append(log, fmt.Sprintf("%s is already legendary", c.Skill))
	}

	delta := kingdom.NewDelta()
	delta.XP = -el.Threshold
	if feat != nil {
		next.Feats[feat.ID] = true
		log = append(log, fmt.Sprintf("Feat acquired: %s", feat.Name))
		effects, ok := e.book.Feat(feat.ID)
		if !ok {
			e.applier.Guard().Corrupt("feat %q has no compiled effects", feat.ID)
		}
		res, err := e.applier.Apply(next, effects, effect.Target{}, src)
		if err != nil {
			return Outcome{}, err
		}
		log = append(log, res.Log...)
		delta = delta.Add(res.Delta)
	}

	e.logger.Info("kingdom levelled up",
		zap.String("kingdom", k.ID),
		zap.Int("level", newLevel),
		zap.String("ability", string(c.Ability)),
		zap.String("skill", string(c.Skill)),
		zap.String("feat", c.Feat),
	)
	return Outcome{State: next, Log: log, Delta: delta.Normalized()}, nil
}

// SkillTrainingCost returns the RP needed to train a skill out of tier
// current into the next tier.
func (e *Engine) SkillTrainingCost(current kingdom.Proficiency) (int, error) {
	target, ok := current.Next()
	if !ok {
		return 0, failure.New(failure.MaxProficiencyReached, "%s is the highest proficiency", current)
	}
	cost, ok := e.catalog.Tables.TrainingCostFor(target)
	if !ok {
		e.applier.Guard().Corrupt("no training cost for %s", target)
		return 0, failure.New(failure.InvalidInput, "training to %s is not available", target)
	}
	return cost, nil
}

// TrainSkillWithRP spends RP to raise skill one proficiency tier.
func (e *Engine) TrainSkillWithRP(k *kingdom.Kingdom, skill kingdom.Skill) (Outcome, error) {
	current, ok := k.Skills[skill]
	if !ok {
		return Outcome{}, failure.New(failure.InvalidInput, "unknown skill %q", skill)
	}
	cost, err := e.SkillTrainingCost(current)
	if err != nil {
		return Outcome{}, err
	}
	if k.RP < cost {
		return Outcome{}, failure.New(failure.InsufficientResources, "training %s costs %d RP, have %d", skill, cost, k.RP)
	}
	next := k.Clone()
	next.RP -= cost
	tier, _ := current.Next()
	next.Skills[skill] = tier
	delta := kingdom.NewDelta()
	delta.RP = -cost
	e.logger.Debug("skill trained", zap.String("kingdom", k.ID), zap.String("skill", string(skill)), zap.Stringer("tier", tier))
	return Outcome{
		State: next,
		Log:   []string{fmt.Sprintf("%s trained to %s for %d RP", skill, tier, cost)},
		Delta: delta.Normalized(),
	}, nil
}
