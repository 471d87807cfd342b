// Package activity executes player-initiated kingdom activities: it
// validates inputs and costs, resolves the skill check, and applies the
// degree's effects to a copy of the kingdom.
package activity

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/check"
	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/effect"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
	"github.com/cory-johannsen/kingdom/internal/scripting"
)

// Inputs maps input kinds ("hex", "settlement", ...) to raw values. A "lot"
// entry is honoured by structure placement even when the activity does not
// list it as required.
type Inputs map[string]string

// Outcome is the proposed result of an activity. State is a new kingdom;
// the input kingdom is never modified.
type Outcome struct {
	ActivityID string           `json:"activity_id"`
	State      *kingdom.Kingdom `json:"-"`
	Degree     ruleset.Degree   `json:"degree"`
	Breakdown  *check.Breakdown `json:"breakdown,omitempty"`
	Check      *check.Result    `json:"check,omitempty"`
	Log        []string         `json:"log"`
	RPCost     int              `json:"rp_cost"`
	Delta      kingdom.Delta    `json:"delta"`
	Category   kingdom.Category `json:"category"`
	Target     effect.Target    `json:"-"`
}

// Executor runs activities against a catalog.
type Executor struct {
	catalog    *ruleset.Catalog
	calc       *check.Calculator
	book       *effect.Book
	applier    *effect.Applier
	predicates *scripting.Predicates
	logger     *zap.Logger
}

// NewExecutor returns an Executor.
//
// Precondition: every argument must be non-nil.
func NewExecutor(
	catalog *ruleset.Catalog,
	calc *check.Calculator,
	book *effect.Book,
	applier *effect.Applier,
	predicates *scripting.Predicates,
	logger *zap.Logger,
) *Executor {
	if catalog == nil || calc == nil || book == nil || applier == nil || predicates == nil || logger == nil {
		panic("activity.NewExecutor: precondition violated: all dependencies must be non-nil")
	}
	return &Executor{
		catalog:    catalog,
		calc:       calc,
		book:       book,
		applier:    applier,
		predicates: predicates,
		logger:     logger,
	}
}

// Execute runs activityID for k with in, rolling dice from src.
//
// Precondition: k and src must be non-nil.
// Postcondition: k is unchanged. On error no Outcome is produced; on success
// Outcome.State is a fresh kingdom whose Diff against k equals Outcome.Delta.
func (x *Executor) Execute(k *kingdom.Kingdom, activityID string, in Inputs, src dice.Source) (Outcome, error) {
	def, ok := x.catalog.Activity(activityID)
	if !ok {
		return Outcome{}, failure.New(failure.UnknownActivity, "no activity %q", activityID)
	}
	table, ok := x.book.Activity(activityID)
	if !ok {
		return Outcome{}, failure.New(failure.UnknownActivity, "activity %q has no effect table", activityID)
	}
	if def.RPCost > k.RP {
		return Outcome{}, failure.New(failure.InsufficientResources, "%s costs %d RP, have %d", def.Name, def.RPCost, k.RP)
	}

	target, err := x.resolveInputs(k, def, in)
	if err != nil {
		return Outcome{}, err
	}
	if err := x.checkPrerequisites(k, def, target, in); err != nil {
		return Outcome{}, err
	}
	if err := x.checkEffectTargets(k, def, table, target); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		ActivityID: def.ID,
		Degree:     ruleset.Success,
		RPCost:     def.RPCost,
		Category:   def.Category,
		Target:     target,
	}
	if def.HasCheck() {
		b, err := x.calc.Compute(k, string(def.Skill), def.ID)
		if err != nil {
			return Outcome{}, err
		}
		res := check.Roll(src, b, x.dc(k, def.DC, def.DCAdjustment))
		out.Breakdown = &b
		out.Check = &res
		out.Degree = res.Degree
	}

	next := k.Clone()
	next.RP -= def.RPCost
	applied, err := x.applier.Apply(next, table.For(out.Degree), target, src)
	if err != nil {
		return Outcome{}, err
	}
	cost := kingdom.NewDelta()
	cost.RP = -def.RPCost
	out.State = next
	out.Log = applied.Log
	out.Delta = applied.Delta.Add(cost).Normalized()

	x.logger.Debug("activity resolved",
		zap.String("activity", def.ID),
		zap.Stringer("degree", out.Degree),
		zap.Int("rp_cost", def.RPCost),
		zap.Int("effects", len(out.Log)),
	)
	return out, nil
}

// dc returns the check DC: an explicit override or the kingdom's control DC,
// plus any adjustment.
func (x *Executor) dc(k *kingdom.Kingdom, override, adjustment int) int {
	dc := override
	if dc <= 0 {
		dc = x.calc.ControlDC(k)
	}
	return dc + adjustment
}

func (x *Executor) resolveInputs(k *kingdom.Kingdom, def *ruleset.Activity, in Inputs) (effect.Target, error) {
	var t effect.Target
	for _, kind := range def.Inputs {
		raw := strings.TrimSpace(in[string(kind)])
		if raw == "" {
			return effect.Target{}, failure.New(failure.InvalidInput, "%s requires a %s", def.Name, strings.ReplaceAll(string(kind), "_", " "))
		}
		switch kind {
		case ruleset.InputHex:
			c, err := kingdom.ParseCoord(raw)
			if err != nil {
				return effect.Target{}, failure.New(failure.InvalidInput, "%v", err)
			}
			if k.Hex(c) == nil {
				return effect.Target{}, failure.New(failure.InvalidInput, "hex %s is not on the map", c)
			}
			t.Hex = &c
		case ruleset.InputSettlement:
			s := k.Settlement(raw)
			if s == nil {
				s = k.SettlementByName(raw)
			}
			if s == nil {
				return effect.Target{}, failure.New(failure.InvalidInput, "no settlement %q", raw)
			}
			t.SettlementID = s.ID
		case ruleset.InputSettlementName:
			t.SettlementName = raw
		case ruleset.InputStructure:
			s, ok := x.catalog.Structure(raw)
			if !ok {
				return effect.Target{}, failure.New(failure.UnknownStructure, "no structure %q", raw)
			}
			t.Structure = s
		case ruleset.InputCommodity:
			c := kingdom.Commodity(raw)
			if !c.Valid() {
				return effect.Target{}, failure.New(failure.InvalidInput, "unknown commodity %q", raw)
			}
			t.Commodity = c
		case ruleset.InputWorkSite:
			w := kingdom.WorkSite(raw)
			if _, ok := w.Produces(); !ok {
				return effect.Target{}, failure.New(failure.InvalidInput, "unknown work site %q", raw)
			}
			t.WorkSite = w
		case ruleset.InputLot:
		default:
			return effect.Target{}, failure.New(failure.InvalidInput, "%s declares unknown input kind %q", def.Name, kind)
		}
	}
	if raw := strings.TrimSpace(in[string(ruleset.InputLot)]); raw != "" {
		lot, err := strconv.Atoi(raw)
		if err != nil || lot < 0 {
			return effect.Target{}, failure.New(failure.InvalidInput, "lot %q must be a non-negative integer", raw)
		}
		t.Lot = &lot
	}
	return t, nil
}

// checkEffectTargets validates the targets of construction effects before
// anything is rolled, so an unaffordable or unplaceable build fails cleanly.
func (x *Executor) checkEffectTargets(k *kingdom.Kingdom, def *ruleset.Activity, table effect.Table, t effect.Target) error {
	var builds, demolishes bool
	for _, d := range ruleset.Degrees {
		for _, e := range table.For(d) {
			switch e.(type) {
			case effect.BuildStructure:
				builds = true
			case effect.DemolishStructure:
				demolishes = true
			}
		}
	}
	if !builds && !demolishes {
		return nil
	}
	s := k.Settlement(t.SettlementID)
	if s == nil || t.Structure == nil {
		return failure.New(failure.InvalidInput, "%s needs a settlement and a structure", def.Name)
	}
	if demolishes && !s.HasStructure(t.Structure.ID) {
		return failure.New(failure.InvalidInput, "%s has no %s", s.Name, t.Structure.Name)
	}
	if builds {
		if _, err := x.applier.Placement(k, s, t.Structure, t.Lot); err != nil {
			return err
		}
		if err := effect.CanAfford(k, t.Structure.Cost, def.RPCost); err != nil {
			return err
		}
	}
	return nil
}
