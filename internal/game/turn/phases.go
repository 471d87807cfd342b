package turn

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/activity"
	"github.com/cory-johannsen/kingdom/internal/game/commerce"
	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/event"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// CommerceOutcome is the proposed result of the commerce phase.
type CommerceOutcome struct {
	State  *kingdom.Kingdom   `json:"-"`
	Trades []commerce.Outcome `json:"trades"`
	Log    []string           `json:"log"`
	Delta  kingdom.Delta      `json:"delta"`
}

// RunCommerce resolves trades in order and closes the commerce phase. The
// batch is all-or-nothing: the first failing trade fails the whole phase and
// nothing is applied. An empty batch simply closes the phase.
func (o *Orchestrator) RunCommerce(k *kingdom.Kingdom, trades []commerce.Trade, src dice.Source) (CommerceOutcome, error) {
	if err := requirePhase(k, kingdom.PhaseCommerce); err != nil {
		return CommerceOutcome{}, err
	}
	out := CommerceOutcome{Delta: kingdom.NewDelta()}
	cur := k
	for i, t := range trades {
		res, err := o.commerce.Execute(cur, t, src)
		if err != nil {
			return CommerceOutcome{}, fmt.Errorf("trade %d: %w", i+1, err)
		}
		cur = res.State
		out.Trades = append(out.Trades, res)
		out.Log = append(out.Log, res.Log...)
		out.Delta = out.Delta.Add(res.Delta)
	}
	next := cur
	if next == k {
		next = k.Clone()
		out.Log = append(out.Log, "No trades this month")
	}
	out.Delta = out.Delta.Normalized()
	next.Turn.Delta = next.Turn.Delta.Add(out.Delta)
	complete(next, kingdom.PhaseCommerce)
	out.State = next
	return out, nil
}

// RunActivity executes one activity within the per-turn category limits.
func (o *Orchestrator) RunActivity(k *kingdom.Kingdom, activityID string, in activity.Inputs, src dice.Source) (activity.Outcome, error) {
	if err := requirePhase(k, kingdom.PhaseActivity); err != nil {
		return activity.Outcome{}, err
	}
	def, ok := o.catalog.Activity(activityID)
	if !ok {
		return activity.Outcome{}, failure.New(failure.UnknownActivity, "no activity %q", activityID)
	}
	settlementID, err := o.checkLimit(k, def, in)
	if err != nil {
		return activity.Outcome{}, err
	}

	out, err := o.activities.Execute(k, activityID, in, src)
	if err != nil {
		return activity.Outcome{}, err
	}
	next := out.State
	if next.Turn.ActivitiesUsed == nil {
		next.Turn.ActivitiesUsed = make(map[kingdom.Category]int)
	}
	if next.Turn.CivicSettlement == nil {
		next.Turn.CivicSettlement = make(map[string]int)
	}
	next.Turn.ActivitiesUsed[def.Category]++
	if def.Category == kingdom.Civic {
		next.Turn.CivicSettlement[settlementID]++
	}
	rec := kingdom.ActivityRecord{ActivityID: def.ID, Degree: out.Degree.String(), Log: out.Log}
	if out.Check != nil {
		rec.Roll, rec.Total, rec.DC = out.Check.Roll, out.Check.Total, out.Check.DC
	}
	next.Turn.Activities = append(next.Turn.Activities, rec)
	next.Turn.Delta = next.Turn.Delta.Add(out.Delta)
	return out, nil
}

// LeadershipLimit returns how many leadership activities k may take per turn.
func (o *Orchestrator) LeadershipLimit(k *kingdom.Kingdom) int {
	return o.structures.LeadershipCap(k, o.catalog.Tables.Limits.Leadership)
}

// checkLimit fails with InvalidInput when def's category is exhausted this
// turn. For civic activities it returns the settlement the limit is counted
// against.
func (o *Orchestrator) checkLimit(k *kingdom.Kingdom, def *ruleset.Activity, in activity.Inputs) (string, error) {
	limits := o.catalog.Tables.Limits
	used := k.Turn.ActivitiesUsed[def.Category]
	switch def.Category {
	case kingdom.Leadership:
		if limit := o.LeadershipLimit(k); used >= limit {
			return "", failure.New(failure.InvalidInput, "the kingdom has already taken %d leadership activities this turn", limit)
		}
	case kingdom.Region:
		if used >= limits.Region {
			return "", failure.New(failure.InvalidInput, "the kingdom has already taken %d region activities this turn", limits.Region)
		}
	case kingdom.Civic:
		raw := strings.TrimSpace(in[string(ruleset.InputSettlement)])
		s := k.Settlement(raw)
		if s == nil {
			s = k.SettlementByName(raw)
		}
		if s == nil {
			return "", failure.New(failure.InvalidInput, "%s requires a settlement", def.Name)
		}
		if k.Turn.CivicSettlement[s.ID] >= limits.CivicPerSettlement {
			return "", failure.New(failure.InvalidInput, "%s has already taken its civic activity this turn", s.Name)
		}
		return s.ID, nil
	}
	return "", nil
}

// RunEvent resolves the event phase and closes it.
func (o *Orchestrator) RunEvent(k *kingdom.Kingdom, src dice.Source) (event.Outcome, error) {
	if err := requirePhase(k, kingdom.PhaseEvent); err != nil {
		return event.Outcome{}, err
	}
	out, err := o.events.Run(k, src)
	if err != nil {
		return event.Outcome{}, err
	}
	next := out.State
	for _, r := range out.Continuing {
		next.Turn.Events = append(next.Turn.Events, kingdom.EventRecord{EventID: r.EventID, Degree: r.Degree.String(), Log: r.Log})
	}
	if out.Details != nil {
		next.Turn.Events = append(next.Turn.Events, kingdom.EventRecord{EventID: out.Details.EventID, Degree: out.Details.Degree.String(), Log: out.Details.Log})
	}
	next.Turn.Delta = next.Turn.Delta.Add(out.Delta)
	complete(next, kingdom.PhaseEvent)
	o.logger.Debug("event phase closed", zap.String("kingdom", k.ID), zap.Bool("occurred", out.Occurred))
	return out, nil
}
