package turn

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
)

// UpkeepOutcome is the proposed result of the upkeep phase.
type UpkeepOutcome struct {
	State *kingdom.Kingdom `json:"-"`
	// ResourceRoll is the resource-dice roll; empty when no dice were rolled.
	ResourceRoll dice.RollResult `json:"resource_roll"`
	Milestones   []string        `json:"milestones,omitempty"`
	Log          []string        `json:"log"`
	Delta        kingdom.Delta   `json:"delta"`
}

// RunUpkeep performs the upkeep housekeeping in order: resource dice,
// storage refresh, production, consumption, taxation, vacancy penalties,
// ruin accrual and milestones.
//
// Postcondition: k is unchanged; Delta equals kingdom.Diff(k, State).
func (o *Orchestrator) RunUpkeep(k *kingdom.Kingdom, src dice.Source) (UpkeepOutcome, error) {
	if err := requirePhase(k, kingdom.PhaseUpkeep); err != nil {
		return UpkeepOutcome{}, err
	}
	next := k.Clone()
	out := UpkeepOutcome{}
	tables := o.catalog.Tables
	size := tables.SizeFor(next.ClaimedHexCount())

	count := tables.BaseResourceDice + next.Level + next.BonusDice
	if count > 0 {
		roller := dice.NewLoggedRoller(src, o.logger)
		out.ResourceRoll = roller.Roll(dice.Pool(count, size.ResourceDie))
		next.RP += out.ResourceRoll.Total()
		out.Log = append(out.Log, fmt.Sprintf("Resource dice %s: %d RP", out.ResourceRoll.Expression, out.ResourceRoll.Total()))
	}
	next.BonusDice = 0

	bonus := o.structures.Storage(next)
	for _, c := range kingdom.Commodities {
		s := next.Commodities[c]
		s.Capacity = size.Storage + bonus[c]
		if s.Amount > s.Capacity {
			out.Log = append(out.Log, fmt.Sprintf("%d %s spoiled for lack of storage", s.Amount-s.Capacity, c))
			s.Amount = s.Capacity
		}
		next.Commodities[c] = s
	}

	produced := make(map[kingdom.Commodity]int)
	for _, h := range next.Hexes {
		if h.Status != kingdom.Claimed {
			continue
		}
		c, ok := h.WorkSite.Produces()
		if !ok {
			continue
		}
		n := 1
		if h.BonusProduction {
			n++
		}
		produced[c] += next.AddCommodity(c, n)
	}
	for _, c := range kingdom.Commodities {
		if produced[c] > 0 {
			out.Log = append(out.Log, fmt.Sprintf("Produced %d %s", produced[c], c))
		}
	}

	need, taxes := 0, 0
	for i := range next.Settlements {
		s := &next.Settlements[i]
		need += max(0, tables.Consumption[s.Tier()]-o.structures.ConsumptionReduction(s))
		taxes += tables.Taxation[s.Tier()]
	}
	if need > 0 {
		paid := -next.AddCommodity(kingdom.Food, -need)
		out.Log = append(out.Log, fmt.Sprintf("Settlements consumed %d food", paid))
		if short := need - paid; short > 0 {
			next.AddUnrest(short)
			out.Log = append(out.Log, fmt.Sprintf("Food shortfall of %d: +%d unrest", short, short))
		}
	}
	if taxes > 0 {
		next.RP += taxes
		out.Log = append(out.Log, fmt.Sprintf("Taxation: +%d RP", taxes))
	}

	if vacant := next.VacantRoles(); len(vacant) > 0 {
		n := len(vacant) * tables.VacancyUnrest
		next.AddUnrest(n)
		out.Log = append(out.Log, fmt.Sprintf("%d vacant leadership roles: +%d unrest", len(vacant), n))
	}

	out.Log = append(out.Log, o.accrueRuin(next)...)

	awarded, mlog := o.progression.AwardMilestones(next)
	for _, m := range awarded {
		out.Milestones = append(out.Milestones, m.ID)
	}
	out.Log = append(out.Log, mlog...)

	out.Delta = kingdom.Diff(k, next)
	next.Turn.Delta = next.Turn.Delta.Add(out.Delta)
	complete(next, kingdom.PhaseUpkeep)
	out.State = next

	o.logger.Debug("upkeep resolved",
		zap.String("kingdom", k.ID),
		zap.Int("rp", next.RP),
		zap.Int("unrest", next.Unrest),
		zap.Int("food", next.Commodities[kingdom.Food].Amount),
	)
	return out, nil
}

// accrueRuin grows every ruin track while unrest is high and shrinks them
// when unrest is zero. A track that exceeds its threshold breaches: it
// resets to zero and costs one unrest.
func (o *Orchestrator) accrueRuin(k *kingdom.Kingdom) []string {
	var log []string
	switch {
	case k.Unrest >= o.catalog.Tables.RuinAccrualUnrest:
		for _, r := range kingdom.Ruins {
			k.AddRuin(r, 1)
		}
		log = append(log, "Unrest runs high: every ruin grows by 1")
	case k.Unrest == 0:
		for _, r := range kingdom.Ruins {
			k.AddRuin(r, -1)
		}
	}
	for _, r := range kingdom.Ruins {
		t := k.Ruins[r]
		if t.Score <= t.Threshold {
			continue
		}
		t.Score = 0
		t.Breaches++
		k.Ruins[r] = t
		k.AddUnrest(1)
		log = append(log, fmt.Sprintf("%s breached its threshold: +1 unrest", r))
		o.logger.Warn("ruin breached", zap.String("kingdom", k.ID), zap.String("ruin", string(r)), zap.Int("breaches", t.Breaches))
	}
	return log
}
