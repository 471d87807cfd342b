// Package structure answers questions about the structures built in a
// kingdom's settlements: item bonuses, consumption reductions, storage and
// the leadership activity cap.
package structure

import (
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// Resolver scans settlements against the structure catalog.
type Resolver struct {
	catalog *ruleset.Catalog
	guard   ruleset.Guard
}

// NewResolver returns a Resolver over catalog.
//
// Precondition: catalog must be non-nil.
func NewResolver(catalog *ruleset.Catalog, guard ruleset.Guard) *Resolver {
	if catalog == nil {
		panic("structure.NewResolver: precondition violated: catalog must be non-nil")
	}
	return &Resolver{catalog: catalog, guard: guard}
}

// each calls fn for every placement in k whose structure is defined.
// Placements naming unknown structures are reported to the guard and skipped.
func (r *Resolver) each(k *kingdom.Kingdom, fn func(s *kingdom.Settlement, def *ruleset.Structure)) {
	for i := range k.Settlements {
		r.eachIn(&k.Settlements[i], func(def *ruleset.Structure) { fn(&k.Settlements[i], def) })
	}
}

func (r *Resolver) eachIn(s *kingdom.Settlement, fn func(def *ruleset.Structure)) {
	for _, p := range s.Structures {
		def, ok := r.catalog.Structure(p.StructureID)
		if !ok {
			r.guard.Corrupt("settlement %s holds unknown structure %q", s.Name, p.StructureID)
			continue
		}
		fn(def)
	}
}

// ItemBonus returns the largest item bonus any built structure grants to
// activityID or skill. Bonuses from different structures do not stack.
//
// Postcondition: Returns >= 0.
func (r *Resolver) ItemBonus(k *kingdom.Kingdom, activityID string, skill kingdom.Skill) int {
	best := 0
	r.each(k, func(_ *kingdom.Settlement, def *ruleset.Structure) {
		if def.ItemBonus == nil || def.ItemBonus.Value <= best {
			return
		}
		if grants(def.ItemBonus, activityID, skill) {
			best = def.ItemBonus.Value
		}
	})
	return best
}

func grants(b *ruleset.ItemBonus, activityID string, skill kingdom.Skill) bool {
	if activityID != "" {
		for _, id := range b.Activities {
			if id == activityID {
				return true
			}
		}
	}
	if skill != "" {
		for _, s := range b.Skills {
			if s == skill {
				return true
			}
		}
	}
	return false
}

// ConsumptionReduction returns how much s's structures lower its food
// consumption. Reductions that require water count only in water-adjacent
// settlements.
func (r *Resolver) ConsumptionReduction(s *kingdom.Settlement) int {
	total := 0
	r.eachIn(s, func(def *ruleset.Structure) {
		if def.RequiresWater && !s.WaterAdjacent {
			return
		}
		total += def.ConsumptionReduction
	})
	return total
}

// Storage returns the commodity capacity every structure in k adds.
func (r *Resolver) Storage(k *kingdom.Kingdom) map[kingdom.Commodity]int {
	out := make(map[kingdom.Commodity]int)
	r.each(k, func(_ *kingdom.Settlement, def *ruleset.Structure) {
		for c, n := range def.Storage {
			out[c] += n
		}
	})
	return out
}

// LeadershipCap returns the number of leadership activities k may take per
// turn: base, raised by any structure in the capital that grants a higher cap.
func (r *Resolver) LeadershipCap(k *kingdom.Kingdom, base int) int {
	capital := k.Capital()
	if capital == nil {
		return base
	}
	limit := base
	r.eachIn(capital, func(def *ruleset.Structure) {
		if def.LeadershipActivities > limit {
			limit = def.LeadershipActivities
		}
	})
	return limit
}
