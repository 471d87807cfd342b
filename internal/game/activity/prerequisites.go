package activity

import (
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/effect"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// checkPrerequisites evaluates the activity's declarative predicate and its
// optional Lua script against the resolved target.
func (x *Executor) checkPrerequisites(k *kingdom.Kingdom, def *ruleset.Activity, t effect.Target, in Inputs) error {
	req := def.Requires
	if req.MinLevel > k.Level {
		return failure.New(failure.InvalidInput, "%s requires kingdom level %d", def.Name, req.MinLevel)
	}

	if t.Hex != nil {
		h := k.Hex(*t.Hex)
		switch {
		case len(req.HexStatus) > 0 && !slices.Contains(req.HexStatus, h.Status):
			return failure.New(failure.InvalidInput, "hex %s is %s", h.Coord, h.Status)
		case len(req.Terrain) > 0 && !slices.Contains(req.Terrain, h.Terrain):
			return failure.New(failure.InvalidInput, "%s cannot be used on %s terrain", def.Name, h.Terrain)
		case req.AdjacentToClaimed && k.ClaimedHexCount() > 0 && !k.BordersTerritory(h.Coord):
			return failure.New(failure.InvalidInput, "hex %s does not border the kingdom", h.Coord)
		case req.NoWorkSite && h.WorkSite != kingdom.NoWorkSite:
			return failure.New(failure.InvalidInput, "hex %s already has a %s", h.Coord, h.WorkSite)
		case req.HasWorkSite && h.WorkSite == kingdom.NoWorkSite:
			return failure.New(failure.InvalidInput, "hex %s has no work site", h.Coord)
		case req.NoRoad && h.Road:
			return failure.New(failure.InvalidInput, "hex %s already has a road", h.Coord)
		case req.NotFortified && h.Fortified:
			return failure.New(failure.InvalidInput, "hex %s is already fortified", h.Coord)
		case req.Hazard && !h.Hazard:
			return failure.New(failure.InvalidInput, "hex %s has no hazard to clear", h.Coord)
		case req.NoSettlement && h.SettlementID != "":
			return failure.New(failure.InvalidInput, "hex %s holds a settlement", h.Coord)
		}
	}

	if req.NotCapital && t.SettlementID != "" {
		if s := k.Settlement(t.SettlementID); s != nil && s.Capital {
			return failure.New(failure.InvalidInput, "%s is already the capital", s.Name)
		}
	}

	if req.Script != "" {
		ok, err := x.predicates.Eval(req.Script, scriptGlobals(k, t, in))
		if err != nil {
			x.logger.Warn("activity prerequisite script failed", zap.String("activity", def.ID), zap.Error(err))
			return failure.New(failure.InvalidInput, "%s prerequisites could not be evaluated", def.Name)
		}
		if !ok {
			return failure.New(failure.InvalidInput, "%s prerequisites are not met", def.Name)
		}
	}
	return nil
}

// scriptGlobals exposes a read-only view of the kingdom to prerequisite scripts.
func scriptGlobals(k *kingdom.Kingdom, t effect.Target, in Inputs) map[string]any {
	skills := make(map[string]string, len(k.Skills))
	for s, p := range k.Skills {
		skills[string(s)] = p.String()
	}
	abilities := make(map[string]int, len(k.Abilities))
	for a, n := range k.Abilities {
		abilities[string(a)] = n
	}
	commodities := make(map[string]int, len(k.Commodities))
	for c, s := range k.Commodities {
		commodities[string(c)] = s.Amount
	}
	inputs := make(map[string]string, len(in))
	for key, v := range in {
		inputs[key] = v
	}
	globals := map[string]any{
		"kingdom": map[string]any{
			"name":        k.Name,
			"level":       k.Level,
			"unrest":      k.Unrest,
			"rp":          k.RP,
			"fame":        k.Fame,
			"hexes":       k.ClaimedHexCount(),
			"settlements": len(k.Settlements),
			"structures":  k.StructureCount(),
			"feats":       k.Feats,
			"skills":      skills,
			"abilities":   abilities,
			"commodities": commodities,
		},
		"inputs": inputs,
	}
	if t.Hex != nil {
		h := k.Hex(*t.Hex)
		globals["hex"] = map[string]any{
			"col":       h.Coord.Col,
			"row":       h.Coord.Row,
			"terrain":   string(h.Terrain),
			"status":    string(h.Status),
			"work_site": string(h.WorkSite),
			"road":      h.Road,
			"fortified": h.Fortified,
			"hazard":    h.Hazard,
		}
	}
	return globals
}
