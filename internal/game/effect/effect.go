// Package effect defines the closed set of kingdom effects an activity,
// event or feat may carry, compiles them from catalog specs, and applies
// them to a kingdom.
package effect

import (
	"fmt"

	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// Effect is one compiled kingdom effect. The variant set is closed: only
// types in this package implement it.
type Effect interface {
	// Tag returns the catalog type name of the variant.
	Tag() string
	sealed()
}

// Catalog type names.
const (
	TagRP                = "rp"
	TagCommodity         = "commodity"
	TagUnrest            = "unrest"
	TagRuin              = "ruin"
	TagFame              = "fame"
	TagInfamy            = "infamy"
	TagXP                = "xp"
	TagClaimHex          = "claim_hex"
	TagAbandonHex        = "abandon_hex"
	TagExploreHex        = "explore_hex"
	TagEstablishWorkSite = "establish_work_site"
	TagBuildRoad         = "build_road"
	TagFortifyHex        = "fortify_hex"
	TagClearHazard       = "clear_hazard"
	TagFoundSettlement   = "found_settlement"
	TagRelocateCapital   = "relocate_capital"
	TagBuildStructure    = "build_structure"
	TagDemolish          = "demolish_structure"
	TagBonusDice         = "bonus_dice"
	TagCircumstanceBonus = "circumstance_bonus"
	TagCircumstancePen   = "circumstance_penalty"
	TagSpecial           = "special"
)

type (
	// RP adjusts resource points.
	RP struct{ Amount ruleset.Amount }
	// Commodity adjusts one commodity stock, clamped to capacity.
	Commodity struct {
		Commodity kingdom.Commodity
		Amount    ruleset.Amount
	}
	// Unrest adjusts unrest, floored at zero.
	Unrest struct{ Amount ruleset.Amount }
	// Ruin adjusts one ruin track, floored at zero.
	Ruin struct {
		Ruin   kingdom.Ruin
		Amount ruleset.Amount
	}
	// Fame adjusts fame.
	Fame struct{ Amount ruleset.Amount }
	// Infamy adjusts infamy.
	Infamy struct{ Amount ruleset.Amount }
	// XP adjusts experience.
	XP struct{ Amount ruleset.Amount }
	// ClaimHex claims the target hex.
	ClaimHex struct{}
	// AbandonHex releases the target hex, removing its work site and road.
	AbandonHex struct{}
	// ExploreHex marks the target hex explored.
	ExploreHex struct{}
	// EstablishWorkSite places a work site on the target hex. Site is taken
	// from the activity input when empty.
	EstablishWorkSite struct {
		Site  kingdom.WorkSite
		Bonus bool
	}
	// BuildRoad adds a road to the target hex.
	BuildRoad struct{}
	// FortifyHex fortifies the target hex.
	FortifyHex struct{}
	// ClearHazard removes the target hex's hazard.
	ClearHazard struct{}
	// FoundSettlement founds a village on the target hex.
	FoundSettlement struct{}
	// RelocateCapital makes the target settlement the capital.
	RelocateCapital struct{}
	// BuildStructure pays for and places the target structure in the target settlement.
	BuildStructure struct{}
	// DemolishStructure removes the target structure from the target settlement.
	DemolishStructure struct{}
	// BonusDice adjusts the resource dice rolled at the next upkeep.
	BonusDice struct{ Amount ruleset.Amount }
	// CircumstanceBonus adjusts the kingdom-wide circumstance bonus, floored at zero.
	CircumstanceBonus struct{ Amount ruleset.Amount }
	// CircumstancePenalty adjusts the kingdom-wide circumstance penalty, floored at zero.
	CircumstancePenalty struct{ Amount ruleset.Amount }
	// Special records a counter understood by the event and progression layers.
	Special struct {
		ID     string
		Amount ruleset.Amount
		Text   string
	}
)

func (RP) Tag() string                  { return TagRP }
func (Commodity) Tag() string           { return TagCommodity }
func (Unrest) Tag() string              { return TagUnrest }
func (Ruin) Tag() string                { return TagRuin }
func (Fame) Tag() string                { return TagFame }
func (Infamy) Tag() string              { return TagInfamy }
func (XP) Tag() string                  { return TagXP }
func (ClaimHex) Tag() string            { return TagClaimHex }
func (AbandonHex) Tag() string          { return TagAbandonHex }
func (ExploreHex) Tag() string          { return TagExploreHex }
func (EstablishWorkSite) Tag() string   { return TagEstablishWorkSite }
func (BuildRoad) Tag() string           { return TagBuildRoad }
func (FortifyHex) Tag() string          { return TagFortifyHex }
func (ClearHazard) Tag() string         { return TagClearHazard }
func (FoundSettlement) Tag() string     { return TagFoundSettlement }
func (RelocateCapital) Tag() string     { return TagRelocateCapital }
func (BuildStructure) Tag() string      { return TagBuildStructure }
func (DemolishStructure) Tag() string   { return TagDemolish }
func (BonusDice) Tag() string           { return TagBonusDice }
func (Special) Tag() string             { return TagSpecial }
func (CircumstanceBonus) Tag() string   { return TagCircumstanceBonus }
func (CircumstancePenalty) Tag() string { return TagCircumstancePen }

func (RP) sealed()                  {}
func (Commodity) sealed()           {}
func (Unrest) sealed()              {}
func (Ruin) sealed()                {}
func (Fame) sealed()                {}
func (Infamy) sealed()              {}
func (XP) sealed()                  {}
func (ClaimHex) sealed()            {}
func (AbandonHex) sealed()          {}
func (ExploreHex) sealed()          {}
func (EstablishWorkSite) sealed()   {}
func (BuildRoad) sealed()           {}
func (FortifyHex) sealed()          {}
func (ClearHazard) sealed()         {}
func (FoundSettlement) sealed()     {}
func (RelocateCapital) sealed()     {}
func (BuildStructure) sealed()      {}
func (DemolishStructure) sealed()   {}
func (BonusDice) sealed()           {}
func (Special) sealed()             {}
func (CircumstanceBonus) sealed()   {}
func (CircumstancePenalty) sealed() {}

// Compile converts a catalog spec into its Effect variant.
//
// Postcondition: an unknown type or missing field returns an error wrapping ruleset.ErrCorrupt.
func Compile(spec ruleset.EffectSpec) (Effect, error) {
	switch spec.Type {
	case TagRP:
		return RP{Amount: spec.Amount}, nil
	case TagCommodity:
		c := kingdom.Commodity(spec.Commodity)
		if !c.Valid() {
			return nil, fmt.Errorf("%w: commodity effect names unknown commodity %q", ruleset.ErrCorrupt, spec.Commodity)
		}
		return Commodity{Commodity: c, Amount: spec.Amount}, nil
	case TagUnrest:
		return Unrest{Amount: spec.Amount}, nil
	case TagRuin:
		r := kingdom.Ruin(spec.Ruin)
		if !validRuin(r) {
			return nil, fmt.Errorf("%w: ruin effect names unknown ruin %q", ruleset.ErrCorrupt, spec.Ruin)
		}
		return Ruin{Ruin: r, Amount: spec.Amount}, nil
	case TagFame:
		return Fame{Amount: spec.Amount}, nil
	case TagInfamy:
		return Infamy{Amount: spec.Amount}, nil
	case TagXP:
		return XP{Amount: spec.Amount}, nil
	case TagClaimHex:
		return ClaimHex{}, nil
	case TagAbandonHex:
		return AbandonHex{}, nil
	case TagExploreHex:
		return ExploreHex{}, nil
	case TagEstablishWorkSite:
		site := kingdom.WorkSite(spec.ID)
		if _, ok := site.Produces(); site != kingdom.NoWorkSite && !ok {
			return nil, fmt.Errorf("%w: unknown work site %q", ruleset.ErrCorrupt, spec.ID)
		}
		return EstablishWorkSite{Site: site, Bonus: spec.Bonus}, nil
	case TagBuildRoad:
		return BuildRoad{}, nil
	case TagFortifyHex:
		return FortifyHex{}, nil
	case TagClearHazard:
		return ClearHazard{}, nil
	case TagFoundSettlement:
		return FoundSettlement{}, nil
	case TagRelocateCapital:
		return RelocateCapital{}, nil
	case TagBuildStructure:
		return BuildStructure{}, nil
	case TagDemolish:
		return DemolishStructure{}, nil
	case TagBonusDice:
		return BonusDice{Amount: spec.Amount}, nil
	case TagCircumstanceBonus:
		return CircumstanceBonus{Amount: spec.Amount}, nil
	case TagCircumstancePen:
		return CircumstancePenalty{Amount: spec.Amount}, nil
	case TagSpecial:
		if spec.ID == "" {
			return nil, fmt.Errorf("%w: special effect without id", ruleset.ErrCorrupt)
		}
		return Special{ID: spec.ID, Amount: spec.Amount, Text: spec.Text}, nil
	}
	return nil, fmt.Errorf("%w: unknown effect type %q", ruleset.ErrCorrupt, spec.Type)
}

func validRuin(r kingdom.Ruin) bool {
	for _, known := range kingdom.Ruins {
		if r == known {
			return true
		}
	}
	return false
}
