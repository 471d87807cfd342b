package ruleset

import "github.com/cory-johannsen/kingdom/internal/game/kingdom"

// Cost is what a structure costs to build.
type Cost struct {
	RP          int                       `yaml:"rp"`
	Commodities map[kingdom.Commodity]int `yaml:"commodities"`
}

// ItemBonus is a structure's bonus to named activities and skills.
type ItemBonus struct {
	Value      int             `yaml:"value"`
	Activities []string        `yaml:"activities"`
	Skills     []kingdom.Skill `yaml:"skills"`
}

// Structure is a buildable settlement structure.
//
// Precondition: ID and Name non-empty; Lots is 1, 2 or 4.
type Structure struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
	Lots        int    `yaml:"lots"`
	Cost        Cost   `yaml:"cost"`

	ItemBonus *ItemBonus `yaml:"item_bonus"`

	// ConsumptionReduction lowers the host settlement's consumption. When
	// RequiresWater is set the reduction only applies in water-adjacent settlements.
	ConsumptionReduction int  `yaml:"consumption_reduction"`
	RequiresWater        bool `yaml:"requires_water"`

	Storage map[kingdom.Commodity]int `yaml:"storage"`

	// LeadershipActivities, when non-zero and the structure stands in the
	// capital, raises the leadership activity cap to this value.
	LeadershipActivities int `yaml:"leadership_activities"`
}

// InputKind is the kind of value an activity input carries.
type InputKind string

const (
	InputHex            InputKind = "hex"
	InputSettlement     InputKind = "settlement"
	InputSettlementName InputKind = "settlement_name"
	InputStructure      InputKind = "structure"
	InputCommodity      InputKind = "commodity"
	InputWorkSite       InputKind = "work_site"
	InputLot            InputKind = "lot"
)

// Prerequisites is an activity's declarative precondition predicate.
// Zero-valued fields impose no constraint.
type Prerequisites struct {
	MinLevel          int                 `yaml:"min_level"`
	HexStatus         []kingdom.HexStatus `yaml:"hex_status"`
	Terrain           []kingdom.Terrain   `yaml:"terrain"`
	AdjacentToClaimed bool                `yaml:"adjacent_to_claimed"`
	NoWorkSite        bool                `yaml:"no_work_site"`
	HasWorkSite       bool                `yaml:"has_work_site"`
	NoRoad            bool                `yaml:"no_road"`
	NotFortified      bool                `yaml:"not_fortified"`
	Hazard            bool                `yaml:"hazard"`
	NoSettlement      bool                `yaml:"no_settlement"`
	NotCapital        bool                `yaml:"not_capital"`
	// Script is a Lua chunk that must return true. It sees the globals
	// `kingdom`, `inputs` and, when the activity targets a hex, `hex`.
	Script string `yaml:"script"`
}

// Activity is a player-initiated kingdom action.
type Activity struct {
	ID           string           `yaml:"id"`
	Name         string           `yaml:"name"`
	Description  string           `yaml:"description"`
	Category     kingdom.Category `yaml:"category"`
	RPCost       int              `yaml:"rp_cost"`
	Skill        kingdom.Skill    `yaml:"skill"`
	DC           int              `yaml:"dc"`
	DCAdjustment int              `yaml:"dc_adjustment"`
	Inputs       []InputKind      `yaml:"inputs"`
	Requires     Prerequisites    `yaml:"requires"`
	Outcomes     Outcomes         `yaml:"outcomes"`
}

// HasCheck reports whether the activity resolves a skill check.
func (a *Activity) HasCheck() bool { return a.Skill != "" }

// Event is a weighted random kingdom event resolved like an activity.
type Event struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Description  string        `yaml:"description"`
	Weight       int           `yaml:"weight"`
	Skill        kingdom.Skill `yaml:"skill"`
	DC           int           `yaml:"dc"`
	DCAdjustment int           `yaml:"dc_adjustment"`
	// Continuous events persist, resolving again each turn until a success ends them.
	Continuous bool     `yaml:"continuous"`
	Outcomes   Outcomes `yaml:"outcomes"`
}

// Feat is a kingdom feat.
type Feat struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Level        int          `yaml:"level"`
	Prerequisite string       `yaml:"prerequisite"`
	Benefit      string       `yaml:"benefit"`
	Effects      []EffectSpec `yaml:"effects"`
}

// MilestoneKind selects what a milestone measures.
type MilestoneKind string

const (
	MilestoneHexes       MilestoneKind = "hexes"
	MilestoneSettlements MilestoneKind = "settlements"
	MilestoneStructures  MilestoneKind = "structures"
	MilestoneLevel       MilestoneKind = "level"
	MilestoneInvested    MilestoneKind = "invested_leaders"
)

// Milestone awards XP once, the first time Measure(kingdom) >= Threshold.
type Milestone struct {
	ID        string        `yaml:"id"`
	Name      string        `yaml:"name"`
	Kind      MilestoneKind `yaml:"kind"`
	Threshold int           `yaml:"threshold"`
	XP        int           `yaml:"xp"`
}

// Measure returns the kingdom quantity this milestone compares against.
func (m *Milestone) Measure(k *kingdom.Kingdom) int {
	switch m.Kind {
	case MilestoneHexes:
		return k.ClaimedHexCount()
	case MilestoneSettlements:
		return len(k.Settlements)
	case MilestoneStructures:
		return k.StructureCount()
	case MilestoneLevel:
		return k.Level
	case MilestoneInvested:
		n := 0
		for _, l := range k.Leaders {
			if l.Invested && !l.Vacant {
				n++
			}
		}
		return n
	}
	return 0
}
