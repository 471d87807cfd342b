// Package kingdom defines the kingdom aggregate and its nested entities.
//
// A Kingdom value exclusively owns all of its nested collections. Engine
// operations never mutate an input kingdom; they Clone it, mutate the copy,
// and hand the copy back as a proposed state.
package kingdom

import (
	"fmt"
	"strings"
)

// Ability is one of the four kingdom ability scores.
type Ability string

const (
	Culture   Ability = "culture"
	Economy   Ability = "economy"
	Loyalty   Ability = "loyalty"
	Stability Ability = "stability"
)

// Abilities lists every ability in display order.
var Abilities = []Ability{Culture, Economy, Loyalty, Stability}

// Valid reports whether a is one of the four abilities.
func (a Ability) Valid() bool {
	switch a {
	case Culture, Economy, Loyalty, Stability:
		return true
	}
	return false
}

// Skill names a kingdom skill. The governing ability of each skill is
// reference data owned by the ruleset.
type Skill string

const (
	Agriculture Skill = "agriculture"
	Arts        Skill = "arts"
	Boating     Skill = "boating"
	Defense     Skill = "defense"
	Engineering Skill = "engineering"
	Exploration Skill = "exploration"
	Folklore    Skill = "folklore"
	Industry    Skill = "industry"
	Intrigue    Skill = "intrigue"
	Magic       Skill = "magic"
	Politics    Skill = "politics"
	Scholarship Skill = "scholarship"
	Statecraft  Skill = "statecraft"
	Trade       Skill = "trade"
	Warfare     Skill = "warfare"
	Wilderness  Skill = "wilderness"
)

// Proficiency is a skill's training tier.
type Proficiency int

const (
	Untrained Proficiency = iota
	Trained
	Expert
	Master
	Legendary
)

var proficiencyNames = []string{"untrained", "trained", "expert", "master", "legendary"}

// String returns the lower-case tier name.
func (p Proficiency) String() string {
	if p < Untrained || p > Legendary {
		return "unknown"
	}
	return proficiencyNames[p]
}

// Next returns the tier one step above p.
//
// Postcondition: ok is false iff p is Legendary (or out of range).
func (p Proficiency) Next() (next Proficiency, ok bool) {
	if p < Untrained || p >= Legendary {
		return p, false
	}
	return p + 1, true
}

// ParseProficiency converts a tier name (case-insensitive) to a Proficiency.
func ParseProficiency(s string) (Proficiency, error) {
	for i, name := range proficiencyNames {
		if strings.EqualFold(s, name) {
			return Proficiency(i), nil
		}
	}
	return Untrained, fmt.Errorf("unknown proficiency %q", s)
}

// MarshalText encodes the tier by name.
func (p Proficiency) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a tier name.
func (p *Proficiency) UnmarshalText(b []byte) error {
	v, err := ParseProficiency(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Commodity is a stockpiled resource type.
type Commodity string

const (
	Food     Commodity = "food"
	Lumber   Commodity = "lumber"
	Ore      Commodity = "ore"
	Stone    Commodity = "stone"
	Luxuries Commodity = "luxuries"
)

// Commodities lists every commodity type.
var Commodities = []Commodity{Food, Lumber, Ore, Stone, Luxuries}

// Valid reports whether c is a known commodity.
func (c Commodity) Valid() bool {
	for _, known := range Commodities {
		if c == known {
			return true
		}
	}
	return false
}

// Stock is the held amount and storage capacity of one commodity.
// Invariant: 0 <= Amount <= Capacity after production.
type Stock struct {
	Amount   int `json:"amount"`
	Capacity int `json:"capacity"`
}

// Ruin names one of the four decay meters.
type Ruin string

const (
	Corruption Ruin = "corruption"
	Crime      Ruin = "crime"
	Decay      Ruin = "decay"
	Strife     Ruin = "strife"
)

// Ruins lists every ruin track.
var Ruins = []Ruin{Corruption, Crime, Decay, Strife}

// RuinTrack is the score and threshold of one ruin.
// Invariant: Score >= 0.
type RuinTrack struct {
	Score     int `json:"score"`
	Threshold int `json:"threshold"`
	Breaches  int `json:"breaches"`
}

// Role is a leadership role.
type Role string

const (
	Ruler     Role = "ruler"
	Counselor Role = "counselor"
	General   Role = "general"
	Emissary  Role = "emissary"
	Magister  Role = "magister"
	Marshal   Role = "marshal"
	Treasurer Role = "treasurer"
	Viceroy   Role = "viceroy"
)

// RequiredRoles is the fixed set of leadership roles a kingdom must fill.
var RequiredRoles = []Role{Ruler, Counselor, General, Emissary, Magister, Marshal, Treasurer, Viceroy}

// Leader occupies a leadership role.
type Leader struct {
	Role     Role   `json:"role"`
	Name     string `json:"name"`
	Invested bool   `json:"invested"`
	Vacant   bool   `json:"vacant"`
}

// Kingdom is the root aggregate.
type Kingdom struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Level  int    `json:"level"`
	XP     int    `json:"xp"`
	Fame   int    `json:"fame"`
	Infamy int    `json:"infamy"`

	Abilities map[Ability]int       `json:"abilities"`
	Skills    map[Skill]Proficiency `json:"skills"`

	Unrest      int                 `json:"unrest"`
	Ruins       map[Ruin]RuinTrack  `json:"ruins"`
	Commodities map[Commodity]Stock `json:"commodities"`
	RP          int                 `json:"rp"`
	Hexes       []Hex               `json:"hexes"`
	Settlements []Settlement        `json:"settlements"`
	Leaders     []Leader            `json:"leaders"`
	Feats       map[string]bool     `json:"feats"`
	Milestones  map[string]bool     `json:"milestones"`

	// CircumstanceBonus and CircumstancePenalty apply to every check the
	// kingdom makes until changed. Set by the circumstance_bonus and
	// circumstance_penalty effects; neither is tracked in Delta.
	CircumstanceBonus   int `json:"circumstance_bonus"`
	CircumstancePenalty int `json:"circumstance_penalty"`

	// BonusDice are extra resource dice rolled at the next upkeep; may be negative.
	BonusDice int `json:"bonus_dice"`

	ContinuousEvents  []string `json:"continuous_events"`
	TurnsWithoutEvent int      `json:"turns_without_event"`

	// Specials holds pending special-effect counters keyed by identifier,
	// consumed by whichever layer understands the identifier.
	Specials map[string]int `json:"specials"`

	Turn    TurnState      `json:"turn"`
	History []HistoryEntry `json:"history"`
}

// New returns a level-1 kingdom with ability scores of 10, every listed skill
// untrained, all required roles vacant, and empty stockpiles.
//
// Postcondition: Turn.Phase == PhaseUpkeep; Turn.Turn == 1.
func New(id, name string, skills []Skill, ruinThreshold int) *Kingdom {
	k := &Kingdom{
		ID:          id,
		Name:        name,
		Level:       1,
		Abilities:   make(map[Ability]int, len(Abilities)),
		Skills:      make(map[Skill]Proficiency, len(skills)),
		Ruins:       make(map[Ruin]RuinTrack, len(Ruins)),
		Commodities: make(map[Commodity]Stock, len(Commodities)),
		Feats:       make(map[string]bool),
		Milestones:  make(map[string]bool),
		Specials:    make(map[string]int),
		Turn:        NewTurnState(1, 0, 4710),
	}
	for _, a := range Abilities {
		k.Abilities[a] = 10
	}
	for _, s := range skills {
		k.Skills[s] = Untrained
	}
	for _, r := range Ruins {
		k.Ruins[r] = RuinTrack{Threshold: ruinThreshold}
	}
	for _, c := range Commodities {
		k.Commodities[c] = Stock{}
	}
	for _, role := range RequiredRoles {
		k.Leaders = append(k.Leaders, Leader{Role: role, Vacant: true})
	}
	return k
}

// Leader returns the leader holding role.
func (k *Kingdom) Leader(role Role) (Leader, bool) {
	for _, l := range k.Leaders {
		if l.Role == role {
			return l, true
		}
	}
	return Leader{}, false
}

// VacantRoles returns every required role with no occupying leader.
func (k *Kingdom) VacantRoles() []Role {
	var out []Role
	for _, role := range RequiredRoles {
		l, ok := k.Leader(role)
		if !ok || l.Vacant {
			out = append(out, role)
		}
	}
	return out
}

// AddUnrest adjusts unrest by n, flooring at zero.
func (k *Kingdom) AddUnrest(n int) {
	k.Unrest += n
	if k.Unrest < 0 {
		k.Unrest = 0
	}
}

// AddRuin adjusts one ruin score by n, flooring at zero.
func (k *Kingdom) AddRuin(r Ruin, n int) {
	t := k.Ruins[r]
	t.Score += n
	if t.Score < 0 {
		t.Score = 0
	}
	k.Ruins[r] = t
}

// AddCommodity adjusts a commodity amount by n, clamping to [0, Capacity].
// It returns the amount actually applied.
func (k *Kingdom) AddCommodity(c Commodity, n int) int {
	s := k.Commodities[c]
	before := s.Amount
	s.Amount += n
	if s.Amount > s.Capacity {
		s.Amount = s.Capacity
	}
	if s.Amount < 0 {
		s.Amount = 0
	}
	k.Commodities[c] = s
	return s.Amount - before
}

// Settlement returns a pointer to the settlement with id, or nil.
func (k *Kingdom) Settlement(id string) *Settlement {
	for i := range k.Settlements {
		if k.Settlements[i].ID == id {
			return &k.Settlements[i]
		}
	}
	return nil
}

// SettlementByName returns a pointer to the settlement named name
// (case-insensitive), or nil.
func (k *Kingdom) SettlementByName(name string) *Settlement {
	for i := range k.Settlements {
		if strings.EqualFold(k.Settlements[i].Name, name) {
			return &k.Settlements[i]
		}
	}
	return nil
}

// Capital returns the capital settlement, or nil if none is designated.
func (k *Kingdom) Capital() *Settlement {
	for i := range k.Settlements {
		if k.Settlements[i].Capital {
			return &k.Settlements[i]
		}
	}
	return nil
}

// TakeSpecial consumes and returns the pending counter for a special effect id.
func (k *Kingdom) TakeSpecial(id string) int {
	n := k.Specials[id]
	delete(k.Specials, id)
	return n
}

// StructureCount returns the number of structure placements across all settlements.
func (k *Kingdom) StructureCount() int {
	n := 0
	for _, s := range k.Settlements {
		n += len(s.Structures)
	}
	return n
}
