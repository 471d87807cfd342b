package ruleset

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/scripting"
)

// Catalog is the immutable, process-wide reference data the engine consults.
// It is built once at startup and only read afterwards, so concurrent reads
// need no locking.
type Catalog struct {
	Tables     *Tables
	structures map[string]*Structure
	activities map[string]*Activity
	feats      map[string]*Feat
	events     []*Event
	milestones []*Milestone
	// Map is the starting map; nil when the content ships none.
	Map *StartingMap
}

// NewCatalog returns an empty Catalog over tables.
//
// Precondition: tables must be non-nil.
func NewCatalog(tables *Tables) *Catalog {
	if tables == nil {
		panic("ruleset.NewCatalog: precondition violated: tables must be non-nil")
	}
	return &Catalog{
		Tables:     tables,
		structures: make(map[string]*Structure),
		activities: make(map[string]*Activity),
		feats:      make(map[string]*Feat),
	}
}

// RegisterStructure adds s; the last registration of an ID wins.
//
// Precondition: s non-nil with non-empty ID.
func (c *Catalog) RegisterStructure(s *Structure) {
	if s == nil || s.ID == "" {
		panic("Catalog.RegisterStructure: precondition violated: structure must be non-nil with an ID")
	}
	c.structures[s.ID] = s
}

// RegisterActivity adds a; the last registration of an ID wins.
//
// Precondition: a non-nil with non-empty ID.
func (c *Catalog) RegisterActivity(a *Activity) {
	if a == nil || a.ID == "" {
		panic("Catalog.RegisterActivity: precondition violated: activity must be non-nil with an ID")
	}
	c.activities[a.ID] = a
}

// RegisterFeat adds f; the last registration of an ID wins.
//
// Precondition: f non-nil with non-empty ID.
func (c *Catalog) RegisterFeat(f *Feat) {
	if f == nil || f.ID == "" {
		panic("Catalog.RegisterFeat: precondition violated: feat must be non-nil with an ID")
	}
	c.feats[f.ID] = f
}

// RegisterEvent appends e to the event table.
//
// Precondition: e non-nil with non-empty ID.
func (c *Catalog) RegisterEvent(e *Event) {
	if e == nil || e.ID == "" {
		panic("Catalog.RegisterEvent: precondition violated: event must be non-nil with an ID")
	}
	c.events = append(c.events, e)
	sort.SliceStable(c.events, func(i, j int) bool { return c.events[i].ID < c.events[j].ID })
}

// RegisterMilestone appends m to the milestone table.
//
// Precondition: m non-nil with non-empty ID.
func (c *Catalog) RegisterMilestone(m *Milestone) {
	if m == nil || m.ID == "" {
		panic("Catalog.RegisterMilestone: precondition violated: milestone must be non-nil with an ID")
	}
	c.milestones = append(c.milestones, m)
}

// Structure looks up a structure by ID.
func (c *Catalog) Structure(id string) (*Structure, bool) {
	s, ok := c.structures[id]
	return s, ok
}

// Activity looks up an activity by ID.
func (c *Catalog) Activity(id string) (*Activity, bool) {
	a, ok := c.activities[id]
	return a, ok
}

// Feat looks up a feat by ID.
func (c *Catalog) Feat(id string) (*Feat, bool) {
	f, ok := c.feats[id]
	return f, ok
}

// Event looks up an event by ID.
func (c *Catalog) Event(id string) (*Event, bool) {
	for _, e := range c.events {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// Events returns the event table in ID order.
func (c *Catalog) Events() []*Event {
	out := make([]*Event, len(c.events))
	copy(out, c.events)
	return out
}

// Milestones returns the milestone table in registration order.
func (c *Catalog) Milestones() []*Milestone {
	out := make([]*Milestone, len(c.milestones))
	copy(out, c.milestones)
	return out
}

// Activities returns every activity sorted by ID.
func (c *Catalog) Activities() []*Activity {
	out := make([]*Activity, 0, len(c.activities))
	for _, a := range c.activities {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Structures returns every structure sorted by ID.
func (c *Catalog) Structures() []*Structure {
	out := make([]*Structure, 0, len(c.structures))
	for _, s := range c.structures {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Feats returns every feat sorted by ID.
func (c *Catalog) Feats() []*Feat {
	out := make([]*Feat, 0, len(c.feats))
	for _, f := range c.feats {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ErrCorrupt wraps every catalog validation failure.
var ErrCorrupt = errors.New("catalog corruption")

// Validate checks tables and cross-references between catalog entries.
//
// Postcondition: Returns nil, or an error wrapping ErrCorrupt listing every violation.
func (c *Catalog) Validate() error {
	errs := c.Tables.validate()

	for _, s := range c.Structures() {
		if s.Lots != 1 && s.Lots != 2 && s.Lots != 4 {
			errs = append(errs, fmt.Sprintf("structure %s: lots must be 1, 2 or 4, got %d", s.ID, s.Lots))
		}
		for com := range s.Cost.Commodities {
			if !com.Valid() {
				errs = append(errs, fmt.Sprintf("structure %s: unknown cost commodity %q", s.ID, com))
			}
		}
		if s.ItemBonus != nil {
			for _, sk := range s.ItemBonus.Skills {
				if _, ok := c.Tables.Skills[sk]; !ok {
					errs = append(errs, fmt.Sprintf("structure %s: item bonus names unknown skill %q", s.ID, sk))
				}
			}
			for _, id := range s.ItemBonus.Activities {
				if _, ok := c.activities[id]; !ok {
					errs = append(errs, fmt.Sprintf("structure %s: item bonus names unknown activity %q", s.ID, id))
				}
			}
		}
	}

	for _, a := range c.Activities() {
		switch a.Category {
		case kingdom.Leadership, kingdom.Region, kingdom.Civic:
		default:
			errs = append(errs, fmt.Sprintf("activity %s: unknown category %q", a.ID, a.Category))
		}
		if a.Skill != "" {
			if _, ok := c.Tables.Skills[a.Skill]; !ok {
				errs = append(errs, fmt.Sprintf("activity %s: unknown skill %q", a.ID, a.Skill))
			}
		}
		if a.Requires.Script != "" {
			if _, err := scripting.Compile(a.Requires.Script); err != nil {
				errs = append(errs, fmt.Sprintf("activity %s: %v", a.ID, err))
			}
		}
		if a.RPCost < 0 {
			errs = append(errs, fmt.Sprintf("activity %s: rp_cost must be >= 0", a.ID))
		}
		errs = append(errs, c.validateOutcomes("activity "+a.ID, a.Outcomes)...)
	}

	for _, e := range c.events {
		if e.Weight <= 0 {
			errs = append(errs, fmt.Sprintf("event %s: weight must be > 0", e.ID))
		}
		if e.Skill != "" {
			if _, ok := c.Tables.Skills[e.Skill]; !ok {
				errs = append(errs, fmt.Sprintf("event %s: unknown skill %q", e.ID, e.Skill))
			}
		}
		errs = append(errs, c.validateOutcomes("event "+e.ID, e.Outcomes)...)
	}

	for _, f := range c.Feats() {
		if f.Prerequisite != "" {
			if _, ok := c.feats[f.Prerequisite]; !ok {
				errs = append(errs, fmt.Sprintf("feat %s: unknown prerequisite %q", f.ID, f.Prerequisite))
			}
		}
		errs = append(errs, c.validateEffects("feat "+f.ID, f.Effects)...)
	}

	if c.Map != nil {
		errs = append(errs, c.Map.validate()...)
	}

	for _, m := range c.milestones {
		switch m.Kind {
		case MilestoneHexes, MilestoneSettlements, MilestoneStructures, MilestoneLevel, MilestoneInvested:
		default:
			errs = append(errs, fmt.Sprintf("milestone %s: unknown kind %q", m.ID, m.Kind))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrCorrupt, strings.Join(errs, "; "))
	}
	return nil
}

func (c *Catalog) validateOutcomes(owner string, o Outcomes) []string {
	var errs []string
	for _, d := range Degrees {
		errs = append(errs, c.validateEffects(owner+" "+d.String(), o.For(d))...)
	}
	return errs
}

// validateEffects checks the fields an effect references. Whether Type names
// a known effect variant is checked where specs are compiled into effects.
func (c *Catalog) validateEffects(owner string, specs []EffectSpec) []string {
	var errs []string
	for i, s := range specs {
		if s.Type == "" {
			errs = append(errs, fmt.Sprintf("%s effect %d: missing type", owner, i))
		}
		if s.Commodity != "" && !kingdom.Commodity(s.Commodity).Valid() {
			errs = append(errs, fmt.Sprintf("%s effect %d: unknown commodity %q", owner, i, s.Commodity))
		}
		if s.Ruin != "" && !validRuin(kingdom.Ruin(s.Ruin)) {
			errs = append(errs, fmt.Sprintf("%s effect %d: unknown ruin %q", owner, i, s.Ruin))
		}
		if s.Amount.IsDice() {
			if _, _, err := parseSigned(s.Amount.Dice); err != nil {
				errs = append(errs, fmt.Sprintf("%s effect %d: %v", owner, i, err))
			}
		}
	}
	return errs
}

func validRuin(r kingdom.Ruin) bool {
	for _, known := range kingdom.Ruins {
		if r == known {
			return true
		}
	}
	return false
}

// DrawEvent makes a weighted draw from the event table.
//
// Postcondition: Returns (nil, false) when the table is empty.
func (c *Catalog) DrawEvent(src dice.Source) (*Event, bool) {
	total := 0
	for _, e := range c.events {
		total += e.Weight
	}
	if total <= 0 {
		return nil, false
	}
	pick := src.Intn(total)
	for _, e := range c.events {
		if pick < e.Weight {
			return e, true
		}
		pick -= e.Weight
	}
	return nil, false
}
