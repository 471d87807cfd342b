package effect

import (
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// Table is a compiled degree-keyed effect table.
type Table [4][]Effect

// For returns the effects for degree d.
func (t Table) For(d ruleset.Degree) []Effect {
	if d < ruleset.CriticalFailure || d > ruleset.CriticalSuccess {
		return nil
	}
	return t[d]
}

// Book holds the compiled effects of every activity, event and feat in a
// catalog. Specs that fail to compile are reported to the guard and left
// out, so a lenient Book degrades those effects to no-ops.
type Book struct {
	activities map[string]Table
	events     map[string]Table
	feats      map[string][]Effect
}

// NewBook compiles every effect in catalog.
//
// Precondition: catalog must be non-nil.
// Postcondition: panics on the first bad spec when guard is strict.
func NewBook(catalog *ruleset.Catalog, guard ruleset.Guard) *Book {
	if catalog == nil {
		panic("effect.NewBook: precondition violated: catalog must be non-nil")
	}
	b := &Book{
		activities: make(map[string]Table),
		events:     make(map[string]Table),
		feats:      make(map[string][]Effect),
	}
	for _, a := range catalog.Activities() {
		b.activities[a.ID] = compileTable("activity "+a.ID, a.Outcomes, guard)
	}
	for _, e := range catalog.Events() {
		b.events[e.ID] = compileTable("event "+e.ID, e.Outcomes, guard)
	}
	for _, f := range catalog.Feats() {
		b.feats[f.ID] = compileList("feat "+f.ID, f.Effects, guard)
	}
	return b
}

func compileTable(owner string, o ruleset.Outcomes, guard ruleset.Guard) Table {
	var t Table
	for _, d := range ruleset.Degrees {
		t[d] = compileList(owner+" "+d.String(), o.For(d), guard)
	}
	return t
}

func compileList(owner string, specs []ruleset.EffectSpec, guard ruleset.Guard) []Effect {
	out := make([]Effect, 0, len(specs))
	for _, s := range specs {
		e, err := Compile(s)
		if err != nil {
			guard.Corrupt("%s: %v", owner, err)
			continue
		}
		out = append(out, e)
	}
	return out
}

// Activity returns the compiled table for an activity.
func (b *Book) Activity(id string) (Table, bool) {
	t, ok := b.activities[id]
	return t, ok
}

// Event returns the compiled table for an event.
func (b *Book) Event(id string) (Table, bool) {
	t, ok := b.events[id]
	return t, ok
}

// Feat returns the compiled effects granted when a feat is acquired.
func (b *Book) Feat(id string) ([]Effect, bool) {
	e, ok := b.feats[id]
	return e, ok
}
