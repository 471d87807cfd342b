// Package event resolves the kingdom's event phase: ongoing continuous
// events, then a chance of one new weighted random event.
package event

import (
	"fmt"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/check"
	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/effect"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// Special effect identifiers consumed by the event phase.
const (
	// SpecialForewarned adds its value as a circumstance modifier to this
	// phase's event checks.
	SpecialForewarned = "event_forewarned"
	// SpecialEndContinuous ends that many ongoing continuous events.
	SpecialEndContinuous = "end_continuous_event"
)

// Config tunes how often events occur.
type Config struct {
	// Chance is the base probability of an event each turn.
	Chance float64
	// Step is added to Chance for every consecutive turn without an event.
	Step float64
}

// Resolved is one event resolved during the phase.
type Resolved struct {
	EventID   string           `json:"event_id"`
	Name      string           `json:"name"`
	Degree    ruleset.Degree   `json:"degree"`
	Breakdown *check.Breakdown `json:"breakdown,omitempty"`
	Check     *check.Result    `json:"check,omitempty"`
	Log       []string         `json:"log"`
	// Ongoing is set when a continuous event persists into the next turn.
	Ongoing bool `json:"ongoing"`
}

// Outcome is the proposed result of the event phase.
type Outcome struct {
	State *kingdom.Kingdom `json:"-"`
	// Occurred reports whether a new event was drawn this turn.
	Occurred bool `json:"occurred"`
	// Details describes the new event when Occurred.
	Details *Resolved `json:"details,omitempty"`
	// Continuing lists the ongoing continuous events resolved again.
	Continuing []Resolved    `json:"continuing,omitempty"`
	Log        []string      `json:"log"`
	Delta      kingdom.Delta `json:"delta"`
}

// Resolver runs the event phase.
type Resolver struct {
	catalog *ruleset.Catalog
	calc    *check.Calculator
	book    *effect.Book
	applier *effect.Applier
	cfg     Config
	logger  *zap.Logger
}

// NewResolver returns a Resolver.
//
// Precondition: every pointer argument must be non-nil; cfg.Chance in [0, 1].
func NewResolver(catalog *ruleset.Catalog, calc *check.Calculator, book *effect.Book, applier *effect.Applier, cfg Config, logger *zap.Logger) *Resolver {
	if catalog == nil || calc == nil || book == nil || applier == nil || logger == nil {
		panic("event.NewResolver: precondition violated: all dependencies must be non-nil")
	}
	if cfg.Chance < 0 || cfg.Chance > 1 {
		panic(fmt.Sprintf("event.NewResolver: precondition violated: chance %v outside [0, 1]", cfg.Chance))
	}
	return &Resolver{catalog: catalog, calc: calc, book: book, applier: applier, cfg: cfg, logger: logger}
}

// Chance returns the probability that a new event occurs for k this turn.
func (r *Resolver) Chance(k *kingdom.Kingdom) float64 {
	return math.Min(1, r.cfg.Chance+r.cfg.Step*float64(k.TurnsWithoutEvent))
}

// Run resolves the event phase for k.
//
// Postcondition: k is unchanged; Outcome.Delta equals kingdom.Diff(k, Outcome.State).
func (r *Resolver) Run(k *kingdom.Kingdom, src dice.Source) (Outcome, error) {
	next := k.Clone()
	out := Outcome{Delta: kingdom.NewDelta()}

	if n := next.TakeSpecial(SpecialEndContinuous); n > 0 {
		for ; n > 0 && len(next.ContinuousEvents) > 0; n-- {
			id := next.ContinuousEvents[0]
			next.ContinuousEvents = next.ContinuousEvents[1:]
			out.Log = append(out.Log, fmt.Sprintf("%s has been resolved", r.name(id)))
		}
	}
	circumstance := next.TakeSpecial(SpecialForewarned)

	for _, id := range slices.Clone(next.ContinuousEvents) {
		ev, ok := r.catalog.Event(id)
		if !ok {
			r.applier.Guard().Corrupt("kingdom tracks unknown continuous event %q", id)
			next.ContinuousEvents = slices.DeleteFunc(next.ContinuousEvents, func(s string) bool { return s == id })
			continue
		}
		res, d, err := r.resolve(next, ev, circumstance, src)
		if err != nil {
			return Outcome{}, err
		}
		if !res.Ongoing {
			next.ContinuousEvents = slices.DeleteFunc(next.ContinuousEvents, func(s string) bool { return s == id })
		}
		out.Continuing = append(out.Continuing, res)
		out.Log = append(out.Log, res.Log...)
		out.Delta = out.Delta.Add(d)
	}

	chance := r.Chance(k)
	if src.Intn(100) < int(math.Round(chance*100)) {
		if ev, ok := r.catalog.DrawEvent(src); ok {
			res, d, err := r.resolve(next, ev, circumstance, src)
			if err != nil {
				return Outcome{}, err
			}
			if res.Ongoing && !slices.Contains(next.ContinuousEvents, ev.ID) {
				next.ContinuousEvents = append(next.ContinuousEvents, ev.ID)
			}
			out.Occurred = true
			out.Details = &res
			out.Log = append(out.Log, res.Log...)
			out.Delta = out.Delta.Add(d)
		}
	}
	if out.Occurred {
		next.TurnsWithoutEvent = 0
	} else {
		next.TurnsWithoutEvent++
		out.Log = append(out.Log, "The month passes quietly")
	}

	r.logger.Debug("event phase resolved",
		zap.Bool("occurred", out.Occurred),
		zap.Float64("chance", chance),
		zap.Int("continuing", len(out.Continuing)),
	)
	out.State = next
	out.Delta = out.Delta.Normalized()
	return out, nil
}

func (r *Resolver) name(id string) string {
	if ev, ok := r.catalog.Event(id); ok {
		return ev.Name
	}
	return id
}

// resolve resolves ev against k in place, the way an activity would but
// without cost or activity limits.
func (r *Resolver) resolve(k *kingdom.Kingdom, ev *ruleset.Event, circumstance int, src dice.Source) (Resolved, kingdom.Delta, error) {
	res := Resolved{EventID: ev.ID, Name: ev.Name, Degree: ruleset.Success}
	if ev.Skill != "" {
		b, err := r.calc.Compute(k, string(ev.Skill), "")
		if err != nil {
			return Resolved{}, kingdom.Delta{}, err
		}
		if circumstance != 0 {
			b = b.WithCircumstance(circumstance)
		}
		dc := ev.DC
		if dc <= 0 {
			dc = r.calc.ControlDC(k)
		}
		c := check.Roll(src, b, dc+ev.DCAdjustment)
		res.Breakdown = &b
		res.Check = &c
		res.Degree = c.Degree
	}
	res.Ongoing = ev.Continuous && !res.Degree.IsSuccess()

	table, ok := r.book.Event(ev.ID)
	if !ok {
		r.applier.Guard().Corrupt("event %q has no effect table", ev.ID)
		return res, kingdom.NewDelta(), nil
	}
	applied, err := r.applier.Apply(k, table.For(res.Degree), effect.Target{}, src)
	if err != nil {
		return Resolved{}, kingdom.Delta{}, err
	}
	header := fmt.Sprintf("%s: %s", ev.Name, res.Degree)
	if res.Check != nil {
		header = fmt.Sprintf("%s: %s", ev.Name, res.Check)
	}
	res.Log = append([]string{header}, applied.Log...)
	if res.Ongoing {
		res.Log = append(res.Log, fmt.Sprintf("%s continues", ev.Name))
	}
	return res, applied.Delta, nil
}
