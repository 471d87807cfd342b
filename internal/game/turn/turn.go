// Package turn drives the kingdom turn through its fixed phase order:
// upkeep, commerce, activity, event, then advancement to the next month.
package turn

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/activity"
	"github.com/cory-johannsen/kingdom/internal/game/commerce"
	"github.com/cory-johannsen/kingdom/internal/game/event"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/progression"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
	"github.com/cory-johannsen/kingdom/internal/game/structure"
)

// Outcome is the proposed result of a phase operation that carries no
// richer payload.
type Outcome struct {
	State *kingdom.Kingdom `json:"-"`
	Log   []string         `json:"log"`
	Delta kingdom.Delta    `json:"delta"`
}

// Orchestrator sequences the turn phases and enforces their order.
type Orchestrator struct {
	catalog     *ruleset.Catalog
	structures  *structure.Resolver
	activities  *activity.Executor
	commerce    *commerce.Resolver
	events      *event.Resolver
	progression *progression.Engine
	logger      *zap.Logger
	newID       func() string
}

// NewOrchestrator returns an Orchestrator over the given components.
//
// Precondition: every argument must be non-nil.
func NewOrchestrator(
	catalog *ruleset.Catalog,
	structures *structure.Resolver,
	activities *activity.Executor,
	commerceResolver *commerce.Resolver,
	events *event.Resolver,
	prog *progression.Engine,
	logger *zap.Logger,
) *Orchestrator {
	if catalog == nil || structures == nil || activities == nil || commerceResolver == nil ||
		events == nil || prog == nil || logger == nil {
		panic("turn.NewOrchestrator: precondition violated: all dependencies must be non-nil")
	}
	return &Orchestrator{
		catalog:     catalog,
		structures:  structures,
		activities:  activities,
		commerce:    commerceResolver,
		events:      events,
		progression: prog,
		logger:      logger,
		newID:       uuid.NewString,
	}
}

// requirePhase fails with InvalidPhase unless k is positioned at p and p
// has not yet completed this turn.
func requirePhase(k *kingdom.Kingdom, p kingdom.Phase) error {
	if k.Turn.Completed[p] {
		return failure.New(failure.InvalidPhase, "the %s phase has already been completed this turn", p)
	}
	if k.Turn.Phase != p {
		return failure.New(failure.InvalidPhase, "cannot run %s during the %s phase", p, k.Turn.Phase)
	}
	return nil
}

// complete marks p done and moves k to the following phase. The event phase
// is last; the turn then waits for AdvanceTurn.
func complete(k *kingdom.Kingdom, p kingdom.Phase) {
	if k.Turn.Completed == nil {
		k.Turn.Completed = make(map[kingdom.Phase]bool, len(kingdom.Phases))
	}
	k.Turn.Completed[p] = true
	for i, phase := range kingdom.Phases {
		if phase == p && i+1 < len(kingdom.Phases) {
			k.Turn.Phase = kingdom.Phases[i+1]
		}
	}
}

// EndActivityPhase closes the activity phase.
func (o *Orchestrator) EndActivityPhase(k *kingdom.Kingdom) (Outcome, error) {
	if err := requirePhase(k, kingdom.PhaseActivity); err != nil {
		return Outcome{}, err
	}
	next := k.Clone()
	complete(next, kingdom.PhaseActivity)
	return Outcome{State: next, Log: []string{"Activity phase ended"}, Delta: kingdom.NewDelta()}, nil
}

// AdvanceTurn freezes the finished turn into history, converts leftover RP
// into XP and starts the next month at the upkeep phase.
//
// Precondition: the event phase has completed.
// Postcondition: k is unchanged; State.Turn.Turn == k.Turn.Turn+1 and State.RP == 0.
func (o *Orchestrator) AdvanceTurn(k *kingdom.Kingdom) (Outcome, error) {
	if !k.Turn.Completed[kingdom.PhaseEvent] {
		return Outcome{}, failure.New(failure.InvalidPhase, "the turn cannot advance before the event phase completes")
	}
	next := k.Clone()

	xp := min(next.RP, o.catalog.Tables.RPToXPCap)
	if xp < 0 {
		xp = 0
	}
	closing := kingdom.NewDelta()
	closing.RP = -next.RP
	closing.XP = xp
	log := []string{fmt.Sprintf("%d unspent RP converted to %d XP", next.RP, xp)}
	next.XP += xp
	next.RP = 0

	prev := k.Turn
	next.History = append(next.History, kingdom.HistoryEntry{
		ID:         o.newID(),
		Turn:       prev.Turn,
		Month:      kingdom.MonthName(prev.Month),
		Year:       prev.Year,
		Delta:      prev.Delta.Add(closing).Normalized(),
		Activities: next.Turn.Activities,
		Events:     next.Turn.Events,
	})
	month, year := kingdom.NextMonth(prev.Month, prev.Year)
	next.Turn = kingdom.NewTurnState(prev.Turn+1, month, year)
	log = append(log, fmt.Sprintf("Turn %d begins: %s %d", next.Turn.Turn, kingdom.MonthName(month), year))

	o.logger.Info("turn advanced",
		zap.String("kingdom", k.ID),
		zap.Int("turn", next.Turn.Turn),
		zap.String("month", kingdom.MonthName(month)),
		zap.Int("year", year),
		zap.Int("xp_from_rp", xp),
	)
	return Outcome{State: next, Log: log, Delta: closing.Normalized()}, nil
}
