package turn

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/activity"
	"github.com/cory-johannsen/kingdom/internal/game/check"
	"github.com/cory-johannsen/kingdom/internal/game/commerce"
	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/effect"
	"github.com/cory-johannsen/kingdom/internal/game/event"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/progression"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
	"github.com/cory-johannsen/kingdom/internal/game/structure"
	"github.com/cory-johannsen/kingdom/internal/scripting"
)

// Config tunes engine behaviour.
type Config struct {
	// Strict panics on catalog corruption instead of logging and continuing.
	Strict bool
	// EventChance is the base monthly event probability.
	EventChance float64
	// EventChanceStep raises EventChance for each quiet month.
	EventChanceStep float64
	// ScriptInstructionLimit bounds prerequisite scripts; zero uses the
	// scripting default.
	ScriptInstructionLimit int
}

// Engine is the single entry point the presentation layer drives. Every
// operation takes a kingdom and returns a proposed new one; the caller
// commits by replacing its copy.
type Engine struct {
	catalog     *ruleset.Catalog
	calc        *check.Calculator
	structures  *structure.Resolver
	progression *progression.Engine
	turns       *Orchestrator
}

// NewEngine wires every rules component over catalog.
//
// Precondition: catalog and logger must be non-nil.
func NewEngine(catalog *ruleset.Catalog, cfg Config, logger *zap.Logger) *Engine {
	if catalog == nil || logger == nil {
		panic("turn.NewEngine: precondition violated: catalog and logger must be non-nil")
	}
	guard := ruleset.NewGuard(logger, cfg.Strict)
	structures := structure.NewResolver(catalog, guard)
	calc := check.NewCalculator(catalog, structures, logger)
	book := effect.NewBook(catalog, guard)
	applier := effect.NewApplier(catalog.Tables, guard, logger)
	executor := activity.NewExecutor(catalog, calc, book, applier, scripting.NewPredicates(cfg.ScriptInstructionLimit, logger), logger)
	trades := commerce.NewResolver(catalog.Tables, calc, logger)
	events := event.NewResolver(catalog, calc, book, applier, event.Config{Chance: cfg.EventChance, Step: cfg.EventChanceStep}, logger)
	prog := progression.NewEngine(catalog, book, applier, logger)
	return &Engine{
		catalog:     catalog,
		calc:        calc,
		structures:  structures,
		progression: prog,
		turns:       NewOrchestrator(catalog, structures, executor, trades, events, prog, logger),
	}
}

// Catalog returns the ruleset the engine was built over.
func (e *Engine) Catalog() *ruleset.Catalog { return e.catalog }

// NewKingdom founds a level-1 kingdom with every skill from the ruleset,
// placed on a fresh copy of the starting map.
func (e *Engine) NewKingdom(name string) *kingdom.Kingdom {
	k := kingdom.New(uuid.NewString(), name, e.catalog.Tables.SkillNames(), e.catalog.Tables.RuinThreshold)
	k.Hexes = e.catalog.Map.NewHexes()
	return k
}

// AssignLeader seats or vacates a leadership role before upkeep.
func (e *Engine) AssignLeader(k *kingdom.Kingdom, role kingdom.Role, name string, invested bool) (Outcome, error) {
	return e.turns.AssignLeader(k, role, name, invested)
}

// RunFullUpkeep runs the upkeep phase.
func (e *Engine) RunFullUpkeep(k *kingdom.Kingdom, src dice.Source) (UpkeepOutcome, error) {
	return e.turns.RunUpkeep(k, src)
}

// TradeCommodities runs the commerce phase with trades.
func (e *Engine) TradeCommodities(k *kingdom.Kingdom, trades []commerce.Trade, src dice.Source) (CommerceOutcome, error) {
	return e.turns.RunCommerce(k, trades, src)
}

// ExecuteActivity runs one activity during the activity phase.
func (e *Engine) ExecuteActivity(k *kingdom.Kingdom, activityID string, in activity.Inputs, src dice.Source) (activity.Outcome, error) {
	return e.turns.RunActivity(k, activityID, in, src)
}

// EndActivityPhase closes the activity phase.
func (e *Engine) EndActivityPhase(k *kingdom.Kingdom) (Outcome, error) {
	return e.turns.EndActivityPhase(k)
}

// RunEventPhase runs the event phase.
func (e *Engine) RunEventPhase(k *kingdom.Kingdom, src dice.Source) (event.Outcome, error) {
	return e.turns.RunEvent(k, src)
}

// AdvanceTurn closes the turn and begins the next month.
func (e *Engine) AdvanceTurn(k *kingdom.Kingdom) (Outcome, error) {
	return e.turns.AdvanceTurn(k)
}

// LeadershipLimit returns the kingdom's current leadership activity cap.
func (e *Engine) LeadershipLimit(k *kingdom.Kingdom) int {
	return e.turns.LeadershipLimit(k)
}

// CheckLevelUp reports level-up eligibility.
func (e *Engine) CheckLevelUp(k *kingdom.Kingdom) progression.Eligibility {
	return e.progression.CheckLevelUp(k)
}

// CheckMilestones lists milestones satisfied but not yet awarded.
func (e *Engine) CheckMilestones(k *kingdom.Kingdom) []*ruleset.Milestone {
	return e.progression.CheckMilestones(k)
}

// ApplyLevelUp advances the kingdom one level and records it in the turn.
func (e *Engine) ApplyLevelUp(k *kingdom.Kingdom, c progression.Choice, src dice.Source) (progression.Outcome, error) {
	return e.turns.LevelUp(k, c, src)
}

// AvailableFeats lists the feats the kingdom could take at level.
func (e *Engine) AvailableFeats(k *kingdom.Kingdom, level int) []*ruleset.Feat {
	return e.progression.AvailableFeats(k, level)
}

// TrainSkillWithRP spends RP to raise a skill one tier. Only allowed during
// the activity phase.
func (e *Engine) TrainSkillWithRP(k *kingdom.Kingdom, skill kingdom.Skill) (progression.Outcome, error) {
	return e.turns.TrainSkill(k, skill)
}

// GetSkillTrainingCost returns the RP to train out of tier current.
func (e *Engine) GetSkillTrainingCost(current kingdom.Proficiency) (int, error) {
	return e.progression.SkillTrainingCost(current)
}

// GetSkillModifierBreakdown itemises the modifier for a skill or ability
// check, optionally for a specific activity's item bonus.
func (e *Engine) GetSkillModifierBreakdown(k *kingdom.Kingdom, target, activityID string) (check.Breakdown, error) {
	return e.calc.Compute(k, target, activityID)
}

// GetItemBonusForActivity returns the best structure item bonus for activityID.
func (e *Engine) GetItemBonusForActivity(k *kingdom.Kingdom, activityID string) int {
	return e.calc.ItemBonus(k, activityID)
}

// GetInvestedLeaderBonus returns the invested-leader status bonus for ability.
func (e *Engine) GetInvestedLeaderBonus(k *kingdom.Kingdom, ability kingdom.Ability) int {
	return e.calc.LeaderBonus(k, ability)
}

// ControlDC returns the kingdom's current control DC.
func (e *Engine) ControlDC(k *kingdom.Kingdom) int {
	return e.calc.ControlDC(k)
}
