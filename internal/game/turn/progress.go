package turn

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/progression"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// Record IDs used in the turn log for actions that are not catalog activities.
const (
	TrainSkillRecord = "train_skill"
	LevelUpRecord    = "level_up"
)

// TrainSkill spends RP to raise skill one tier during the activity phase.
// Training does not count against any activity category limit.
//
// Postcondition: on success the training is recorded in State.Turn.Activities
// and its Delta is folded into State.Turn.Delta.
func (o *Orchestrator) TrainSkill(k *kingdom.Kingdom, skill kingdom.Skill) (progression.Outcome, error) {
	if err := requirePhase(k, kingdom.PhaseActivity); err != nil {
		return progression.Outcome{}, err
	}
	out, err := o.progression.TrainSkillWithRP(k, skill)
	if err != nil {
		return progression.Outcome{}, err
	}
	record(out.State, TrainSkillRecord, out)
	return out, nil
}

// LevelUp applies a level-up at any point in the turn.
//
// Postcondition: on success the level-up is recorded in State.Turn.Activities
// and its Delta is folded into State.Turn.Delta.
func (o *Orchestrator) LevelUp(k *kingdom.Kingdom, c progression.Choice, src dice.Source) (progression.Outcome, error) {
	out, err := o.progression.ApplyLevelUp(k, c, src)
	if err != nil {
		return progression.Outcome{}, err
	}
	record(out.State, LevelUpRecord, out)
	o.logger.Debug("level up recorded", zap.String("kingdom", k.ID), zap.Int("turn", k.Turn.Turn))
	return out, nil
}

func record(next *kingdom.Kingdom, id string, out progression.Outcome) {
	next.Turn.Activities = append(next.Turn.Activities, kingdom.ActivityRecord{
		ActivityID: id,
		Degree:     ruleset.Success.String(),
		Log:        out.Log,
	})
	next.Turn.Delta = next.Turn.Delta.Add(out.Delta)
}
