package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/turn"
)

// Report collects what happened during one played turn.
type Report struct {
	Turn      int
	Month     string
	Year      int
	Log       []string
	Skipped   []string
	LeveledUp bool
}

// playTurn drives k through every phase of one turn according to p.
//
// Leader assignments, activities and trainings that fail with a domain
// failure are logged and skipped; the turn continues. A commerce failure
// skips the whole trade batch.
//
// Precondition: k must be at the start of its upkeep phase.
// Postcondition: on success the returned kingdom has advanced one turn and k
// is unchanged.
func playTurn(eng *turn.Engine, k *kingdom.Kingdom, p Plan, src dice.Source, logger *zap.Logger) (*kingdom.Kingdom, Report, error) {
	rep := Report{Turn: k.Turn.Turn, Month: kingdom.MonthName(k.Turn.Month), Year: k.Turn.Year}

	cur := k
	for _, l := range p.Leaders {
		out, err := eng.AssignLeader(cur, l.Role, l.Name, l.Invested)
		if err != nil {
			if failure.CodeOf(err) == "" {
				return nil, rep, fmt.Errorf("leader %s: %w", l.Role, err)
			}
			logger.Warn("leader assignment skipped", zap.String("role", string(l.Role)), zap.Error(err))
			rep.Skipped = append(rep.Skipped, fmt.Sprintf("leader %s: %v", l.Role, err))
			continue
		}
		cur = out.State
		rep.Log = append(rep.Log, out.Log...)
	}

	up, err := eng.RunFullUpkeep(cur, src)
	if err != nil {
		return nil, rep, fmt.Errorf("upkeep: %w", err)
	}
	cur = up.State
	rep.Log = append(rep.Log, up.Log...)

	trade, err := eng.TradeCommodities(cur, p.CommerceTrades(), src)
	switch {
	case err == nil:
		cur = trade.State
		rep.Log = append(rep.Log, trade.Log...)
	case failure.CodeOf(err) != "":
		logger.Warn("trade batch rejected", zap.Error(err))
		rep.Skipped = append(rep.Skipped, fmt.Sprintf("trades: %v", err))
		// The batch left the phase open; an empty batch closes it.
		if trade, err = eng.TradeCommodities(cur, nil, src); err != nil {
			return nil, rep, fmt.Errorf("commerce: %w", err)
		}
		cur = trade.State
	default:
		return nil, rep, fmt.Errorf("commerce: %w", err)
	}

	for _, a := range p.Activities {
		out, err := eng.ExecuteActivity(cur, a.ID, a.ActivityInputs(), src)
		if err != nil {
			if failure.CodeOf(err) == "" {
				return nil, rep, fmt.Errorf("activity %s: %w", a.ID, err)
			}
			logger.Warn("activity skipped", zap.String("activity", a.ID), zap.Error(err))
			rep.Skipped = append(rep.Skipped, fmt.Sprintf("%s: %v", a.ID, err))
			continue
		}
		cur = out.State
		rep.Log = append(rep.Log, out.Log...)
	}

	for _, s := range p.Train {
		out, err := eng.TrainSkillWithRP(cur, s)
		if err != nil {
			logger.Warn("training skipped", zap.String("skill", string(s)), zap.Error(err))
			rep.Skipped = append(rep.Skipped, fmt.Sprintf("train %s: %v", s, err))
			continue
		}
		cur = out.State
		rep.Log = append(rep.Log, out.Log...)
	}

	end, err := eng.EndActivityPhase(cur)
	if err != nil {
		return nil, rep, fmt.Errorf("ending activities: %w", err)
	}
	cur = end.State

	ev, err := eng.RunEventPhase(cur, src)
	if err != nil {
		return nil, rep, fmt.Errorf("events: %w", err)
	}
	cur = ev.State
	rep.Log = append(rep.Log, ev.Log...)

	if p.LevelUp != nil && eng.CheckLevelUp(cur).Eligible {
		lvl, err := eng.ApplyLevelUp(cur, p.LevelUp.Choice(), src)
		if err != nil {
			logger.Warn("level up skipped", zap.Error(err))
			rep.Skipped = append(rep.Skipped, fmt.Sprintf("level up: %v", err))
		} else {
			cur = lvl.State
			rep.Log = append(rep.Log, lvl.Log...)
			rep.LeveledUp = true
		}
	}

	adv, err := eng.AdvanceTurn(cur)
	if err != nil {
		return nil, rep, fmt.Errorf("advancing turn: %w", err)
	}
	rep.Log = append(rep.Log, adv.Log...)
	return adv.State, rep, nil
}

// printReport writes a human-readable summary of rep and the resulting kingdom.
func printReport(w io.Writer, k *kingdom.Kingdom, rep Report) {
	fmt.Fprintf(w, "%s: turn %d (%s %d)\n", k.Name, rep.Turn, rep.Month, rep.Year)
	for _, line := range rep.Log {
		fmt.Fprintf(w, "  %s\n", line)
	}
	for _, line := range rep.Skipped {
		fmt.Fprintf(w, "  skipped: %s\n", line)
	}
	if rep.LeveledUp {
		fmt.Fprintf(w, "  level up: now level %d\n", k.Level)
	}
	fmt.Fprintf(w, "level=%d xp=%d rp=%d unrest=%d fame=%d\n", k.Level, k.XP, k.RP, k.Unrest, k.Fame)
}
