package turn

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
)

// AssignLeader seats name in role, optionally investing them. An empty name
// vacates the role. Leadership changes happen at the start of the turn,
// before upkeep counts vacancies.
//
// Precondition: k is in its upkeep phase and upkeep has not yet run.
// Postcondition: k is unchanged; State holds exactly one leader for role.
func (o *Orchestrator) AssignLeader(k *kingdom.Kingdom, role kingdom.Role, name string, invested bool) (Outcome, error) {
	if err := requirePhase(k, kingdom.PhaseUpkeep); err != nil {
		return Outcome{}, err
	}
	if !slices.Contains(kingdom.RequiredRoles, role) {
		return Outcome{}, failure.New(failure.InvalidInput, "unknown leadership role %q", role)
	}
	name = strings.TrimSpace(name)
	if name == "" && invested {
		return Outcome{}, failure.New(failure.InvalidInput, "a vacant %s cannot be invested", role)
	}

	next := k.Clone()
	seat := kingdom.Leader{Role: role, Name: name, Invested: invested, Vacant: name == ""}
	i := slices.IndexFunc(next.Leaders, func(l kingdom.Leader) bool { return l.Role == role })
	if i < 0 {
		next.Leaders = append(next.Leaders, seat)
	} else {
		next.Leaders[i] = seat
	}

	var line string
	switch {
	case seat.Vacant:
		line = fmt.Sprintf("The %s role is now vacant", role)
	case invested:
		line = fmt.Sprintf("%s is invested as %s", name, role)
	default:
		line = fmt.Sprintf("%s takes the %s role", name, role)
	}
	o.logger.Debug("leader assigned", zap.String("kingdom", k.ID), zap.String("role", string(role)), zap.Bool("vacant", seat.Vacant))
	return Outcome{State: next, Log: []string{line}, Delta: kingdom.NewDelta()}, nil
}
