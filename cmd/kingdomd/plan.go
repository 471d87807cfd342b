package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/kingdom/internal/game/activity"
	"github.com/cory-johannsen/kingdom/internal/game/commerce"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/progression"
)

// Plan lists the player's choices for one kingdom turn.
type Plan struct {
	Leaders    []PlannedLeader   `yaml:"leaders"`
	Trades     []PlannedTrade    `yaml:"trades"`
	Activities []PlannedActivity `yaml:"activities"`
	LevelUp    *PlannedLevelUp   `yaml:"level_up"`
	Train      []kingdom.Skill   `yaml:"train"`
}

// PlannedLeader seats (or, with an empty name, vacates) a leadership role
// before upkeep.
type PlannedLeader struct {
	Role     kingdom.Role `yaml:"role"`
	Name     string       `yaml:"name"`
	Invested bool         `yaml:"invested"`
}

// PlannedTrade is one commerce-phase exchange.
type PlannedTrade struct {
	Direction commerce.Direction `yaml:"direction"`
	Commodity kingdom.Commodity  `yaml:"commodity"`
	Amount    int                `yaml:"amount"`
}

// PlannedActivity is one activity-phase action.
type PlannedActivity struct {
	ID     string            `yaml:"id"`
	Inputs map[string]string `yaml:"inputs"`
}

// PlannedLevelUp holds the choices applied if the kingdom can level up.
type PlannedLevelUp struct {
	Ability kingdom.Ability `yaml:"ability"`
	Skill   kingdom.Skill   `yaml:"skill"`
	Feat    string          `yaml:"feat"`
}

// LoadPlan reads a plan file. An empty path yields an empty plan: the turn
// runs upkeep and events only.
func LoadPlan(path string) (Plan, error) {
	if path == "" {
		return Plan{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("reading plan %s: %w", path, err)
	}
	return ParsePlan(data)
}

// ParsePlan decodes a plan, rejecting unknown fields.
func ParsePlan(data []byte) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Plan{}, fmt.Errorf("parsing plan: %w", err)
	}
	for i, a := range p.Activities {
		if a.ID == "" {
			return Plan{}, fmt.Errorf("activity %d: id must not be empty", i+1)
		}
	}
	return p, nil
}

// CommerceTrades converts the planned trades into commerce requests.
func (p Plan) CommerceTrades() []commerce.Trade {
	out := make([]commerce.Trade, 0, len(p.Trades))
	for _, t := range p.Trades {
		out = append(out, commerce.Trade{Direction: t.Direction, Commodity: t.Commodity, Amount: t.Amount})
	}
	return out
}

// ActivityInputs returns a planned activity's inputs in executor form.
func (a PlannedActivity) ActivityInputs() activity.Inputs {
	return activity.Inputs(a.Inputs)
}

// Choice converts the planned level-up into progression choices.
func (l PlannedLevelUp) Choice() progression.Choice {
	return progression.Choice{Ability: l.Ability, Skill: l.Skill, Feat: l.Feat}
}
