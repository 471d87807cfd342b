package ruleset

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/kingdom/internal/game/dice"
)

// Amount is an effect magnitude: either a flat integer or a dice expression
// such as "1d4" or "-1d6", rolled when the effect is applied.
type Amount struct {
	Flat int
	Dice string
}

// Flat returns a fixed Amount.
func Flat(n int) Amount { return Amount{Flat: n} }

// UnmarshalYAML accepts an integer scalar or a dice expression string.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	if n, err := strconv.Atoi(node.Value); err == nil {
		*a = Amount{Flat: n}
		return nil
	}
	if _, _, err := parseSigned(node.Value); err != nil {
		return fmt.Errorf("line %d: amount %q: %w", node.Line, node.Value, err)
	}
	*a = Amount{Dice: node.Value}
	return nil
}

// IsDice reports whether the amount must be rolled.
func (a Amount) IsDice() bool { return a.Dice != "" }

// Resolve returns the concrete value, rolling dice with src when needed.
func (a Amount) Resolve(src dice.Source) (int, error) {
	if a.Dice == "" {
		return a.Flat, nil
	}
	sign, expr, err := parseSigned(a.Dice)
	if err != nil {
		return 0, err
	}
	return sign * dice.Roll(expr, src).Total(), nil
}

// String formats the amount as written in content.
func (a Amount) String() string {
	if a.Dice != "" {
		return a.Dice
	}
	return strconv.Itoa(a.Flat)
}

func parseSigned(s string) (int, dice.Expression, error) {
	s = strings.TrimSpace(s)
	sign := 1
	if strings.HasPrefix(s, "-") {
		sign, s = -1, s[1:]
	}
	expr, err := dice.Parse(s)
	return sign, expr, err
}

// EffectSpec is the catalog form of one kingdom effect. Type selects the
// variant; which of the remaining fields matter depends on Type.
type EffectSpec struct {
	Type      string `yaml:"type"`
	Amount    Amount `yaml:"amount"`
	Commodity string `yaml:"commodity,omitempty"`
	Ruin      string `yaml:"ruin,omitempty"`
	Bonus     bool   `yaml:"bonus,omitempty"`
	ID        string `yaml:"id,omitempty"`
	Text      string `yaml:"text,omitempty"`
}
