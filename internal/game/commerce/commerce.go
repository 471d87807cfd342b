// Package commerce prices and resolves commodity trades.
package commerce

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/check"
	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// Direction is buy or sell.
type Direction string

const (
	Buy  Direction = "buy"
	Sell Direction = "sell"
)

// ActivityID names trading for item-bonus purposes.
const ActivityID = "trade_commodities"

// Trade is one requested exchange.
type Trade struct {
	Direction Direction         `json:"direction"`
	Commodity kingdom.Commodity `json:"commodity"`
	Amount    int               `json:"amount"`
}

// Outcome is the proposed result of a trade.
type Outcome struct {
	State     *kingdom.Kingdom `json:"-"`
	Trade     Trade            `json:"trade"`
	Quantity  int              `json:"quantity"`
	RP        int              `json:"rp"`
	Degree    ruleset.Degree   `json:"degree"`
	Breakdown check.Breakdown  `json:"breakdown"`
	Check     check.Result     `json:"check"`
	Log       []string         `json:"log"`
	Delta     kingdom.Delta    `json:"delta"`
}

// Resolver prices and executes trades.
type Resolver struct {
	tables *ruleset.Tables
	calc   *check.Calculator
	logger *zap.Logger
}

// NewResolver returns a Resolver.
//
// Precondition: every argument must be non-nil.
func NewResolver(tables *ruleset.Tables, calc *check.Calculator, logger *zap.Logger) *Resolver {
	if tables == nil || calc == nil || logger == nil {
		panic("commerce.NewResolver: precondition violated: tables, calc and logger must be non-nil")
	}
	return &Resolver{tables: tables, calc: calc, logger: logger}
}

// Price returns the RP value of amount units at rate, rounded in the
// kingdom's disfavour: sales round down and purchases round up.
func (r *Resolver) Price(dir Direction, c kingdom.Commodity, amount int, rate float64) int {
	base := float64(r.tables.CommodityValue[c] * amount)
	if dir == Sell {
		return int(math.Floor(base * rate))
	}
	return int(math.Ceil(base * rate))
}

// Estimate returns the RP a trade would yield or cost at the neutral rate.
func (r *Resolver) Estimate(t Trade) (int, error) {
	if err := r.validate(t); err != nil {
		return 0, err
	}
	return r.Price(t.Direction, t.Commodity, t.Amount, 1.0), nil
}

func (r *Resolver) validate(t Trade) error {
	if t.Direction != Buy && t.Direction != Sell {
		return failure.New(failure.InvalidInput, "unknown trade direction %q", t.Direction)
	}
	if !t.Commodity.Valid() {
		return failure.New(failure.InvalidInput, "unknown commodity %q", t.Commodity)
	}
	if t.Amount <= 0 {
		return failure.New(failure.InvalidInput, "trade amount must be positive, got %d", t.Amount)
	}
	return nil
}

// Execute resolves t against k, rolling the Trade check from src.
//
// Postcondition: k is unchanged; on error no state is produced.
func (r *Resolver) Execute(k *kingdom.Kingdom, t Trade, src dice.Source) (Outcome, error) {
	if err := r.validate(t); err != nil {
		return Outcome{}, err
	}
	stock := k.Commodities[t.Commodity]
	switch t.Direction {
	case Sell:
		if t.Amount > stock.Amount {
			return Outcome{}, failure.New(failure.InsufficientStock, "cannot sell %d %s, have %d", t.Amount, t.Commodity, stock.Amount)
		}
	case Buy:
		if est := r.Price(Buy, t.Commodity, t.Amount, 1.0); est > k.RP {
			return Outcome{}, failure.New(failure.InsufficientFunds, "%d %s costs about %d RP, have %d", t.Amount, t.Commodity, est, k.RP)
		}
		if stock.Amount+t.Amount > stock.Capacity {
			return Outcome{}, failure.New(failure.InvalidInput, "cannot store %d more %s (%d/%d)", t.Amount, t.Commodity, stock.Amount, stock.Capacity)
		}
	}

	b, err := r.calc.Compute(k, string(kingdom.Trade), ActivityID)
	if err != nil {
		return Outcome{}, err
	}
	res := check.Roll(src, b, r.calc.ControlDC(k))

	next := k.Clone()
	out := Outcome{Trade: t, Degree: res.Degree, Breakdown: b, Check: res, Delta: kingdom.NewDelta()}
	switch t.Direction {
	case Sell:
		rate := r.tables.SellRates.For(res.Degree)
		out.Quantity = t.Amount
		out.RP = r.Price(Sell, t.Commodity, t.Amount, rate)
		next.AddCommodity(t.Commodity, -t.Amount)
		next.RP += out.RP
		out.Delta.Commodities[t.Commodity] = -t.Amount
		out.Delta.RP = out.RP
		out.Log = append(out.Log, fmt.Sprintf("Sold %d %s for %d RP (%s, x%.2f)", t.Amount, t.Commodity, out.RP, res.Degree, rate))
	case Buy:
		rate := r.tables.BuyRates.For(res.Degree)
		q := t.Amount
		for q > 0 && r.Price(Buy, t.Commodity, q, rate) > k.RP {
			q--
		}
		out.Quantity = q
		out.RP = r.Price(Buy, t.Commodity, q, rate)
		next.AddCommodity(t.Commodity, q)
		next.RP -= out.RP
		out.Delta.Commodities[t.Commodity] = q
		out.Delta.RP = -out.RP
		line := fmt.Sprintf("Bought %d %s for %d RP (%s, x%.2f)", q, t.Commodity, out.RP, res.Degree, rate)
		if q < t.Amount {
			line += fmt.Sprintf("; could only afford %d of %d", q, t.Amount)
		}
		out.Log = append(out.Log, line)
	}
	if res.Degree == ruleset.CriticalFailure {
		next.AddUnrest(1)
		out.Delta.Unrest = 1
		out.Log = append(out.Log, "Unrest +1 from a disastrous deal")
	}
	out.State = next
	out.Delta = out.Delta.Normalized()

	r.logger.Debug("trade resolved",
		zap.String("direction", string(t.Direction)),
		zap.String("commodity", string(t.Commodity)),
		zap.Int("quantity", out.Quantity),
		zap.Int("rp", out.RP),
		zap.Stringer("degree", res.Degree),
	)
	return out, nil
}
