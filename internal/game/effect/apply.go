package effect

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

// Target carries the resolved inputs effects act on. Fields an effect
// needs but the target lacks make Apply fail with INVALID_INPUT.
type Target struct {
	Hex            *kingdom.Coord
	SettlementID   string
	SettlementName string
	Structure      *ruleset.Structure
	// Lot is the requested first lot for a structure; nil picks the first free lot.
	Lot       *int
	WorkSite  kingdom.WorkSite
	Commodity kingdom.Commodity
}

// Result is what applying a list of effects did.
type Result struct {
	// Log has one line per applied effect.
	Log   []string
	Delta kingdom.Delta
}

// Applier applies compiled effects to a kingdom.
type Applier struct {
	tables *ruleset.Tables
	guard  ruleset.Guard
	logger *zap.Logger
	newID  func() string
}

// NewApplier returns an Applier.
//
// Precondition: tables and logger must be non-nil.
func NewApplier(tables *ruleset.Tables, guard ruleset.Guard, logger *zap.Logger) *Applier {
	if tables == nil || logger == nil {
		panic("effect.NewApplier: precondition violated: tables and logger must be non-nil")
	}
	return &Applier{tables: tables, guard: guard, logger: logger, newID: uuid.NewString}
}

// Guard returns the corruption guard the applier reports to.
func (a *Applier) Guard() ruleset.Guard { return a.guard }

// Apply applies effects in order to k, which the caller owns and discards
// on error. Dice amounts are rolled from src.
//
// Postcondition: on success Result.Delta equals kingdom.Diff of k before and after,
// restricted to the fields a Delta tracks.
func (a *Applier) Apply(k *kingdom.Kingdom, effects []Effect, t Target, src dice.Source) (Result, error) {
	res := Result{Delta: kingdom.NewDelta()}
	for _, e := range effects {
		line, err := a.apply(k, e, t, src, &res.Delta)
		if err != nil {
			return Result{}, err
		}
		if line != "" {
			res.Log = append(res.Log, line)
		}
	}
	res.Delta = res.Delta.Normalized()
	return res, nil
}

func (a *Applier) apply(k *kingdom.Kingdom, e Effect, t Target, src dice.Source, d *kingdom.Delta) (string, error) {
	switch e := e.(type) {
	case RP:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		applied := floorAdd(&k.RP, n)
		d.RP += applied
		return fmt.Sprintf("RP %+d (now %d)", applied, k.RP), nil

	case Commodity:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		applied := k.AddCommodity(e.Commodity, n)
		d.Commodities[e.Commodity] += applied
		line := fmt.Sprintf("%s %+d (now %d)", e.Commodity, applied, k.Commodities[e.Commodity].Amount)
		if applied != n {
			line += fmt.Sprintf(", %d lost to capacity", n-applied)
		}
		return line, nil

	case Unrest:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		before := k.Unrest
		k.AddUnrest(n)
		d.Unrest += k.Unrest - before
		return fmt.Sprintf("Unrest %+d (now %d)", k.Unrest-before, k.Unrest), nil

	case Ruin:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		before := k.Ruins[e.Ruin].Score
		k.AddRuin(e.Ruin, n)
		after := k.Ruins[e.Ruin].Score
		d.Ruin[e.Ruin] += after - before
		return fmt.Sprintf("%s %+d (now %d)", e.Ruin, after-before, after), nil

	case Fame:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		applied := floorAdd(&k.Fame, n)
		d.Fame += applied
		return fmt.Sprintf("Fame %+d (now %d)", applied, k.Fame), nil

	case Infamy:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		applied := floorAdd(&k.Infamy, n)
		d.Infamy += applied
		return fmt.Sprintf("Infamy %+d (now %d)", applied, k.Infamy), nil

	case XP:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		applied := floorAdd(&k.XP, n)
		d.XP += applied
		return fmt.Sprintf("XP %+d (now %d)", applied, k.XP), nil

	case ClaimHex:
		h, err := targetHex(k, t)
		if err != nil {
			return "", err
		}
		if h.Status == kingdom.Claimed {
			return fmt.Sprintf("Hex %s already claimed", h.Coord), nil
		}
		h.Status = kingdom.Claimed
		d.HexesClaimed = append(d.HexesClaimed, h.Coord)
		return fmt.Sprintf("Claimed hex %s", h.Coord), nil

	case AbandonHex:
		h, err := targetHex(k, t)
		if err != nil {
			return "", err
		}
		if h.Status != kingdom.Claimed {
			return fmt.Sprintf("Hex %s is not claimed", h.Coord), nil
		}
		if h.SettlementID != "" {
			return "", failure.New(failure.InvalidInput, "hex %s holds a settlement and cannot be abandoned", h.Coord)
		}
		h.Status = kingdom.Explored
		h.WorkSite = kingdom.NoWorkSite
		h.BonusProduction = false
		h.Road = false
		d.HexesAbandoned = append(d.HexesAbandoned, h.Coord)
		return fmt.Sprintf("Abandoned hex %s", h.Coord), nil

	case ExploreHex:
		h, err := targetHex(k, t)
		if err != nil {
			return "", err
		}
		if h.Status == kingdom.Unexplored {
			h.Status = kingdom.Explored
		}
		return fmt.Sprintf("Explored hex %s (%s)", h.Coord, h.Terrain), nil

	case EstablishWorkSite:
		h, err := targetHex(k, t)
		if err != nil {
			return "", err
		}
		site := e.Site
		if site == kingdom.NoWorkSite {
			site = t.WorkSite
		}
		if _, ok := site.Produces(); !ok {
			return "", failure.New(failure.InvalidInput, "unknown work site %q", site)
		}
		h.WorkSite = site
		h.BonusProduction = e.Bonus
		line := fmt.Sprintf("Established %s on hex %s", site, h.Coord)
		if e.Bonus {
			line += " with bonus production"
		}
		return line, nil

	case BuildRoad:
		h, err := targetHex(k, t)
		if err != nil {
			return "", err
		}
		h.Road = true
		return fmt.Sprintf("Built road on hex %s", h.Coord), nil

	case FortifyHex:
		h, err := targetHex(k, t)
		if err != nil {
			return "", err
		}
		h.Fortified = true
		return fmt.Sprintf("Fortified hex %s", h.Coord), nil

	case ClearHazard:
		h, err := targetHex(k, t)
		if err != nil {
			return "", err
		}
		h.Hazard = false
		return fmt.Sprintf("Cleared hazard from hex %s", h.Coord), nil

	case FoundSettlement:
		return a.foundSettlement(k, t)

	case RelocateCapital:
		s := k.Settlement(t.SettlementID)
		if s == nil {
			return "", failure.New(failure.InvalidInput, "no settlement selected")
		}
		for i := range k.Settlements {
			k.Settlements[i].Capital = false
		}
		s.Capital = true
		return fmt.Sprintf("Capital relocated to %s", s.Name), nil

	case BuildStructure:
		return a.buildStructure(k, t, d)

	case DemolishStructure:
		s := k.Settlement(t.SettlementID)
		if s == nil || t.Structure == nil {
			return "", failure.New(failure.InvalidInput, "demolition needs a settlement and a structure")
		}
		if !s.Remove(t.Structure.ID) {
			return "", failure.New(failure.InvalidInput, "%s has no %s", s.Name, t.Structure.Name)
		}
		d.StructuresDemolished = append(d.StructuresDemolished, t.Structure.ID)
		return fmt.Sprintf("Demolished %s in %s", t.Structure.Name, s.Name), nil

	case BonusDice:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		k.BonusDice += n
		return fmt.Sprintf("Resource dice next upkeep %+d", n), nil

	case CircumstanceBonus:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		applied := floorAdd(&k.CircumstanceBonus, n)
		return fmt.Sprintf("Circumstance bonus %+d (now %d)", applied, k.CircumstanceBonus), nil

	case CircumstancePenalty:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		applied := floorAdd(&k.CircumstancePenalty, n)
		return fmt.Sprintf("Circumstance penalty %+d (now %d)", applied, k.CircumstancePenalty), nil

	case Special:
		n, err := a.roll(e.Amount, src)
		if err != nil {
			return "", err
		}
		if k.Specials == nil {
			k.Specials = make(map[string]int)
		}
		k.Specials[e.ID] += n
		if k.Specials[e.ID] == 0 {
			delete(k.Specials, e.ID)
		}
		if e.Text != "" {
			return e.Text, nil
		}
		return fmt.Sprintf("Special %s %+d", e.ID, n), nil
	}

	a.guard.Corrupt("unhandled effect %T", e)
	return "", nil
}

func (a *Applier) roll(amount ruleset.Amount, src dice.Source) (int, error) {
	n, err := amount.Resolve(src)
	if err != nil {
		// Amounts are validated at load time, so this is a corrupt catalog.
		a.guard.Corrupt("amount %s: %v", amount, err)
		return 0, nil
	}
	return n, nil
}

// floorAdd adds n to *v without taking it below zero and returns the change.
func floorAdd(v *int, n int) int {
	before := *v
	*v += n
	if *v < 0 {
		*v = 0
	}
	return *v - before
}

func targetHex(k *kingdom.Kingdom, t Target) (*kingdom.Hex, error) {
	if t.Hex == nil {
		return nil, failure.New(failure.InvalidInput, "no hex selected")
	}
	h := k.Hex(*t.Hex)
	if h == nil {
		return nil, failure.New(failure.InvalidInput, "hex %s is not on the map", *t.Hex)
	}
	return h, nil
}

func (a *Applier) foundSettlement(k *kingdom.Kingdom, t Target) (string, error) {
	h, err := targetHex(k, t)
	if err != nil {
		return "", err
	}
	if t.SettlementName == "" {
		return "", failure.New(failure.InvalidInput, "a settlement needs a name")
	}
	if k.SettlementByName(t.SettlementName) != nil {
		return "", failure.New(failure.InvalidInput, "a settlement named %q already exists", t.SettlementName)
	}
	if h.SettlementID != "" {
		return "", failure.New(failure.InvalidInput, "hex %s already holds a settlement", h.Coord)
	}
	s := kingdom.Settlement{
		ID:            a.newID(),
		Name:          t.SettlementName,
		Capital:       k.Capital() == nil,
		Hex:           h.Coord,
		WaterAdjacent: nearWater(k, h.Coord),
	}
	h.SettlementID = s.ID
	k.Settlements = append(k.Settlements, s)
	line := fmt.Sprintf("Founded %s on hex %s", s.Name, h.Coord)
	if s.Capital {
		line += " as the capital"
	}
	return line, nil
}

// nearWater reports whether c or any neighbour is a lake.
func nearWater(k *kingdom.Kingdom, c kingdom.Coord) bool {
	if h := k.Hex(c); h != nil && h.Terrain == kingdom.Lake {
		return true
	}
	for _, n := range c.Neighbors() {
		if h := k.Hex(n); h != nil && h.Terrain == kingdom.Lake {
			return true
		}
	}
	return false
}

func (a *Applier) buildStructure(k *kingdom.Kingdom, t Target, d *kingdom.Delta) (string, error) {
	s := k.Settlement(t.SettlementID)
	if s == nil || t.Structure == nil {
		return "", failure.New(failure.InvalidInput, "construction needs a settlement and a structure")
	}
	def := t.Structure
	lot, err := a.Placement(k, s, def, t.Lot)
	if err != nil {
		return "", err
	}
	if err := CanAfford(k, def.Cost, 0); err != nil {
		return "", err
	}

	k.RP -= def.Cost.RP
	d.RP -= def.Cost.RP
	for _, c := range kingdom.Commodities {
		n := def.Cost.Commodities[c]
		if n == 0 {
			continue
		}
		d.Commodities[c] += k.AddCommodity(c, -n)
	}
	s.Structures = append(s.Structures, kingdom.Placement{StructureID: def.ID, Lot: lot, Footprint: def.Lots})
	d.StructuresBuilt = append(d.StructuresBuilt, def.ID)
	a.logger.Debug("structure built",
		zap.String("settlement", s.Name),
		zap.String("structure", def.ID),
		zap.Int("lot", lot),
	)
	return fmt.Sprintf("Built %s in %s at lot %d", def.Name, s.Name, lot), nil
}

// Placement returns the lot def would occupy in s: the requested lot when
// given, else the first free lot. Settlements may grow one block at a time.
//
// Postcondition: fails with INVALID_INPUT when the structure cannot be placed
// or its level exceeds the kingdom's.
func (a *Applier) Placement(k *kingdom.Kingdom, s *kingdom.Settlement, def *ruleset.Structure, requested *int) (int, error) {
	if def.Level > k.Level {
		return 0, failure.New(failure.InvalidInput, "%s requires kingdom level %d", def.Name, def.Level)
	}
	maxBlocks := a.tables.GrowthBlocks(s.Blocks())
	if requested != nil {
		if !s.CanPlace(*requested, def.Lots, maxBlocks) {
			return 0, failure.New(failure.InvalidInput, "%s does not fit at lot %d in %s", def.Name, *requested, s.Name)
		}
		return *requested, nil
	}
	lot, ok := s.FirstFreeLot(def.Lots, maxBlocks)
	if !ok {
		return 0, failure.New(failure.InvalidInput, "%s has no room for %s", s.Name, def.Name)
	}
	return lot, nil
}

// CanAfford reports whether k can pay cost on top of extraRP already committed.
func CanAfford(k *kingdom.Kingdom, cost ruleset.Cost, extraRP int) error {
	if need := cost.RP + extraRP; need > k.RP {
		return failure.New(failure.InsufficientResources, "needs %d RP, have %d", need, k.RP)
	}
	for _, c := range kingdom.Commodities {
		if need := cost.Commodities[c]; need > k.Commodities[c].Amount {
			return failure.New(failure.InsufficientResources, "needs %d %s, have %d", need, c, k.Commodities[c].Amount)
		}
	}
	return nil
}
