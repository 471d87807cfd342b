package activity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/kingdom/internal/game/activity"
	"github.com/cory-johannsen/kingdom/internal/game/check"
	"github.com/cory-johannsen/kingdom/internal/game/dice"
	"github.com/cory-johannsen/kingdom/internal/game/effect"
	"github.com/cory-johannsen/kingdom/internal/game/failure"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
	"github.com/cory-johannsen/kingdom/internal/game/structure"
	"github.com/cory-johannsen/kingdom/internal/scripting"
)

func setup(t *testing.T) (*ruleset.Catalog, *activity.Executor) {
	t.Helper()
	cat, err := ruleset.LoadCatalog("../../../content")
	require.NoError(t, err)
	return cat, newExecutor(cat)
}

func newExecutor(cat *ruleset.Catalog) *activity.Executor {
	logger := zap.NewNop()
	guard := ruleset.NewGuard(logger, true)
	calc := check.NewCalculator(cat, structure.NewResolver(cat, guard), logger)
	return activity.NewExecutor(
		cat,
		calc,
		effect.NewBook(cat, guard),
		effect.NewApplier(cat.Tables, guard, logger),
		scripting.NewPredicates(0, logger),
		logger,
	)
}

// newKingdom returns a kingdom on a 4x4 plains map with 1,1 claimed and a
// settlement on it.
func newKingdom(cat *ruleset.Catalog) *kingdom.Kingdom {
	k := kingdom.New("k1", "Stolen Lands", cat.Tables.SkillNames(), cat.Tables.RuinThreshold)
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			k.Hexes = append(k.Hexes, kingdom.Hex{Coord: kingdom.Coord{Col: col, Row: row}, Terrain: kingdom.Plains, Status: kingdom.Explored})
		}
	}
	home := k.Hex(kingdom.Coord{Col: 1, Row: 1})
	home.Status = kingdom.Claimed
	home.SettlementID = "s1"
	k.Settlements = []kingdom.Settlement{{ID: "s1", Name: "Tuskwater", Capital: true, Hex: home.Coord}}
	for _, c := range kingdom.Commodities {
		k.Commodities[c] = kingdom.Stock{Amount: 4, Capacity: 8}
	}
	k.RP = 10
	return k
}

func TestExecute_UnknownActivity(t *testing.T) {
	cat, x := setup(t)
	_, err := x.Execute(newKingdom(cat), "summon_dragon", nil, dice.NewFixedSource(10))
	assert.True(t, failure.Is(err, failure.UnknownActivity))
}

func TestExecute_UnaffordableLeavesInputUntouched(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	k.RP = 1
	before := k.Clone()

	out, err := x.Execute(k, "capital_investment", nil, dice.NewFixedSource(20))
	assert.True(t, failure.Is(err, failure.InsufficientResources))
	assert.Nil(t, out.State)
	assert.Equal(t, before, k)
}

func TestExecute_MissingInput(t *testing.T) {
	cat, x := setup(t)
	_, err := x.Execute(newKingdom(cat), "claim_hex", activity.Inputs{}, dice.NewFixedSource(10))
	assert.True(t, failure.Is(err, failure.InvalidInput))
	_, err = x.Execute(newKingdom(cat), "claim_hex", activity.Inputs{"hex": "nonsense"}, dice.NewFixedSource(10))
	assert.True(t, failure.Is(err, failure.InvalidInput))
	_, err = x.Execute(newKingdom(cat), "claim_hex", activity.Inputs{"hex": "40,40"}, dice.NewFixedSource(10))
	assert.True(t, failure.Is(err, failure.InvalidInput))
}

func TestExecute_ClaimHexRequiresAdjacency(t *testing.T) {
	cat, x := setup(t)
	_, err := x.Execute(newKingdom(cat), "claim_hex", activity.Inputs{"hex": "3,3"}, dice.NewFixedSource(10))
	require.True(t, failure.Is(err, failure.InvalidInput))
	assert.Contains(t, err.Error(), "does not border")
}

// TestExecute_FirstClaimNeedsNoBorder verifies a kingdom without territory
// may claim or reconnoiter any hex on its map.
func TestExecute_FirstClaimNeedsNoBorder(t *testing.T) {
	cat, x := setup(t)
	k := kingdom.New("k1", "Stolen Lands", cat.Tables.SkillNames(), cat.Tables.RuinThreshold)
	k.Hexes = []kingdom.Hex{
		{Coord: kingdom.Coord{Col: 2, Row: 2}, Terrain: kingdom.Plains, Status: kingdom.Explored},
		{Coord: kingdom.Coord{Col: 0, Row: 0}, Terrain: kingdom.Plains, Status: kingdom.Unexplored},
	}
	k.RP = 10

	out, err := x.Execute(k, "claim_hex", activity.Inputs{"hex": "2,2"}, dice.NewFixedSource(20))
	require.NoError(t, err)
	assert.Equal(t, kingdom.Claimed, out.State.Hex(kingdom.Coord{Col: 2, Row: 2}).Status)
	assert.Equal(t, 1, out.State.ClaimedHexCount())

	claimed := out.State

	out, err = x.Execute(k, "reconnoiter_hex", activity.Inputs{"hex": "0,0"}, dice.NewFixedSource(20))
	require.NoError(t, err)
	assert.Equal(t, kingdom.Explored, out.State.Hex(kingdom.Coord{Col: 0, Row: 0}).Status)

	// Once territory exists the border rule applies again.
	claimed.Hex(kingdom.Coord{Col: 0, Row: 0}).Status = kingdom.Explored
	_, err = x.Execute(claimed, "claim_hex", activity.Inputs{"hex": "0,0"}, dice.NewFixedSource(20))
	require.True(t, failure.Is(err, failure.InvalidInput))
	assert.Contains(t, err.Error(), "does not border")
}

func TestExecute_ClaimHexSuccess(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	before := k.Clone()

	// Control DC 15 with a vacant ruler; modifier 0; roll 17 succeeds.
	out, err := x.Execute(k, "claim_hex", activity.Inputs{"hex": "2,1"}, dice.NewFixedSource(17))
	require.NoError(t, err)
	assert.Equal(t, before, k, "input must not be mutated")
	assert.Equal(t, ruleset.Success, out.Degree)
	require.NotNil(t, out.Check)
	assert.Equal(t, 15, out.Check.DC)
	assert.Equal(t, kingdom.Claimed, out.State.Hex(kingdom.Coord{Col: 2, Row: 1}).Status)
	assert.Equal(t, 9, out.State.RP)
	assert.Equal(t, 1, out.RPCost)
	assert.Len(t, out.Log, 1)
	assert.Equal(t, kingdom.Diff(k, out.State), out.Delta)
}

func TestExecute_CriticalFailureStillPaysCost(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	out, err := x.Execute(k, "claim_hex", activity.Inputs{"hex": "2,1"}, dice.NewFixedSource(1))
	require.NoError(t, err)
	assert.Equal(t, ruleset.CriticalFailure, out.Degree)
	assert.Equal(t, kingdom.Explored, out.State.Hex(kingdom.Coord{Col: 2, Row: 1}).Status)
	assert.Equal(t, 1, out.State.Unrest)
	assert.Equal(t, 9, out.State.RP)
}

func TestExecute_NoSkillAlwaysSucceeds(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	k.Hex(kingdom.Coord{Col: 2, Row: 1}).Status = kingdom.Claimed

	out, err := x.Execute(k, "establish_settlement", activity.Inputs{"hex": "2,1", "settlement_name": "Oleg's"}, dice.NewFixedSource(1))
	require.NoError(t, err)
	assert.Nil(t, out.Check)
	assert.Equal(t, ruleset.Success, out.Degree)
	require.Len(t, out.State.Settlements, 2)
	assert.False(t, out.State.Settlements[1].Capital)
	assert.Equal(t, 5, out.State.RP)
}

func TestExecute_SettlementNameMustBeNonEmpty(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	k.Hex(kingdom.Coord{Col: 2, Row: 1}).Status = kingdom.Claimed
	_, err := x.Execute(k, "establish_settlement", activity.Inputs{"hex": "2,1", "settlement_name": "   "}, dice.NewFixedSource(1))
	assert.True(t, failure.Is(err, failure.InvalidInput))
}

func TestExecute_TerrainPrerequisite(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	h := k.Hex(kingdom.Coord{Col: 2, Row: 1})
	h.Status = kingdom.Claimed
	h.Terrain = kingdom.Forest
	_, err := x.Execute(k, "establish_farmland", activity.Inputs{"hex": "2,1"}, dice.NewFixedSource(15))
	assert.True(t, failure.Is(err, failure.InvalidInput))
}

func TestExecute_ScriptPrerequisite(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	k.Hex(kingdom.Coord{Col: 2, Row: 1}).Status = kingdom.Claimed

	_, err := x.Execute(k, "establish_work_site", activity.Inputs{"hex": "2,1", "work_site": "farm"}, dice.NewFixedSource(15))
	assert.True(t, failure.Is(err, failure.InvalidInput), "farms use establish_farmland")

	out, err := x.Execute(k, "establish_work_site", activity.Inputs{"hex": "2,1", "work_site": "mine"}, dice.NewFixedSource(20))
	require.NoError(t, err)
	h := out.State.Hex(kingdom.Coord{Col: 2, Row: 1})
	assert.Equal(t, kingdom.Mine, h.WorkSite)
	assert.True(t, h.BonusProduction)
}

func TestExecute_BuildStructure(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)

	out, err := x.Execute(k, "build_structure", activity.Inputs{"settlement": "Tuskwater", "structure": "houses"}, dice.NewFixedSource(16))
	require.NoError(t, err)
	assert.Equal(t, ruleset.Success, out.Degree)
	require.Len(t, out.State.Settlements[0].Structures, 1)
	assert.Equal(t, 7, out.State.RP)
	assert.Equal(t, 3, out.State.Commodities[kingdom.Lumber].Amount)
	assert.Equal(t, kingdom.Diff(k, out.State), out.Delta)
}

func TestExecute_BuildStructureUnknown(t *testing.T) {
	cat, x := setup(t)
	_, err := x.Execute(newKingdom(cat), "build_structure", activity.Inputs{"settlement": "s1", "structure": "ziggurat"}, dice.NewFixedSource(16))
	assert.True(t, failure.Is(err, failure.UnknownStructure))
}

func TestExecute_BuildStructureUnaffordableFailsBeforeRolling(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	src := dice.NewFixedSource(16)
	_, err := x.Execute(k, "build_structure", activity.Inputs{"settlement": "s1", "structure": "granary"}, src)
	assert.True(t, failure.Is(err, failure.InsufficientResources))
	assert.Equal(t, 0, src.Drawn())
}

func TestExecute_DemolishRequiresStructure(t *testing.T) {
	cat, x := setup(t)
	_, err := x.Execute(newKingdom(cat), "demolish", activity.Inputs{"settlement": "s1", "structure": "houses"}, dice.NewFixedSource(1))
	assert.True(t, failure.Is(err, failure.InvalidInput))
}

func TestExecute_RelocateCapitalRejectsCurrentCapital(t *testing.T) {
	cat, x := setup(t)
	_, err := x.Execute(newKingdom(cat), "relocate_capital", activity.Inputs{"settlement": "Tuskwater"}, dice.NewFixedSource(20))
	assert.True(t, failure.Is(err, failure.InvalidInput))
}

func TestExecute_DCAdjustment(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	k.RP = 10
	k.Settlements = append(k.Settlements, kingdom.Settlement{ID: "s2", Name: "Oleg's"})
	out, err := x.Execute(k, "relocate_capital", activity.Inputs{"settlement": "Oleg's"}, dice.NewFixedSource(10))
	require.NoError(t, err)
	assert.Equal(t, 17, out.Check.DC)
}

func TestExecute_DiceEffectsDeterministicWithSeed(t *testing.T) {
	cat, x := setup(t)
	k := newKingdom(cat)
	k.Unrest = 6
	a, err := x.Execute(k, "quell_unrest", nil, dice.NewSeededSource(42))
	require.NoError(t, err)
	b, err := x.Execute(k, "quell_unrest", nil, dice.NewSeededSource(42))
	require.NoError(t, err)
	assert.Equal(t, a.State, b.State)
	assert.Equal(t, a.Log, b.Log)
}

func TestExecute_DeltaRoundTrip(t *testing.T) {
	cat, x := setup(t)
	ids := []string{
		"claim_hex", "reconnoiter_hex", "quell_unrest", "celebrate_holiday", "go_fishing",
		"gather_livestock", "request_foreign_aid", "create_masterpiece", "build_roads",
		"fortify_hex", "repair_reputation_crime", "build_structure",
	}
	rapid.Check(t, func(rt *rapid.T) {
		k := newKingdom(cat)
		k.Unrest = rapid.IntRange(0, 12).Draw(rt, "unrest")
		k.Ruins[kingdom.Crime] = kingdom.RuinTrack{Score: rapid.IntRange(0, 3).Draw(rt, "crime"), Threshold: 10}
		k.Hex(kingdom.Coord{Col: 2, Row: 1}).Status = kingdom.Claimed
		k.Hex(kingdom.Coord{Col: 3, Row: 1}).Status = kingdom.Unexplored
		id := rapid.SampledFrom(ids).Draw(rt, "activity")
		in := activity.Inputs{"hex": "2,1", "settlement": "s1", "structure": "houses"}
		switch id {
		case "claim_hex":
			in["hex"] = "2,2"
		case "reconnoiter_hex":
			in["hex"] = "3,1"
		}

		out, err := x.Execute(k, id, in, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		if err != nil {
			rt.Fatalf("%s: %v", id, err)
		}
		if diff := kingdom.Diff(k, out.State); !assert.ObjectsAreEqual(diff, out.Delta) {
			rt.Fatalf("%s: delta %+v != diff %+v", id, out.Delta, diff)
		}
	})
}
