package ruleset_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/game/ruleset"
)

const contentRoot = "../../../content"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadStructures_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mill.yaml"), `
id: mill
name: Mill
level: 2
lots: 1
cost:
  rp: 6
  commodities: {lumber: 2, stone: 1}
consumption_reduction: 1
requires_water: true
item_bonus:
  value: 1
  activities: [go_fishing]
  skills: [boating]
`)
	structures, err := ruleset.LoadStructures(dir)
	require.NoError(t, err)
	require.Len(t, structures, 1)
	s := structures[0]
	assert.Equal(t, "mill", s.ID)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 6, s.Cost.RP)
	assert.Equal(t, 2, s.Cost.Commodities[kingdom.Lumber])
	assert.Equal(t, 1, s.ConsumptionReduction)
	assert.True(t, s.RequiresWater)
	require.NotNil(t, s.ItemBonus)
	assert.Equal(t, []string{"go_fishing"}, s.ItemBonus.Activities)
	assert.Equal(t, []kingdom.Skill{kingdom.Boating}, s.ItemBonus.Skills)
}

func TestLoadActivities_ParsesOutcomesAndAmounts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "quell.yaml"), `
id: quell_unrest
name: Quell Unrest
category: leadership
skill: intrigue
inputs: [hex]
requires:
  hex_status: [claimed]
  adjacent_to_claimed: true
outcomes:
  critical_success:
    - {type: unrest, amount: -1d6}
  success:
    - {type: unrest, amount: -2}
`)
	activities, err := ruleset.LoadActivities(dir)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	a := activities[0]
	assert.Equal(t, kingdom.Leadership, a.Category)
	assert.True(t, a.HasCheck())
	assert.Equal(t, []ruleset.InputKind{ruleset.InputHex}, a.Inputs)
	assert.Equal(t, []kingdom.HexStatus{kingdom.Claimed}, a.Requires.HexStatus)
	assert.True(t, a.Requires.AdjacentToClaimed)
	require.Len(t, a.Outcomes.For(ruleset.CriticalSuccess), 1)
	assert.Equal(t, "-1d6", a.Outcomes.CriticalSuccess[0].Amount.Dice)
	assert.Equal(t, -2, a.Outcomes.Success[0].Amount.Flat)
	assert.Empty(t, a.Outcomes.For(ruleset.Failure))
}

func TestLoadActivities_RejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `
id: bad
name: Bad
category: region
rp_costs: 2
`)
	_, err := ruleset.LoadActivities(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rp_costs")
}

func TestLoadActivities_RejectsMalformedDice(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.yaml"), `
id: bad
name: Bad
category: region
outcomes:
  success:
    - {type: rp, amount: lots}
`)
	_, err := ruleset.LoadActivities(dir)
	require.Error(t, err)
}

func TestLoadStructures_EmptyDir(t *testing.T) {
	structures, err := ruleset.LoadStructures(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, structures)
}

func TestLoadStructures_MissingDir(t *testing.T) {
	_, err := ruleset.LoadStructures(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadCatalog_ShippedContent(t *testing.T) {
	cat, err := ruleset.LoadCatalog(contentRoot)
	require.NoError(t, err)

	assert.Equal(t, 20, cat.Tables.MaxLevel)
	assert.Len(t, cat.Tables.Skills, 16)

	_, ok := cat.Activity("claim_hex")
	assert.True(t, ok)
	_, ok = cat.Structure("town_hall")
	assert.True(t, ok)
	f, ok := cat.Feat("pull_together")
	require.True(t, ok)
	assert.Equal(t, "cooperative_leadership", f.Prerequisite)
	assert.NotEmpty(t, cat.Events())
	assert.NotEmpty(t, cat.Milestones())

	require.NotNil(t, cat.Map)
	hexes := cat.Map.NewHexes()
	assert.Len(t, hexes, 36)
	for _, h := range hexes {
		assert.NotEqual(t, kingdom.Claimed, h.Status)
	}
	hexes[0].Status = kingdom.Claimed
	assert.NotEqual(t, kingdom.Claimed, cat.Map.NewHexes()[0].Status, "each call returns a fresh copy")
}

func TestLoadCatalog_OptionalTablesMayBeAbsent(t *testing.T) {
	root := t.TempDir()
	tables, err := os.ReadFile(filepath.Join(contentRoot, ruleset.TablesFile))
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, ruleset.TablesFile), string(tables))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ruleset.StructuresDir), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ruleset.ActivitiesDir), 0755))

	cat, err := ruleset.LoadCatalog(root)
	require.NoError(t, err)
	assert.Empty(t, cat.Events())
	assert.Empty(t, cat.Feats())
	assert.Empty(t, cat.Milestones())
	assert.Nil(t, cat.Map)
	assert.Nil(t, cat.Map.NewHexes())
}

func TestLoadCatalog_MapValidation(t *testing.T) {
	root := t.TempDir()
	tables, err := os.ReadFile(filepath.Join(contentRoot, ruleset.TablesFile))
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, ruleset.TablesFile), string(tables))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ruleset.StructuresDir), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ruleset.ActivitiesDir), 0755))
	writeFile(t, filepath.Join(root, ruleset.MapFile), `
name: Broken
hexes:
  - {col: 0, row: 0, terrain: lava}
  - {col: 1, row: 0, terrain: plains, status: claimed}
  - {col: 1, row: 0, terrain: plains}
`)

	_, err = ruleset.LoadCatalog(root)
	require.ErrorIs(t, err, ruleset.ErrCorrupt)
	assert.Contains(t, err.Error(), "unknown terrain")
	assert.Contains(t, err.Error(), "status must be")
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadCatalog_DanglingReferenceIsCorruption(t *testing.T) {
	root := t.TempDir()
	tables, err := os.ReadFile(filepath.Join(contentRoot, ruleset.TablesFile))
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, ruleset.TablesFile), string(tables))
	writeFile(t, filepath.Join(root, ruleset.StructuresDir, "shrine.yaml"), `
id: shrine
name: Shrine
level: 1
lots: 1
item_bonus:
  value: 1
  activities: [celebrate_holiday]
`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ruleset.ActivitiesDir), 0755))

	_, err = ruleset.LoadCatalog(root)
	require.ErrorIs(t, err, ruleset.ErrCorrupt)
	assert.Contains(t, err.Error(), "celebrate_holiday")
}
