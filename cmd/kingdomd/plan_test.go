package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/kingdom/internal/game/commerce"
	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
)

func TestParsePlan(t *testing.T) {
	p, err := ParsePlan([]byte(`
leaders:
  - {role: ruler, name: Jamandi Aldori, invested: true}
trades:
  - {direction: sell, commodity: ore, amount: 2}
activities:
  - id: claim_hex
    inputs: {hex: "1,2"}
  - id: celebrate_holiday
level_up: {ability: economy, skill: trade, feat: civil_service}
train: [agriculture]
`))
	require.NoError(t, err)
	require.Len(t, p.Leaders, 1)
	assert.Equal(t, PlannedLeader{Role: kingdom.Ruler, Name: "Jamandi Aldori", Invested: true}, p.Leaders[0])
	require.Len(t, p.CommerceTrades(), 1)
	assert.Equal(t, commerce.Trade{Direction: commerce.Sell, Commodity: kingdom.Ore, Amount: 2}, p.CommerceTrades()[0])
	require.Len(t, p.Activities, 2)
	assert.Equal(t, "1,2", p.Activities[0].ActivityInputs()["hex"])
	assert.Nil(t, p.Activities[1].ActivityInputs())
	require.NotNil(t, p.LevelUp)
	assert.Equal(t, "civil_service", p.LevelUp.Choice().Feat)
	assert.Equal(t, []kingdom.Skill{kingdom.Agriculture}, p.Train)
}

func TestParsePlan_Empty(t *testing.T) {
	p, err := ParsePlan(nil)
	require.NoError(t, err)
	assert.Empty(t, p.Activities)

	p, err = LoadPlan("")
	require.NoError(t, err)
	assert.Nil(t, p.LevelUp)
}

func TestParsePlan_Rejects(t *testing.T) {
	_, err := ParsePlan([]byte("activities:\n  - inputs: {hex: \"1,1\"}\n"))
	assert.Error(t, err)
	_, err = ParsePlan([]byte("festivities: true\n"))
	assert.Error(t, err)
}
