package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
	"github.com/cory-johannsen/kingdom/internal/storage/postgres"
	"github.com/cory-johannsen/kingdom/internal/testutil"
)

func setupKingdomRepo(t *testing.T) *postgres.KingdomRepository {
	t.Helper()
	return postgres.NewKingdomRepository(testutil.NewPool(t))
}

func makeKingdom(name string) *kingdom.Kingdom {
	k := kingdom.New(uuid.NewString(), name, []kingdom.Skill{kingdom.Agriculture, kingdom.Trade}, 10)
	k.Skills[kingdom.Trade] = kingdom.Expert
	k.RP = 12
	k.Hexes = []kingdom.Hex{
		{Coord: kingdom.Coord{Col: 0, Row: 0}, Terrain: kingdom.Plains, Status: kingdom.Claimed, WorkSite: kingdom.Farm},
		{Coord: kingdom.Coord{Col: 1, Row: 0}, Terrain: kingdom.Forest, Status: kingdom.Explored},
	}
	k.Settlements = []kingdom.Settlement{{
		ID: uuid.NewString(), Name: "Tuskwater", Capital: true,
		Structures: []kingdom.Placement{{StructureID: "houses", Lot: 0, Footprint: 1}},
	}}
	return k
}

func TestKingdomRepository_CreateAndGet(t *testing.T) {
	repo := setupKingdomRepo(t)
	ctx := context.Background()
	k := makeKingdom("Stolen Lands")

	require.NoError(t, repo.Create(ctx, k))
	got, err := repo.Get(ctx, k.ID)
	require.NoError(t, err)

	assert.Equal(t, k.Name, got.Name)
	assert.Equal(t, kingdom.Expert, got.Skills[kingdom.Trade])
	assert.Equal(t, 12, got.RP)
	assert.Equal(t, k.Hexes, got.Hexes)
	assert.Equal(t, k.Settlements, got.Settlements)
	assert.Equal(t, kingdom.PhaseUpkeep, got.Turn.Phase)
	assert.Empty(t, got.History)
}

func TestKingdomRepository_CreateDuplicate(t *testing.T) {
	repo := setupKingdomRepo(t)
	ctx := context.Background()
	k := makeKingdom("Stolen Lands")
	require.NoError(t, repo.Create(ctx, k))
	assert.ErrorIs(t, repo.Create(ctx, k), postgres.ErrKingdomExists)
}

func TestKingdomRepository_GetMissing(t *testing.T) {
	repo := setupKingdomRepo(t)
	_, err := repo.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, postgres.ErrKingdomNotFound)
}

func TestKingdomRepository_SaveAppendsHistory(t *testing.T) {
	repo := setupKingdomRepo(t)
	ctx := context.Background()
	k := makeKingdom("Stolen Lands")
	require.NoError(t, repo.Create(ctx, k))

	delta := kingdom.NewDelta()
	delta.RP = -12
	delta.XP = 12
	k.History = append(k.History, kingdom.HistoryEntry{
		ID: uuid.NewString(), Turn: 1, Month: "Abadius", Year: 4710, Delta: delta,
		Activities: []kingdom.ActivityRecord{{ActivityID: "celebrate_holiday", Degree: "success", Log: []string{"Unrest -1"}}},
	})
	k.Turn = kingdom.NewTurnState(2, 1, 4710)
	k.XP, k.RP = 12, 0
	require.NoError(t, repo.Save(ctx, k))

	// Saving again must not duplicate history rows.
	require.NoError(t, repo.Save(ctx, k))

	got, err := repo.Get(ctx, k.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Turn.Turn)
	assert.Equal(t, 12, got.XP)
	require.Len(t, got.History, 1)
	assert.Equal(t, k.History[0].ID, got.History[0].ID)
	assert.Equal(t, 12, got.History[0].Delta.XP)
	assert.Len(t, got.History[0].Activities, 1)
	assert.Empty(t, got.History[0].Events)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Turn)
}

func TestKingdomRepository_SaveAcrossTurns(t *testing.T) {
	repo := setupKingdomRepo(t)
	ctx := context.Background()
	k := makeKingdom("Stolen Lands")
	require.NoError(t, repo.Create(ctx, k))

	ids := make([]string, 0, 3)
	for turn := 1; turn <= 3; turn++ {
		delta := kingdom.NewDelta()
		delta.XP = turn
		id := uuid.NewString()
		ids = append(ids, id)
		k.History = append(k.History, kingdom.HistoryEntry{
			ID: id, Turn: turn, Month: "Abadius", Year: 4710, Delta: delta,
		})
		k.Turn = kingdom.NewTurnState(turn+1, 1, 4710)
		require.NoError(t, repo.Save(ctx, k))
	}

	// Rows already stored are never rewritten.
	k.History[0].Delta.XP = 99
	require.NoError(t, repo.Save(ctx, k))

	got, err := repo.Get(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, got.History, 3)
	for i, h := range got.History {
		assert.Equal(t, i+1, h.Turn)
		assert.Equal(t, ids[i], h.ID)
	}
	assert.Equal(t, 1, got.History[0].Delta.XP)
	assert.Equal(t, 4, got.Turn.Turn)
}

func TestKingdomRepository_SaveMissing(t *testing.T) {
	repo := setupKingdomRepo(t)
	assert.ErrorIs(t, repo.Save(context.Background(), makeKingdom("Nowhere")), postgres.ErrKingdomNotFound)
}

func TestKingdomRepository_Delete(t *testing.T) {
	repo := setupKingdomRepo(t)
	ctx := context.Background()
	k := makeKingdom("Stolen Lands")
	require.NoError(t, repo.Create(ctx, k))
	require.NoError(t, repo.Delete(ctx, k.ID))
	_, err := repo.Get(ctx, k.ID)
	assert.ErrorIs(t, err, postgres.ErrKingdomNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, k.ID), postgres.ErrKingdomNotFound)
}
