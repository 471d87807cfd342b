package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/kingdom/internal/game/kingdom"
)

// ErrKingdomNotFound is returned when a kingdom lookup yields no results.
var ErrKingdomNotFound = errors.New("kingdom not found")

// ErrKingdomExists is returned when creating a kingdom whose ID is already stored.
var ErrKingdomExists = errors.New("kingdom already exists")

// KingdomSummary is the listing view of a stored kingdom.
type KingdomSummary struct {
	ID        string
	Name      string
	Level     int
	Turn      int
	UpdatedAt time.Time
}

// KingdomRepository persists kingdom snapshots and their turn history. The
// snapshot column holds the kingdom without its history; history entries
// live one per row in kingdom_turns.
type KingdomRepository struct {
	db *pgxpool.Pool
}

// NewKingdomRepository creates a KingdomRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewKingdomRepository(db *pgxpool.Pool) *KingdomRepository {
	return &KingdomRepository{db: db}
}

func snapshot(k *kingdom.Kingdom) ([]byte, error) {
	c := *k
	c.History = nil
	b, err := json.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("encoding kingdom snapshot: %w", err)
	}
	return b, nil
}

// Create stores a new kingdom and any history it already carries.
//
// Precondition: k.ID must be a UUID string; k.Name must be non-empty.
// Postcondition: Returns ErrKingdomExists when k.ID is already stored.
func (r *KingdomRepository) Create(ctx context.Context, k *kingdom.Kingdom) error {
	snap, err := snapshot(k)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO kingdoms (id, name, level, turn, snapshot)
			VALUES ($1, $2, $3, $4, $5)`,
			k.ID, k.Name, k.Level, k.Turn.Turn, snap,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return ErrKingdomExists
			}
			return fmt.Errorf("inserting kingdom: %w", err)
		}
		return insertHistory(ctx, tx, k)
	})
}

// Save commits k as the canonical state: the snapshot is replaced and any
// history entries not yet stored are appended.
//
// Postcondition: Returns ErrKingdomNotFound when k.ID is not stored.
func (r *KingdomRepository) Save(ctx context.Context, k *kingdom.Kingdom) error {
	snap, err := snapshot(k)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE kingdoms
			SET name = $2, level = $3, turn = $4, snapshot = $5, updated_at = NOW()
			WHERE id = $1`,
			k.ID, k.Name, k.Level, k.Turn.Turn, snap,
		)
		if err != nil {
			return fmt.Errorf("updating kingdom: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrKingdomNotFound
		}
		return insertHistory(ctx, tx, k)
	})
}

// insertHistory appends only the turns newer than the latest stored one;
// history is append-only so earlier rows never change.
func insertHistory(ctx context.Context, tx pgx.Tx, k *kingdom.Kingdom) error {
	var stored int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(turn), 0) FROM kingdom_turns WHERE kingdom_id = $1`, k.ID,
	).Scan(&stored); err != nil {
		return fmt.Errorf("reading stored history: %w", err)
	}
	for _, h := range k.History {
		if h.Turn <= stored {
			continue
		}
		delta, err := json.Marshal(h.Delta)
		if err != nil {
			return fmt.Errorf("encoding turn %d delta: %w", h.Turn, err)
		}
		activities, err := json.Marshal(nonNil(h.Activities))
		if err != nil {
			return fmt.Errorf("encoding turn %d activities: %w", h.Turn, err)
		}
		events, err := json.Marshal(nonNil(h.Events))
		if err != nil {
			return fmt.Errorf("encoding turn %d events: %w", h.Turn, err)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO kingdom_turns (id, kingdom_id, turn, month, year, delta, activities, events)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (kingdom_id, turn) DO NOTHING`,
			h.ID, k.ID, h.Turn, h.Month, h.Year, delta, activities, events,
		); err != nil {
			return fmt.Errorf("inserting turn %d: %w", h.Turn, err)
		}
	}
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

// Get loads a kingdom with its full turn history.
//
// Postcondition: Returns the Kingdom or ErrKingdomNotFound.
func (r *KingdomRepository) Get(ctx context.Context, id string) (*kingdom.Kingdom, error) {
	var snap []byte
	err := r.db.QueryRow(ctx, `SELECT snapshot FROM kingdoms WHERE id = $1`, id).Scan(&snap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKingdomNotFound
		}
		return nil, fmt.Errorf("querying kingdom: %w", err)
	}
	var k kingdom.Kingdom
	if err := json.Unmarshal(snap, &k); err != nil {
		return nil, fmt.Errorf("decoding kingdom snapshot: %w", err)
	}
	history, err := r.History(ctx, id)
	if err != nil {
		return nil, err
	}
	k.History = history
	return &k, nil
}

// History returns the stored turn history of a kingdom in turn order.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *KingdomRepository) History(ctx context.Context, id string) ([]kingdom.HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, turn, month, year, delta, activities, events
		FROM kingdom_turns WHERE kingdom_id = $1 ORDER BY turn ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	out := make([]kingdom.HistoryEntry, 0)
	for rows.Next() {
		var (
			h                         kingdom.HistoryEntry
			delta, activities, events []byte
		)
		if err := rows.Scan(&h.ID, &h.Turn, &h.Month, &h.Year, &delta, &activities, &events); err != nil {
			return nil, fmt.Errorf("scanning turn row: %w", err)
		}
		if err := json.Unmarshal(delta, &h.Delta); err != nil {
			return nil, fmt.Errorf("decoding turn %d delta: %w", h.Turn, err)
		}
		if err := json.Unmarshal(activities, &h.Activities); err != nil {
			return nil, fmt.Errorf("decoding turn %d activities: %w", h.Turn, err)
		}
		if err := json.Unmarshal(events, &h.Events); err != nil {
			return nil, fmt.Errorf("decoding turn %d events: %w", h.Turn, err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// List returns a summary of every stored kingdom, most recently updated first.
func (r *KingdomRepository) List(ctx context.Context) ([]KingdomSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, level, turn, updated_at
		FROM kingdoms ORDER BY updated_at DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing kingdoms: %w", err)
	}
	defer rows.Close()

	out := make([]KingdomSummary, 0)
	for rows.Next() {
		var s KingdomSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Level, &s.Turn, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning kingdom row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a kingdom and its history.
//
// Postcondition: Returns ErrKingdomNotFound when id is not stored.
func (r *KingdomRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM kingdoms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting kingdom: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKingdomNotFound
	}
	return nil
}

// isDuplicateKeyError reports whether err is a PostgreSQL unique_violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
