package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/adventure/internal/storage"
)

// AdventurerRepository persists character blobs in the adventurers table.
type AdventurerRepository struct {
	db *pgxpool.Pool
}

// NewAdventurerRepository creates an AdventurerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewAdventurerRepository(db *pgxpool.Pool) *AdventurerRepository {
	return &AdventurerRepository{db: db}
}

// Load returns the stored blob for id.
//
// Postcondition: Returns storage.ErrCharacterNotFound when no row exists.
func (r *AdventurerRepository) Load(ctx context.Context, id string) ([]byte, error) {
	var blob []byte
	err := r.db.QueryRow(ctx, `SELECT blob FROM adventurers WHERE id = $1`, id).Scan(&blob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("loading adventurer %q: %w", id, err)
	}
	return blob, nil
}

// Save inserts or replaces the blob for id.
//
// Precondition: blob must be a JSON document.
func (r *AdventurerRepository) Save(ctx context.Context, id string, blob []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO adventurers (id, blob) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET blob = EXCLUDED.blob, updated_at = NOW()`,
		id, blob,
	)
	if err != nil {
		return fmt.Errorf("saving adventurer %q: %w", id, err)
	}
	return nil
}

// Delete removes the blob for id.
//
// Postcondition: Returns storage.ErrCharacterNotFound if no row was deleted.
func (r *AdventurerRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM adventurers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting adventurer %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrCharacterNotFound
	}
	return nil
}
