package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrInsufficientFunds is returned when a debit would take a balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// BalanceRepository stores each character's currency balance.
type BalanceRepository struct {
	db *pgxpool.Pool
}

// NewBalanceRepository creates a BalanceRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBalanceRepository(db *pgxpool.Pool) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// Balance returns the character's balance. A character with no row has a
// balance of zero.
func (r *BalanceRepository) Balance(ctx context.Context, id string) (int64, error) {
	var amount int64
	err := r.db.QueryRow(ctx, `SELECT amount FROM balances WHERE id = $1`, id).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading balance of %q: %w", id, err)
	}
	return amount, nil
}

// Adjust adds delta to the character's balance and returns the new amount.
//
// Postcondition: Returns ErrInsufficientFunds and leaves the balance unchanged
// when the result would be negative.
func (r *BalanceRepository) Adjust(ctx context.Context, id string, delta int64) (int64, error) {
	var amount int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO balances (id, amount) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET amount = balances.amount + EXCLUDED.amount, updated_at = NOW()
		RETURNING amount`,
		id, delta,
	).Scan(&amount)
	if err != nil {
		if isCheckViolation(err) {
			return 0, ErrInsufficientFunds
		}
		return 0, fmt.Errorf("adjusting balance of %q: %w", id, err)
	}
	return amount, nil
}

// isCheckViolation checks if a pgx error is a CHECK constraint violation.
func isCheckViolation(err error) bool {
	// SQLSTATE 23514 (check_violation), raised by balances.amount >= 0
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23514"
	}
	return false
}
