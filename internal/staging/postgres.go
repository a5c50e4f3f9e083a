package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rowanvale/njord/internal/domain"
)

// PostgresStore persists descriptors in the pending_orders table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a postgres-backed staging store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Put(ctx context.Context, pending *domain.PendingOrder) error {
	lines, err := json.Marshal(pending.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode pending order lines: %w", err)
	}
	shipping, err := json.Marshal(pending.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to encode shipping address: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO pending_orders
			(user_id, idempotency_key, payment_ref, cart_id, total_cents, payment_method, lines, shipping, staged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			idempotency_key = EXCLUDED.idempotency_key,
			payment_ref     = EXCLUDED.payment_ref,
			cart_id         = EXCLUDED.cart_id,
			total_cents     = EXCLUDED.total_cents,
			payment_method  = EXCLUDED.payment_method,
			lines           = EXCLUDED.lines,
			shipping        = EXCLUDED.shipping,
			staged_at       = EXCLUDED.staged_at`,
		pending.UserID, pending.IdempotencyKey, pending.PaymentRef, pending.CartID,
		pending.TotalCents, pending.PaymentMethod, lines, shipping, pending.StagedAt)
	if err != nil {
		return fmt.Errorf("failed to stage pending order: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*domain.PendingOrder, error) {
	var (
		pending  domain.PendingOrder
		lines    []byte
		shipping []byte
	)

	err := s.pool.QueryRow(ctx, `
		SELECT user_id, idempotency_key, payment_ref, cart_id, total_cents, payment_method, lines, shipping, staged_at
		FROM pending_orders
		WHERE user_id = $1`, userID).
		Scan(&pending.UserID, &pending.IdempotencyKey, &pending.PaymentRef, &pending.CartID,
			&pending.TotalCents, &pending.PaymentMethod, &lines, &shipping, &pending.StagedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoPendingOrder
		}
		return nil, fmt.Errorf("failed to load pending order: %w", err)
	}

	if err := json.Unmarshal(lines, &pending.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode pending order lines: %w", err)
	}
	if err := json.Unmarshal(shipping, &pending.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to decode shipping address: %w", err)
	}

	return &pending, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM pending_orders WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to discard pending order: %w", err)
	}
	return nil
}
