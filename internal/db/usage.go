package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smartroute/internal/models"
)

// AddUsage adds the given counts to the durable usage counters in one
// transaction.
func (d *DB) AddUsage(ctx context.Context, counts []models.UsageCount) error {
	if len(counts) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, u := range counts {
		batch.Queue(`
			INSERT INTO generation_usage (mode, outcome, count, last_seen_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (mode, outcome) DO UPDATE
			SET count = generation_usage.count + EXCLUDED.count,
			    last_seen_at = GREATEST(generation_usage.last_seen_at, EXCLUDED.last_seen_at)
		`, string(u.Mode), u.Outcome, u.Count, u.LastSeenAt)
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin usage flush: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write usage counts: %w", err)
	}
	return tx.Commit(ctx)
}

// GetAllUsage returns all usage rows for metrics export.
func (d *DB) GetAllUsage(ctx context.Context) ([]models.UsageCount, error) {
	rows, err := d.Pool.Query(ctx, `SELECT mode, outcome, count, last_seen_at FROM generation_usage ORDER BY mode, outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.UsageCount
	for rows.Next() {
		var u models.UsageCount
		var mode string
		if err := rows.Scan(&mode, &u.Outcome, &u.Count, &u.LastSeenAt); err != nil {
			return nil, err
		}
		u.Mode = models.Mode(mode)
		counts = append(counts, u)
	}
	return counts, rows.Err()
}
