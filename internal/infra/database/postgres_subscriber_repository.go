package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresSubscriberRepository persists the broadcast subscribers across restarts.
type PostgresSubscriberRepository struct {
	db        *sql.DB
	dbTimeout time.Duration
}

func NewPostgresSubscriberRepository(db *sql.DB, dbTimeout time.Duration) *PostgresSubscriberRepository {
	return &PostgresSubscriberRepository{db: db, dbTimeout: dbTimeout}
}

func (r *PostgresSubscriberRepository) Add(ctx context.Context, chatID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO telegram_subscribers (chat_id) VALUES ($1) ON CONFLICT (chat_id) DO NOTHING`, chatID)
	if err != nil {
		return false, fmt.Errorf("error adding subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading added subscriber count: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresSubscriberRepository) Remove(ctx context.Context, chatID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM telegram_subscribers WHERE chat_id = $1`, chatID)
	if err != nil {
		return false, fmt.Errorf("error removing subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading removed subscriber count: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresSubscriberRepository) List(ctx context.Context) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.dbTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT chat_id FROM telegram_subscribers ORDER BY created_at, chat_id`)
	if err != nil {
		return nil, fmt.Errorf("error listing subscribers: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning subscriber: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscribers: %w", err)
	}
	return ids, nil
}
