package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/interest-protocol/memez-fun/internal/models"
)

const cursorKey = "event_cursor"

type Store struct {
	Pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// GetCursor returns nil when nothing has been indexed yet.
func (s *Store) GetCursor(ctx context.Context) (*models.Cursor, error) {
	row := s.Pool.QueryRow(ctx, "SELECT value FROM sync_state WHERE key=$1", cursorKey)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	var cur models.Cursor
	if err := json.Unmarshal([]byte(v), &cur); err != nil {
		return nil, err
	}
	return &cur, nil
}

// SaveEventPage stores events and moves the cursor in one transaction, so a
// crash never leaves the cursor ahead of the data. Already stored events are
// skipped; the number of new rows is returned.
func (s *Store) SaveEventPage(ctx context.Context, events []models.Event, cursor *models.Cursor) (int64, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inserted int64
	for i := range events {
		tag, err := insertEvent(ctx, tx, &events[i])
		if err != nil {
			return 0, err
		}
		inserted += tag.RowsAffected()
	}

	if cursor != nil {
		v, err := json.Marshal(cursor)
		if err != nil {
			return 0, err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO sync_state (key, value)
			VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
		`, cursorKey, string(v)); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

func insertEvent(ctx context.Context, tx pgx.Tx, ev *models.Event) (pgconn.CommandTag, error) {
	var parsed any
	if len(ev.ParsedJSON) > 0 {
		parsed = string(ev.ParsedJSON)
	}
	return tx.Exec(ctx, `
		INSERT INTO events (
			tx_digest, event_seq, package_id, transaction_module,
			sender, event_type, parsed_json, bcs, emitted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9)
		ON CONFLICT (tx_digest, event_seq) DO NOTHING
	`,
		ev.TxDigest,
		ev.EventSeq,
		ev.PackageID,
		ev.TransactionModule,
		ev.Sender,
		ev.Type,
		parsed,
		ev.BCS,
		ev.EmittedAt,
	)
}

// ListEvents returns the newest events first, optionally restricted to one
// event type.
func (s *Store) ListEvents(ctx context.Context, eventType string, limit int) ([]*models.Event, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT tx_digest, event_seq, package_id, transaction_module,
			sender, event_type, parsed_json, bcs, emitted_at, created_at
		FROM events
		WHERE $1 = '' OR event_type = $1
		ORDER BY emitted_at DESC NULLS LAST, tx_digest, event_seq
		LIMIT $2
	`, eventType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		var ev models.Event
		var parsed []byte
		if err := rows.Scan(
			&ev.TxDigest,
			&ev.EventSeq,
			&ev.PackageID,
			&ev.TransactionModule,
			&ev.Sender,
			&ev.Type,
			&parsed,
			&ev.BCS,
			&ev.EmittedAt,
			&ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(parsed) > 0 {
			ev.ParsedJSON = json.RawMessage(parsed)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, "SELECT count(*) FROM events").Scan(&n)
	return n, err
}
