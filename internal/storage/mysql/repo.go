package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"dealfinder/internal/domain"
)

const defaultLimit = 100

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Insert(ctx context.Context, rec domain.Record) error {
	payload := string(rec.Payload)
	if payload == "" {
		payload = "{}"
	}
	_, err := r.db.ExecContext(ctx, insertRecordSQL, rec.ID, rec.Type, rec.Timestamp.UTC(), payload)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

func (r *Repo) List(ctx context.Context, typ string, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	var (
		rows *sql.Rows
		err  error
	)
	if typ == "" {
		rows, err = r.db.QueryContext(ctx, listRecordsSQL, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, listRecordsByTypeSQL, typ, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var rec domain.Record
		var payload []byte
		if err := rows.Scan(&rec.ID, &rec.Type, &rec.Timestamp, &payload); err != nil {
			return nil, err
		}
		rec.Payload = payload
		out = append(out, rec)
	}
	return out, rows.Err()
}
