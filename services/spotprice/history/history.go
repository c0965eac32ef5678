// Package history keeps a log of every online price fetch so past
// pricing periods can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type Fetch struct {
	FetchedAt time.Time
	PeriodEnd time.Time
	Price     float64
}

func (s *Store) Push(ctx context.Context, fetchedAt, periodEnd time.Time, price float64) error {
	const query = `INSERT INTO fetches (fetched_at, period_end, price) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, fetchedAt.Unix(), periodEnd.Unix(), price)
	return err
}

// Recent returns up to limit fetches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Fetch, error) {
	const query = `SELECT fetched_at, period_end, price FROM fetches ORDER BY fetched_at DESC, id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fetches []Fetch
	for rows.Next() {
		var fetchedAt, periodEnd int64
		var price float64
		err := rows.Scan(&fetchedAt, &periodEnd, &price)
		if err != nil {
			return nil, err
		}
		fetches = append(fetches, Fetch{
			FetchedAt: time.Unix(fetchedAt, 0).UTC(),
			PeriodEnd: time.Unix(periodEnd, 0).UTC(),
			Price:     price,
		})
	}
	return fetches, rows.Err()
}
