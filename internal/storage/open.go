// Package storage picks the data-log backend for a process.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"dealfinder/internal/domain"
	"dealfinder/internal/storage/jsonfile"
	mysqlrepo "dealfinder/internal/storage/mysql"
)

const (
	KindMySQL    = "mysql"
	KindJSONFile = "jsonfile"
)

type Store struct {
	domain.RecordRepository
	Kind string
	db   *sql.DB
	dir  string
}

// Open uses MySQL when dsn is set (it needs parseTime=true) and JSON files
// under dir otherwise.
func Open(ctx context.Context, dsn, dir string) (*Store, error) {
	if dsn == "" {
		repo, err := jsonfile.New(dir)
		if err != nil {
			return nil, err
		}
		return &Store{RecordRepository: repo, Kind: KindJSONFile, dir: dir}, nil
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return &Store{RecordRepository: mysqlrepo.New(db), Kind: KindMySQL, db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks the database connection, or that the data directory is still
// there for the file store.
func (s *Store) Ping(ctx context.Context) error {
	if s.db != nil {
		return s.db.PingContext(ctx)
	}
	fi, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", s.dir)
	}
	return nil
}
