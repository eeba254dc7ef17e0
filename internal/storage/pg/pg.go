// Package pg is the Postgres storage layer behind the forum service: account
// rows, token pairs, posts, replies and the LISTEN/NOTIFY change feed.
package pg

import (
	"database/sql"
	"fmt"

	"github.com/tftboard/tftboard/internal/config"
	"github.com/tftboard/tftboard/internal/logger"

	_ "github.com/lib/pq"
)

type Storage struct {
	db  *sql.DB
	cfg *config.Config
}

func New(cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to db", "host", cfg.Private.Pg.Host, "dbname", cfg.Private.Pg.Dbname)
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("connected to db")
	return &Storage{db, cfg}, nil
}

// NewWithDB wraps an existing connection; integration tests use it.
func NewWithDB(db *sql.DB, cfg *config.Config) *Storage {
	return &Storage{db, cfg}
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", ConnString(cfg))
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func ConnString(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Private.Pg.Host, cfg.Private.Pg.Port, cfg.Private.Pg.User, cfg.Private.Pg.Password, cfg.Private.Pg.Dbname)
}

func (s *Storage) DB() *sql.DB {
	return s.db
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}
