package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/account-lifecycle-server/internal/config"
)

// IStorage is what the operator and the services need from the primary store.
type IStorage interface {
	Read() *Reader
	Write(ctx context.Context) (*Writer, error)
}

type Storage struct {
	DB  *sql.DB
	bob bob.DB
}

var _ IStorage = (*Storage)(nil)

// ConnectionString builds a lib/pq URL from the postgres settings.
func ConnectionString(pg config.Postgres) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		pg.Username, pg.Password, pg.Address, pg.Port, pg.DB, pg.SSLMode)
}

func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", ConnectionString(env.Postgres))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(env.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(env.Postgres.MaxOpenConns)

	return &Storage{
		DB:  db,
		bob: bob.NewDB(db),
	}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Read() *Reader {
	return NewReader(s.bob)
}

func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.bob.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewWriter(tx), nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
