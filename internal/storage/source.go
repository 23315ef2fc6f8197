package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/dev-news-feed/internal/model"
	"github.com/samber/lo"
)

var ErrSourceNotFound = errors.New("source not found")

const schema = `CREATE TABLE IF NOT EXISTS sources (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	feed_url   TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Реестр дополнительных фидов.
// Здесь только адреса фидов, сами новости между перезапусками не хранятся
type SourcePostgresStorage struct {
	db *sqlx.DB
}

func NewSourcePostgresStorage(db *sqlx.DB) *SourcePostgresStorage {
	return &SourcePostgresStorage{db: db}
}

// EnsureSchema создает таблицу, если ее еще нет.
func (s *SourcePostgresStorage) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create sources table: %w", err)
	}

	return nil
}

// Метод для получения списка фидов
func (s *SourcePostgresStorage) Sources(ctx context.Context) ([]model.Source, error) {
	var sources []dbSource
	if err := s.db.SelectContext(ctx, &sources, `SELECT id, name, feed_url, created_at FROM sources ORDER BY id`); err != nil {
		return nil, fmt.Errorf("select sources: %w", err)
	}

	return lo.Map(sources, func(source dbSource, _ int) model.Source {
		return model.Source(source)
	}), nil
}

func (s *SourcePostgresStorage) SourceByID(ctx context.Context, id int64) (*model.Source, error) {
	var source dbSource
	if err := s.db.GetContext(ctx, &source, `SELECT id, name, feed_url, created_at FROM sources WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSourceNotFound
		}
		return nil, fmt.Errorf("select source %d: %w", id, err)
	}

	return (*model.Source)(&source), nil
}

// Add сохраняет фид и возвращает его id.
func (s *SourcePostgresStorage) Add(ctx context.Context, source model.Source) (int64, error) {
	if source.CreatedAt.IsZero() {
		source.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := s.db.QueryRowxContext(
		ctx,
		`INSERT INTO sources (name, feed_url, created_at) VALUES ($1, $2, $3) RETURNING id`,
		source.Name,
		source.FeedURL,
		source.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert source: %w", err)
	}

	return id, nil
}

func (s *SourcePostgresStorage) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete source %d: %w", id, err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrSourceNotFound
	}

	return nil
}

// Внутренняя модель для работы с БД, чтобы правильно мапить его на колонки в таблице
type dbSource struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	FeedURL   string    `db:"feed_url"`
	CreatedAt time.Time `db:"created_at"`
}
