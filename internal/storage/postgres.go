package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const connectAttempts = 5

// Connect открывает соединение с postgres.
// База может подниматься дольше приложения (docker compose), поэтому пробуем несколько раз с нарастающей паузой
func Connect(ctx context.Context, dsn string, log logrus.FieldLogger) (*sqlx.DB, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 10 * time.Second

	var db *sqlx.DB
	connect := func() error {
		conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
		if err != nil {
			return err
		}

		db = conn
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.WithError(err).WithField("retry_in", wait).Warn("database is not ready")
	}

	err := backoff.RetryNotify(
		connect,
		backoff.WithContext(backoff.WithMaxRetries(policy, connectAttempts), ctx),
		notify,
	)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return db, nil
}
