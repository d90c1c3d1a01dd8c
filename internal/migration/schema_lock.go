package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"
)

// schemaLockName identifies the sitepnl schema among the advisory locks of a
// shared postgres cluster.
const schemaLockName = "sitepnl:schema"

const schemaLockRetry = 500 * time.Millisecond

var (
	ErrSchemaLocked   = errors.New("schema_locked")
	ErrSchemaLockLost = errors.New("schema_lock_lost")
)

func schemaLockKey() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(schemaLockName))
	return int64(h.Sum64())
}

type releaseFunc func(ctx context.Context) error

// lockSchema takes the sitepnl advisory lock, retrying until ctx expires
// while another instance is migrating.
func lockSchema(ctx context.Context, db *sql.DB) (releaseFunc, error) {
	if db == nil {
		return nil, errors.New("schema lock requires database handle")
	}
	key := schemaLockKey()

	try := func(ctx context.Context) (bool, error) {
		var locked bool
		err := db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&locked)
		return locked, err
	}
	if err := waitForLock(ctx, try, schemaLockRetry); err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		var released bool
		if err := db.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&released); err != nil {
			return fmt.Errorf("release schema lock: %w", err)
		}
		if !released {
			return ErrSchemaLockLost
		}
		return nil
	}, nil
}

func waitForLock(ctx context.Context, try func(context.Context) (bool, error), retry time.Duration) error {
	ticker := time.NewTicker(retry)
	defer ticker.Stop()

	for {
		locked, err := try(ctx)
		if err != nil {
			return fmt.Errorf("acquire schema lock: %w", err)
		}
		if locked {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s held by another process: %w", ErrSchemaLocked, schemaLockName, ctx.Err())
		case <-ticker.C:
		}
	}
}
