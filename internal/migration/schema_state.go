package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const undefinedTable = "42P01"

var ErrChecksumMismatch = errors.New("migration_checksum_mismatch")

// schemaState is the row of schema_state: the migration version the database
// was brought up to and the checksum of the files that produced it.
type schemaState struct {
	Version  uint
	Checksum string
}

// checkAgainst refuses a database that reports the latest version under a
// different checksum, which means a shipped migration was edited in place.
// Older versions are left to the migrator.
func (s *schemaState) checkAgainst(latest uint, checksum string) error {
	if s == nil || s.Version != latest || s.Checksum == checksum {
		return nil
	}
	return fmt.Errorf("%w: version %d recorded %s, files hash to %s", ErrChecksumMismatch, latest, short(s.Checksum), short(checksum))
}

// readSchemaState returns nil on a fresh database.
func readSchemaState(ctx context.Context, db *sql.DB) (*schemaState, error) {
	var (
		version  int64
		checksum string
	)
	err := db.QueryRowContext(ctx, `SELECT version, checksum FROM schema_state WHERE id`).Scan(&version, &checksum)
	switch {
	case errors.Is(err, sql.ErrNoRows), isUndefinedTable(err):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("read schema state: %w", err)
	}
	return &schemaState{Version: uint(version), Checksum: checksum}, nil
}

func recordSchemaState(ctx context.Context, db *sql.DB, state schemaState, at time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO schema_state (id, version, checksum, applied_at)
		VALUES (TRUE, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET version = EXCLUDED.version,
		    checksum = EXCLUDED.checksum,
		    applied_at = EXCLUDED.applied_at
	`, int64(state.Version), state.Checksum, at.UTC())
	if err != nil {
		return fmt.Errorf("record schema state: %w", err)
	}
	return nil
}

func isUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == undefinedTable
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == undefinedTable
	}
	return false
}

func short(checksum string) string {
	if len(checksum) > 12 {
		return checksum[:12]
	}
	return checksum
}
