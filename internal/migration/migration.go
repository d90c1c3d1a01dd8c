package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
	"github.com/railzwaylabs/sitepnl/internal/pnl/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date. Postgres runs the embedded SQL
// migrations; the development drivers are auto-migrated from the models.
func Migrate(ctx context.Context, conn *gorm.DB, driver string, log *zap.Logger) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if driver != "postgres" {
		log.Info("auto-migrating schema", zap.String("driver", driver))
		if err := conn.WithContext(ctx).AutoMigrate(repository.Models()...); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if err := RunMigrations(sqlDB); err != nil {
		return err
	}
	log.Info("schema migrated", zap.String("driver", driver))
	return nil
}

// RunMigrations applies all embedded migrations under the schema lock, seeds
// the reference data and records the resulting schema state.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	set, err := embeddedMigrationSet()
	if err != nil {
		return err
	}
	checksum, err := set.Checksum()
	if err != nil {
		return err
	}

	release, err := lockSchema(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		_ = release(context.Background())
	}()

	state, err := readSchemaState(ctx, db)
	if err != nil {
		return err
	}
	if err := state.checkAgainst(set.Latest(), checksum); err != nil {
		return err
	}

	source, err := iofs.New(set.fsys, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if _, err := ensureNotDirty(migrator); err != nil {
		return err
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %s: %w", describeError(upErr), upErr)
	}

	currentVersion, err := ensureNotDirty(migrator)
	if err != nil {
		return err
	}
	if currentVersion != set.Latest() {
		return fmt.Errorf("schema version mismatch after migrate: got %d want %d", currentVersion, set.Latest())
	}

	if err := seedReferenceData(ctx, db); err != nil {
		return err
	}

	return recordSchemaState(ctx, db, schemaState{Version: currentVersion, Checksum: checksum}, time.Now())
}

func ensureNotDirty(migrator *migrate.Migrate) (uint, error) {
	if migrator == nil {
		return 0, errors.New("migrator is required")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, nil
		}
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return 0, fmt.Errorf("database migrations are dirty at version %d", version)
	}
	return version, nil
}

// describeError extracts the failing line and the postgres code from a
// migration failure.
func describeError(err error) string {
	desc := "migration failed"

	var dbErr database.Error
	if errors.As(err, &dbErr) {
		if dbErr.Line > 0 {
			desc = fmt.Sprintf("%s at line %d", desc, dbErr.Line)
		}
		if dbErr.OrigErr != nil {
			err = dbErr.OrigErr
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		desc = fmt.Sprintf("%s (%s %s)", desc, pqErr.Code, pqErr.Code.Name())
		if pqErr.Detail != "" {
			desc += ": " + pqErr.Detail
		}
	}
	return desc
}
