package postgres

import (
	"context"
	"database/sql"
	"embed"
	stderrors "errors"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/ChemCheck/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemCheck/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// MigrationStatus is the schema version recorded by golang-migrate.
type MigrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

// Migrator applies the embedded schema migrations.
type Migrator struct {
	m      *migrate.Migrate
	logger logging.Logger
}

// NewMigrator binds the embedded migrations to a dedicated connection from
// db. Close releases that connection and leaves db open.
func NewMigrator(ctx context.Context, db *sql.DB, log logging.Logger) (*Migrator, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to open embedded migrations")
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to acquire migration connection")
	}
	driver, err := migratepg.WithConnection(ctx, conn, &migratepg.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create migrate instance")
	}
	return &Migrator{m: m, logger: log}, nil
}

// Up applies every pending migration. No pending migrations is not an error.
func (m *Migrator) Up() error {
	if err := m.m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		status, _ := m.Status()
		return errors.Wrapf(err, errors.ErrCodeDatabaseError, "failed to run migrations (current version: %d)", status.Version)
	}
	status, err := m.Status()
	if err != nil {
		return err
	}
	m.logger.Info("database migrations applied",
		logging.Int64("version", int64(status.Version)),
		logging.Bool("dirty", status.Dirty),
	)
	return nil
}

// Down rolls back steps migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return errors.InvalidParam("steps must be greater than 0")
	}
	if err := m.m.Steps(-steps); err != nil {
		if stderrors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrCodeDatabaseError, "failed to roll back %d step(s)", steps)
	}
	m.logger.Info("database migrations rolled back", logging.Int("steps", steps))
	return nil
}

// Status reports version 0 when nothing has been applied.
func (m *Migrator) Status() (MigrationStatus, error) {
	version, dirty, err := m.m.Version()
	if err != nil {
		if stderrors.Is(err, migrate.ErrNilVersion) {
			return MigrationStatus{}, nil
		}
		return MigrationStatus{}, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to read migration version")
	}
	return MigrationStatus{Version: version, Dirty: dirty}, nil
}

// Force sets the recorded version without running migrations. Used to
// recover from a dirty state.
func (m *Migrator) Force(version int) error {
	if err := m.m.Force(version); err != nil {
		return errors.Wrapf(err, errors.ErrCodeDatabaseError, "failed to force version %d", version)
	}
	return nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}
