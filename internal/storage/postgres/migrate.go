package postgres

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/cory-johannsen/pf2-flat-check/migrations"
)

// Migration directions accepted by Migrate.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// MigrateResult reports the schema state after Migrate.
type MigrateResult struct {
	Version  uint
	Dirty    bool
	NoChange bool
}

// Migrate applies the embedded schema migrations to the database at dsn.
// steps == 0 migrates all the way in direction.
//
// Precondition: direction is DirectionUp or DirectionDown; steps >= 0.
// Postcondition: Returns the resulting version, or a non-nil error. Already
// being at the target version is not an error.
func Migrate(dsn, direction string, steps int) (MigrateResult, error) {
	if steps < 0 {
		return MigrateResult{}, fmt.Errorf("steps must be >= 0, got %d", steps)
	}
	if direction != DirectionUp && direction != DirectionDown {
		return MigrateResult{}, fmt.Errorf("invalid direction %q: must be %q or %q", direction, DirectionUp, DirectionDown)
	}
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return MigrateResult{}, fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return MigrateResult{}, fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch {
	case direction == DirectionUp && steps > 0:
		err = m.Steps(steps)
	case direction == DirectionUp:
		err = m.Up()
	case steps > 0:
		err = m.Steps(-steps)
	default:
		err = m.Down()
	}

	noChange := errors.Is(err, migrate.ErrNoChange)
	if err != nil && !noChange {
		return MigrateResult{}, fmt.Errorf("migrating %s: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return MigrateResult{}, fmt.Errorf("reading schema version: %w", verr)
	}
	return MigrateResult{Version: version, Dirty: dirty, NoChange: noChange}, nil
}
