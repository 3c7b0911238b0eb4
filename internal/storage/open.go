package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/keyring"
	"github.com/julianstephens/habitreel/internal/logger"
	"github.com/julianstephens/habitreel/internal/storage/postgres"
	"github.com/julianstephens/habitreel/internal/storage/sqlite"
	"github.com/julianstephens/habitreel/internal/utils"
)

var (
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
)

// IsPostgres reports whether database names a PostgreSQL connection rather than a file.
func IsPostgres(database string) bool {
	d := strings.TrimSpace(database)
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") {
		return true
	}
	for _, field := range strings.Fields(d) {
		key, _, ok := strings.Cut(field, "=")
		if ok && (key == "host" || key == "dbname") {
			return true
		}
	}
	return false
}

// Open returns the backend for database without connecting. An empty database uses
// the connection string stored in the keyring, falling back to the default SQLite file.
// Only keyring entries may carry a password.
func Open(database string) (Provider, error) {
	fromKeyring := false
	if strings.TrimSpace(database) == "" {
		connStr, err := keyring.GetConnectionString()
		switch {
		case err == nil:
			database, fromKeyring = connStr, true
		case errors.Is(err, keyring.ErrNotFound):
			database = constants.DefaultDBPath
		default:
			logger.Warn("Keyring unavailable, using default database", "error", err)
			database = constants.DefaultDBPath
		}
	}

	if IsPostgres(database) {
		if fromKeyring {
			return postgres.New(database), nil
		}
		if _, err := postgres.ValidateConnString(database); err != nil {
			return nil, fmt.Errorf("refusing PostgreSQL connection string: %w", err)
		}
		return postgres.New(database), nil
	}
	return sqlite.NewStore(utils.ExpandHome(database)), nil
}
