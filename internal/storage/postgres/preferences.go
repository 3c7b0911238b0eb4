package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
)

// GetPreference returns the stored value, or "" when the key is absent.
func (s *Store) GetPreference(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = $1", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, value, time.Now().UTC().Format(constants.TimestampFormat))
	return err
}

func (s *Store) DeletePreference(key string) error {
	_, err := s.db.Exec("DELETE FROM preferences WHERE key = $1", key)
	return err
}

func (s *Store) DeletePreferencesWithPrefix(prefix string) (int, error) {
	res, err := s.db.Exec("DELETE FROM preferences WHERE left(key, $1) = $2", len(prefix), prefix)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
