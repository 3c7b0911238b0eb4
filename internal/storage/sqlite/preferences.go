package sqlite

import (
	"database/sql"
	"errors"
	"time"

	"github.com/julianstephens/habitreel/internal/constants"
)

// GetPreference returns the stored value, or "" when the key is absent.
func (s *Store) GetPreference(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (s *Store) SetPreference(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(constants.TimestampFormat))
	return err
}

// DeletePreference removes a key. Missing keys are not an error.
func (s *Store) DeletePreference(key string) error {
	_, err := s.db.Exec("DELETE FROM preferences WHERE key = ?", key)
	return err
}

// DeletePreferencesWithPrefix removes every key starting with prefix and returns how
// many were removed.
func (s *Store) DeletePreferencesWithPrefix(prefix string) (int, error) {
	res, err := s.db.Exec("DELETE FROM preferences WHERE substr(key, 1, ?) = ?", len(prefix), prefix)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
