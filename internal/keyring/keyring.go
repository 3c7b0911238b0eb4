// Package keyring keeps habitreel's secrets in the OS keyring: the PostgreSQL
// connection string and the photo provider token.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitreel/internal/constants"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Secret names one keyring entry under the habitreel service.
type Secret struct {
	User  string
	Label string
}

var (
	ConnectionString = Secret{User: constants.DefaultKeyringUser, Label: "connection string"}
	RewardToken      = Secret{User: constants.RewardKeyringUser, Label: "photo provider token"}
)

// Get returns the stored value, or ErrNotFound.
func (s Secret) Get() (string, error) {
	value, err := keyring.Get(constants.AppName, s.User)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func (s Secret) Set(value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", s.Label)
	}
	if err := keyring.Set(constants.AppName, s.User, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", s.Label, err)
	}
	return nil
}

func (s Secret) Delete() error {
	if err := keyring.Delete(constants.AppName, s.User); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", s.Label, err)
	}
	return nil
}

// GetConnectionString retrieves the database connection string from the OS keyring.
func GetConnectionString() (string, error) { return ConnectionString.Get() }

func SetConnectionString(connStr string) error { return ConnectionString.Set(connStr) }

func DeleteConnectionString() error { return ConnectionString.Delete() }

// GetRewardToken returns the bearer token for the photo provider, or "" when none is
// stored or the keyring cannot be reached.
func GetRewardToken() string {
	token, err := RewardToken.Get()
	if err != nil {
		return ""
	}
	return token
}

// IsAvailable checks if the OS keyring is available on the current system.
// A lookup that finds nothing still counts as available.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
