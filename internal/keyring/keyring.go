// Package keyring stores remote-backend credentials in the OS keyring so
// they never land in the config file or the local data store.
package keyring

import (
	"errors"
	"fmt"

	"github.com/habitkit/habitkit/internal/constants"
	"github.com/zalando/go-keyring"
)

// Credential names recognized by the CLI.
const (
	// PostgresDSN holds the connection string for a direct Postgres backend.
	PostgresDSN = "postgres_dsn"
	// RemoteToken holds the bearer token for the REST backend.
	RemoteToken = "remote_token"
)

var (
	// ErrNotFound is returned when no credential is stored under the given name
	ErrNotFound = errors.New("credential not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Get retrieves a named credential from the OS keyring.
// Returns ErrNotFound if nothing is stored under that name.
func Get(name string) (string, error) {
	value, err := keyring.Get(constants.AppName, name)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores a named credential in the OS keyring.
func Set(name, value string) error {
	if value == "" {
		return errors.New("credential value cannot be empty")
	}
	if err := keyring.Set(constants.AppName, name, value); err != nil {
		return fmt.Errorf("failed to store credential in keyring: %w", err)
	}
	return nil
}

// Delete removes a named credential from the OS keyring.
func Delete(name string) error {
	err := keyring.Delete(constants.AppName, name)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credential from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is usable on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	// ErrNotFound means the keyring answered, it is just empty
	return err == nil || err == keyring.ErrNotFound
}
