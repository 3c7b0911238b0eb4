package reward

import (
	"errors"
	"strings"
	"sync"
)

type memPrefs struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemPrefs() *memPrefs {
	return &memPrefs{values: make(map[string]string)}
}

func (m *memPrefs) GetPreference(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memPrefs) SetPreference(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memPrefs) DeletePreference(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memPrefs) DeletePreferencesWithPrefix(prefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for key := range m.values {
		if strings.HasPrefix(key, prefix) {
			delete(m.values, key)
			n++
		}
	}
	return n, nil
}

var errStoreDown = errors.New("store unavailable")

// brokenPrefs fails every call, like a disabled storage backend.
type brokenPrefs struct{}

func (brokenPrefs) GetPreference(string) (string, error) { return "", errStoreDown }
func (brokenPrefs) SetPreference(string, string) error   { return errStoreDown }
func (brokenPrefs) DeletePreference(string) error        { return errStoreDown }
func (brokenPrefs) DeletePreferencesWithPrefix(string) (int, error) {
	return 0, errStoreDown
}
