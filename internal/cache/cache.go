package cache

import (
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"
)

// Manager remembers the last value seen per key and answers the question
// "has anything changed since the last time I asked?".
//
// Behaviour:
//   - The first Changed call for a key always returns true and stores v.
//   - The stored value is replaced only when a difference is detected.
//   - Values are compared with reflect.DeepEqual, so pointer fields compare
//     by the values they point to.
type Manager struct {
	mu     sync.Mutex
	prev   map[string]any
	logger *logrus.Logger
}

// NewManager returns a ready-to-use cache manager.
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{prev: make(map[string]any), logger: logger}
}

// Changed compares v against the value stored under key. If they differ it
// stores v and returns true.
func (m *Manager) Changed(key string, v any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.prev[key]; ok && reflect.DeepEqual(prev, v) {
		return false
	}
	m.prev[key] = v
	m.logger.WithField("key", key).Trace("cache: value changed")
	return true
}

// Forget drops the stored value for key so the next Changed returns true.
// Used after a failed transmit to force a resend.
func (m *Manager) Forget(key string) {
	m.mu.Lock()
	delete(m.prev, key)
	m.mu.Unlock()
}
