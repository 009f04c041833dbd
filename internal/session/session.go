package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager issues short-lived admin session tokens. A token only proves who
// logged in; every privileged action still re-checks the wallet against the
// on-chain authority.
type Manager struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]entry

	now func() time.Time
}

type entry struct {
	wallet    string
	expiresAt time.Time
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		ttl:      ttl,
		sessions: make(map[string]entry),
		now:      time.Now,
	}
}

// Create issues a new token bound to the wallet address.
func (m *Manager) Create(wallet string) (string, time.Time) {
	token := uuid.NewString()
	expiresAt := m.now().Add(m.ttl)

	m.mu.Lock()
	m.sessions[token] = entry{wallet: wallet, expiresAt: expiresAt}
	m.mu.Unlock()

	return token, expiresAt
}

// Wallet returns the wallet bound to a live token. Expired tokens are
// removed on lookup.
func (m *Manager) Wallet(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[token]
	if !ok {
		return "", false
	}
	if m.now().After(e.expiresAt) {
		delete(m.sessions, token)
		return "", false
	}
	return e.wallet, true
}

// Revoke drops a token immediately.
func (m *Manager) Revoke(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
