package auth

import (
	"context"
	"sync"
	"time"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/db"
)

// MemoryStore keeps the credential pair in process memory.
// It suits tests and sessions that must not touch the disk.
type MemoryStore struct {
	mu   sync.RWMutex
	cred *db.Credential
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) AccessToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return "", nil
	}
	return m.cred.AccessToken, nil
}

func (m *MemoryStore) RefreshToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return "", nil
	}
	return m.cred.RefreshToken, nil
}

func (m *MemoryStore) SetTokens(ctx context.Context, tokens client.TokenPair) error {
	m.mu.Lock()
	m.cred = &db.Credential{
		ID:            1,
		AccessToken:   tokens.AccessToken,
		RefreshToken:  tokens.RefreshToken,
		AccessExpiry:  timePtr(tokens.AccessExpiry),
		RefreshExpiry: timePtr(tokens.RefreshExpiry),
		UpdatedAt:     time.Now(),
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.cred = nil
	m.mu.Unlock()
	return nil
}

// Credential returns a copy of the stored credential, or nil.
func (m *MemoryStore) Credential(ctx context.Context) (*db.Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cred == nil {
		return nil, nil
	}
	cp := *m.cred
	return &cp, nil
}
