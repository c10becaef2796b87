package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/db"
	"github.com/rs/zerolog/log"
)

// DefaultReadTimeout is how long a token read may stall before it is treated as "no value".
const DefaultReadTimeout = 3 * time.Second

// Store persists the credential pair through a db.CredentialRepository.
// Token reads never fail: a storage error or a stall beyond ReadTimeout yields "".
type Store struct {
	repo        db.CredentialRepository
	ReadTimeout time.Duration
}

// NewStore wraps repo. A non-positive readTimeout selects DefaultReadTimeout.
func NewStore(repo db.CredentialRepository, readTimeout time.Duration) *Store {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &Store{repo: repo, ReadTimeout: readTimeout}
}

// AccessToken implements client.TokenStore.
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	cred := s.boundedGet(ctx)
	if cred == nil {
		return "", nil
	}
	return cred.AccessToken, nil
}

// RefreshToken implements client.TokenStore.
func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	cred := s.boundedGet(ctx)
	if cred == nil {
		return "", nil
	}
	return cred.RefreshToken, nil
}

// SetTokens implements client.TokenStore.
func (s *Store) SetTokens(ctx context.Context, tokens client.TokenPair) error {
	cred := &db.Credential{
		AccessToken:   tokens.AccessToken,
		RefreshToken:  tokens.RefreshToken,
		AccessExpiry:  timePtr(tokens.AccessExpiry),
		RefreshExpiry: timePtr(tokens.RefreshExpiry),
	}
	if err := s.repo.Upsert(ctx, cred); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	return nil
}

// Clear implements client.TokenStore.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	return nil
}

// Credential returns the stored row, or nil when none is stored. Unlike the token
// getters it reports storage errors.
func (s *Store) Credential(ctx context.Context) (*db.Credential, error) {
	return s.repo.Get(ctx)
}

type getResult struct {
	cred *db.Credential
	err  error
}

// boundedGet reads the credential, giving up after ReadTimeout.
func (s *Store) boundedGet(ctx context.Context) *db.Credential {
	ctx, cancel := context.WithTimeout(ctx, s.ReadTimeout)
	defer cancel()

	ch := make(chan getResult, 1)
	go func() {
		cred, err := s.repo.Get(ctx)
		ch <- getResult{cred: cred, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			log.Warn().Err(res.err).Msg("Failed to read stored credentials")
			return nil
		}
		return res.cred
	case <-ctx.Done():
		log.Warn().Dur("timeout", s.ReadTimeout).Msg("Credential storage read stalled, treating as empty")
		return nil
	}
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
