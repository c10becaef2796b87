package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/db"
	"github.com/rs/zerolog/log"
)

// DefaultLoginPath is the login endpoint relative to the API base URL.
const DefaultLoginPath = "/auth/login"

// refreshMargin is how close to expiry an access token is proactively refreshed.
const refreshMargin = 5 * time.Minute

// ErrNotLoggedIn is returned when no credentials are stored.
var ErrNotLoggedIn = errors.New("no credentials stored; please login first")

// Service handles login, logout and proactive refresh on top of a Client.
type Service struct {
	Client    *client.Client
	Storer    CredentialStorer
	LoginPath string
}

// NewService is the constructor for our auth service.
func NewService(c *client.Client, storer CredentialStorer) *Service {
	return &Service{
		Client:    c,
		Storer:    storer,
		LoginPath: DefaultLoginPath,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges username and password for a token pair and stores it.
// The login call is unauthenticated and never triggers a refresh.
func (s *Service) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("username and password cannot be empty")
	}

	data, err := client.Post[client.TokenResponse](ctx, s.Client, s.LoginPath,
		loginRequest{Username: username, Password: password}, client.WithoutAuth())
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	resp, ok := data.Get()
	if !ok || resp.Token == "" {
		return fmt.Errorf("login failed: response carried no access token")
	}

	if err := s.Storer.SetTokens(ctx, resp.Pair()); err != nil {
		return fmt.Errorf("failed to save tokens after login: %w", err)
	}
	log.Info().Str("username", username).Msg("Logged in and saved tokens successfully.")
	return nil
}

// Logout forgets the stored credentials.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.Storer.Clear(ctx); err != nil {
		return err
	}
	log.Info().Msg("Stored credentials cleared.")
	return nil
}

// Status describes the stored session.
type Status struct {
	LoggedIn      bool
	AccessExpiry  *time.Time
	RefreshExpiry *time.Time
	NeedsRefresh  bool
}

// Status reports whether credentials are stored and whether the access token is near expiry.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	cred, err := s.Storer.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve credentials: %w", err)
	}
	if cred.Empty() {
		return &Status{}, nil
	}
	valid, err := isTokenValid(cred)
	if err != nil {
		return nil, err
	}
	return &Status{
		LoggedIn:      true,
		AccessExpiry:  cred.AccessExpiry,
		RefreshExpiry: cred.RefreshExpiry,
		NeedsRefresh:  !valid,
	}, nil
}

// EnsureFresh refreshes the access token when it expires within five minutes.
// The refresh goes through the client's single-flight gate, so it joins any
// refresh already triggered by a 401.
func (s *Service) EnsureFresh(ctx context.Context) error {
	cred, err := s.Storer.Credential(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve credentials: %w", err)
	}

	valid, err := isTokenValid(cred)
	if err != nil {
		return err
	}
	if valid {
		return nil
	}

	log.Info().Msg("Access token expired or about to expire, refreshing...")
	return s.Client.Refresh(ctx)
}

// isTokenValid checks if the access token is still usable. An unknown expiry
// counts as valid; the client recovers from a rejected token on its own.
func isTokenValid(cred *db.Credential) (bool, error) {
	if cred.Empty() {
		return false, ErrNotLoggedIn
	}
	if cred.AccessToken == "" {
		return false, nil
	}
	if cred.AccessExpiry == nil {
		return true, nil
	}
	return time.Now().Add(refreshMargin).Before(*cred.AccessExpiry), nil
}
