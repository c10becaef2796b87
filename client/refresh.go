package client

import (
	"context"
	"errors"

	"github.com/habedi/hrgo/pkg/dates"
	"github.com/rs/zerolog/log"
)

type refreshState int

const (
	stateIdle refreshState = iota
	stateRefreshing
)

func (s refreshState) String() string {
	if s == stateRefreshing {
		return "refreshing"
	}
	return "idle"
}

// TokenResponse is the data payload returned by the login and refresh endpoints.
type TokenResponse struct {
	Token                  string `json:"token"`
	RefreshToken           string `json:"refreshToken"`
	Expiration             string `json:"expiration,omitempty"`
	RefreshTokenExpiration string `json:"refreshTokenExpiration,omitempty"`
}

// Pair converts the response into a TokenPair. Unparseable expiries are left zero.
func (r TokenResponse) Pair() TokenPair {
	pair := TokenPair{AccessToken: r.Token, RefreshToken: r.RefreshToken}
	if r.Expiration != "" {
		if t, err := dates.ParseISO(r.Expiration); err == nil {
			pair.AccessExpiry = t
		} else {
			log.Warn().Err(err).Str("expiration", r.Expiration).Msg("Ignoring unparseable access token expiry")
		}
	}
	if r.RefreshTokenExpiration != "" {
		if t, err := dates.ParseISO(r.RefreshTokenExpiration); err == nil {
			pair.RefreshExpiry = t
		} else {
			log.Warn().Err(err).Str("expiration", r.RefreshTokenExpiration).Msg("Ignoring unparseable refresh token expiry")
		}
	}
	return pair
}

// Refresh runs the refresh protocol now, or joins the refresh already in flight.
func (c *Client) Refresh(ctx context.Context) error {
	return c.awaitRefresh(ctx, c.currentGeneration())
}

// Refreshing reports whether a refresh call is outstanding.
func (c *Client) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateRefreshing
}

func (c *Client) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// awaitRefresh returns nil once a token newer than generation seen is stored,
// or the SessionExpiredError of the refresh that failed.
//
// At most one refresh call is outstanding. Callers arriving while one is in
// flight are queued and resolved in FIFO order with that refresh's outcome.
func (c *Client) awaitRefresh(ctx context.Context, seen uint64) error {
	c.mu.Lock()
	if c.state == stateIdle && c.generation != seen {
		c.mu.Unlock()
		return nil
	}
	if c.state == stateRefreshing {
		done := make(chan error, 1)
		c.waiters = append(c.waiters, done)
		queued := len(c.waiters)
		c.mu.Unlock()

		log.Debug().Int("queued", queued).Msg("Refresh in flight, waiting for its outcome")
		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.state = stateRefreshing
	c.mu.Unlock()

	err := c.refresh(ctx)

	c.mu.Lock()
	if err == nil {
		c.generation++
	}
	waiters := c.waiters
	c.waiters = nil
	c.state = stateIdle
	c.mu.Unlock()

	for _, w := range waiters {
		w <- err
	}
	return err
}

// refresh calls the refresh endpoint and persists the new pair. Any failure
// clears the store and yields a SessionExpiredError.
//
// The call is detached from the caller's cancellation because queued requests
// depend on its outcome; it is still bounded by the client timeout.
func (c *Client) refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	refreshToken := c.readToken(ctx, "refresh")
	if refreshToken == "" {
		log.Warn().Msg("No refresh token available, session expired")
		c.clearTokens(ctx)
		return &SessionExpiredError{Reason: "no refresh token available"}
	}

	req := Request{
		Method: c.refreshMethod,
		Path:   c.refreshPath,
		Query:  Query{"refreshToken": refreshToken},
		NoAuth: true,
	}
	res, err := c.send(ctx, req, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Token refresh failed, session expired")
		c.clearTokens(ctx)
		return &SessionExpiredError{Reason: "token refresh failed", Err: err}
	}

	data, err := Decode[TokenResponse](res.env)
	tokens, ok := data.Get()
	if err == nil && (!ok || tokens.Token == "") {
		err = errors.New("refresh response carried no access token")
	}
	if err != nil {
		log.Warn().Err(err).Msg("Invalid token refresh response, session expired")
		c.clearTokens(ctx)
		return &SessionExpiredError{Reason: "invalid refresh response", Err: err}
	}

	pair := tokens.Pair()
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	if err := c.store.SetTokens(ctx, pair); err != nil {
		log.Error().Err(err).Msg("Failed to persist refreshed tokens")
		c.clearTokens(ctx)
		return &SessionExpiredError{Reason: "failed to persist refreshed tokens", Err: err}
	}

	log.Info().Msg("Access token refreshed and saved successfully.")
	return nil
}

func (c *Client) clearTokens(ctx context.Context) {
	if c.store == nil {
		return
	}
	if err := c.store.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to clear stored tokens")
	}
}
