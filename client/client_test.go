package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/habedi/hrgo/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type fakeStore struct {
	mu      sync.Mutex
	access  string
	refresh string
	cleared int
}

func (s *fakeStore) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, nil
}

func (s *fakeStore) RefreshToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh, nil
}

func (s *fakeStore) SetTokens(ctx context.Context, tokens client.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = tokens.AccessToken
	s.refresh = tokens.RefreshToken
	return nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access, s.refresh = "", ""
	s.cleared++
	return nil
}

func (s *fakeStore) snapshot() (string, string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.refresh, s.cleared
}

type profile struct {
	Name string `json:"name"`
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// gate holds the first n arrivals until all n have arrived, so that every
// request sees the stale token before any refresh happens.
type gate struct {
	n       int32
	arrived atomic.Int32
	all     chan struct{}
}

func newGate(n int32) *gate { return &gate{n: n, all: make(chan struct{})} }

func (g *gate) wait() {
	if g.arrived.Add(1) == g.n {
		close(g.all)
	}
	select {
	case <-g.all:
	case <-time.After(2 * time.Second):
	}
}

func TestParallelUnauthorized_SingleRefreshAndReplayWithNewToken(t *testing.T) {
	store := &fakeStore{access: "at-1", refresh: "rt-1"}
	var refreshCalls atomic.Int32
	var mu sync.Mutex
	var replayAuth []string
	g := newGate(3)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls.Add(1)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "rt-1", r.URL.Query().Get("refreshToken"))
			assert.Empty(t, r.Header.Get("Authorization"))
			time.Sleep(50 * time.Millisecond)
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"token":"at-2","refreshToken":"rt-2"}}`)
		case "/profile":
			auth := r.Header.Get("Authorization")
			if auth != "Bearer at-2" {
				g.wait()
				writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"token expired"}`)
				return
			}
			mu.Lock()
			replayAuth = append(replayAuth, auth)
			mu.Unlock()
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"name":"Ayse"}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := client.New(server.URL, store, client.WithTimeout(5*time.Second))

	eg, ctx := errgroup.WithContext(context.Background())
	names := make([]string, 3)
	for i := 0; i < 3; i++ {
		i := i
		eg.Go(func() error {
			p, err := client.Get[profile](ctx, c, "/profile", nil)
			if err != nil {
				return err
			}
			v, ok := p.Get()
			if !ok {
				return errors.New("profile data missing")
			}
			names[i] = v.Name
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	assert.Equal(t, int32(1), refreshCalls.Load(), "exactly one refresh call")
	assert.Equal(t, []string{"Ayse", "Ayse", "Ayse"}, names)
	assert.Equal(t, []string{"Bearer at-2", "Bearer at-2", "Bearer at-2"}, replayAuth)

	access, refresh, _ := store.snapshot()
	assert.Equal(t, "at-2", access)
	assert.Equal(t, "rt-2", refresh)
	assert.False(t, c.Refreshing())
}

func TestRefreshFailure_PropagatesSessionExpiredToAllWaiters(t *testing.T) {
	store := &fakeStore{access: "at-1", refresh: "rt-1"}
	var refreshCalls atomic.Int32
	g := newGate(3)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls.Add(1)
			time.Sleep(50 * time.Millisecond)
			writeJSON(w, http.StatusInternalServerError, `{"success":false,"message":"refresh token revoked"}`)
		default:
			g.wait()
			writeJSON(w, http.StatusUnauthorized, `{}`)
		}
	}))
	defer server.Close()

	c := client.New(server.URL, store, client.WithTimeout(5*time.Second))

	errs := make(chan error, 3)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Get[profile](context.Background(), c, "/profile", nil)
			errs <- err
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("queued requests did not settle after the refresh failed")
	}
	close(errs)

	for err := range errs {
		require.Error(t, err)
		assert.True(t, errors.Is(err, client.ErrSessionExpired), "got %v", err)
		var expired *client.SessionExpiredError
		assert.True(t, errors.As(err, &expired))
	}
	assert.Equal(t, int32(1), refreshCalls.Load())

	access, refresh, cleared := store.snapshot()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
	assert.GreaterOrEqual(t, cleared, 1)
}

func TestMissingRefreshToken_FailsClosedWithoutNetworkCall(t *testing.T) {
	store := &fakeStore{access: "at-1"}
	var refreshCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshCalls.Add(1)
		}
		writeJSON(w, http.StatusUnauthorized, `{}`)
	}))
	defer server.Close()

	c := client.New(server.URL, store)
	_, err := client.Get[profile](context.Background(), c, "/profile", nil)

	require.ErrorIs(t, err, client.ErrSessionExpired)
	assert.Equal(t, int32(0), refreshCalls.Load())
	_, _, cleared := store.snapshot()
	assert.Equal(t, 1, cleared)
}

func TestReplayUnauthorizedAgain_SurfacesAPIError(t *testing.T) {
	store := &fakeStore{access: "at-1", refresh: "rt-1"}
	var refreshCalls, profileCalls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshCalls.Add(1)
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"token":"at-2","refreshToken":"rt-2"}}`)
			return
		}
		profileCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, `{"message":"forbidden for this account"}`)
	}))
	defer server.Close()

	c := client.New(server.URL, store)
	_, err := client.Get[profile](context.Background(), c, "/profile", nil)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "forbidden for this account", apiErr.Message)
	assert.True(t, client.IsUnauthorized(err))
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, int32(2), profileCalls.Load())
}

func TestTimeout_AbortsRequestAndReturnsTimeoutError(t *testing.T) {
	release := make(chan struct{})
	aborted := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			aborted <- struct{}{}
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	timeout := 150 * time.Millisecond
	c := client.New(server.URL, &fakeStore{access: "at-1"}, client.WithTimeout(timeout))

	start := time.Now()
	_, err := client.Get[profile](context.Background(), c, "/slow", nil)
	elapsed := time.Since(start)

	var timeoutErr *client.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, timeout, timeoutErr.Timeout)
	var netErr *client.NetworkError
	assert.False(t, errors.As(err, &netErr), "timeout must not also be reported as a network error")
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, 2*time.Second)

	select {
	case <-aborted:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not observe the aborted request")
	}
}

func TestNetworkError_IsDistinctFromTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	c := client.New(baseURL, &fakeStore{access: "at-1"})
	_, err := client.Get[profile](context.Background(), c, "/profile", nil)

	var netErr *client.NetworkError
	require.ErrorAs(t, err, &netErr)
	var timeoutErr *client.TimeoutError
	assert.False(t, errors.As(err, &timeoutErr))
}

func TestWithoutAuth_NeverTriggersRefresh(t *testing.T) {
	store := &fakeStore{access: "at-1", refresh: "rt-1"}
	var refreshCalls atomic.Int32
	var loginAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls.Add(1)
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"token":"at-2","refreshToken":"rt-2"}}`)
		case "/auth/login":
			loginAuth = r.Header.Get("Authorization")
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"invalid credentials"}`)
		}
	}))
	defer server.Close()

	c := client.New(server.URL, store)
	_, err := client.Post[client.TokenResponse](context.Background(), c, "/auth/login",
		map[string]string{"username": "u", "password": "p"}, client.WithoutAuth())

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.Empty(t, loginAuth)
	assert.Equal(t, int32(0), refreshCalls.Load())

	access, _, cleared := store.snapshot()
	assert.Equal(t, "at-1", access)
	assert.Zero(t, cleared)
}

func TestAuthorizationHeader_ReadFromStoreOnEveryCall(t *testing.T) {
	store := &fakeStore{access: "at-1", refresh: "rt-1"}
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"name":"x"}}`)
	}))
	defer server.Close()

	c := client.New(server.URL, store)
	_, err := client.Get[profile](context.Background(), c, "/profile", nil)
	require.NoError(t, err)

	require.NoError(t, store.SetTokens(context.Background(), client.TokenPair{AccessToken: "at-9", RefreshToken: "rt-9"}))
	_, err = client.Get[profile](context.Background(), c, "/profile", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer at-1", "Bearer at-9"}, seen)
}

func TestAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			writeJSON(w, http.StatusNotFound, `{"success":false,"message":"employee not found"}`)
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("upstream exploded"))
		case "/rejected":
			writeJSON(w, http.StatusOK, `{"succeeded":false,"message":"leave balance exhausted"}`)
		}
	}))
	defer server.Close()

	c := client.New(server.URL, &fakeStore{access: "at-1"})
	ctx := context.Background()

	_, err := client.Get[profile](ctx, c, "/missing", nil)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "employee not found", apiErr.Message)
	assert.True(t, client.IsNotFound(err))

	_, err = client.Delete[any](ctx, c, "/broken")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP error 500", apiErr.Message)

	_, err = client.Post[any](ctx, c, "/rejected", map[string]int{"days": 3})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.Status)
	assert.Equal(t, "leave balance exhausted", apiErr.Message)
}

func TestOptionalData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/list":
			writeJSON(w, http.StatusOK, `{"succeeded":true,"data":[{"name":"a"},{"name":"b"}]}`)
		case "/null":
			writeJSON(w, http.StatusOK, `{"success":true,"data":null}`)
		case "/empty":
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	defer server.Close()

	c := client.New(server.URL, nil)
	ctx := context.Background()

	list, err := client.Get[[]profile](ctx, c, "/list", nil)
	require.NoError(t, err)
	v, ok := list.Get()
	require.True(t, ok)
	assert.Len(t, v, 2)

	missing, err := client.Get[profile](ctx, c, "/null", nil)
	require.NoError(t, err)
	assert.False(t, missing.Present())
	assert.Equal(t, "fallback", missing.OrElse(profile{Name: "fallback"}).Name)

	empty, err := client.Put[[]profile](ctx, c, "/empty", profile{Name: "x"})
	require.NoError(t, err)
	assert.False(t, empty.Present())
	assert.Empty(t, empty.OrElse(nil))
}

func TestQuery_SkipsNilValues(t *testing.T) {
	var rawQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}))
	defer server.Close()

	var nilStatus *string
	year := 2024
	c := client.New(server.URL, nil)
	_, err := client.Get[any](context.Background(), c, "/leave-requests", client.Query{
		"status": nilStatus,
		"type":   nil,
		"page":   2,
		"year":   &year,
	})
	require.NoError(t, err)
	assert.Equal(t, "page=2&year=2024", rawQuery)
}

func TestRefreshEndpoint_GETAndExplicitRefresh(t *testing.T) {
	store := &fakeStore{access: "at-1", refresh: "rt-1"}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/token/refresh", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"token":"at-2","refreshToken":"rt-2","expiration":"2030-01-02T03:04:05Z"}}`)
	}))
	defer server.Close()

	c := client.New(server.URL+"/", store, client.WithRefreshEndpoint("get", "/api/token/refresh"))
	require.NoError(t, c.Refresh(context.Background()))

	access, refresh, _ := store.snapshot()
	assert.Equal(t, "at-2", access)
	assert.Equal(t, "rt-2", refresh)
}

func TestRateLimit_SpacesRequests(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}))
	defer server.Close()

	c := client.New(server.URL, nil, client.WithRateLimit(10))
	start := time.Now()
	for i := 0; i < 12; i++ {
		_, err := client.Get[any](context.Background(), c, "/ping", nil)
		require.NoError(t, err)
	}
	// The bucket starts full with 10 tokens; the remaining 2 wait ~100ms each.
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	assert.Equal(t, int32(12), calls.Load())
}
