package cmd

import (
	"context"
	"io"
	"os"

	"github.com/habedi/hrgo/auth"
	"github.com/habedi/hrgo/client"
	"github.com/habedi/hrgo/config"
	"github.com/habedi/hrgo/db"
	"github.com/habedi/hrgo/hr"
	"github.com/habedi/hrgo/pkg/clierr"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// app carries what the commands share: settings and a lazily opened session.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	in      io.Reader
	sess    *session
}

// session is the wired client stack for one command invocation.
type session struct {
	client *client.Client
	store  *auth.Store
	auth   *auth.Service
	hr     *hr.Service
	perms  db.PermissionRepository
}

func newApp() *app {
	return &app{v: viper.New(), in: os.Stdin}
}

func (a *app) loadConfig() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	a.cfg = cfg
	return nil
}

// session opens the database and builds the client on first use.
func (a *app) session() (*session, error) {
	if a.sess != nil {
		return a.sess, nil
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, clierr.New(clierr.Validation, err.Error(), err)
	}

	if a.cfg.DBPath != "" {
		db.Path = a.cfg.DBPath
	} else if err := db.ConfigurePath(); err != nil {
		return nil, clierr.New(clierr.Internal, "Unable to locate the credential database.", err)
	}
	if err := db.InitDB(); err != nil {
		return nil, clierr.New(clierr.Internal, "Unable to open the credential database.", err)
	}

	store := auth.NewStore(db.NewCredentialRepository(db.GetDB()), a.cfg.StoreTimeout)
	opts := []client.Option{
		client.WithTimeout(a.cfg.Timeout),
		client.WithRefreshEndpoint(a.cfg.RefreshMethod, a.cfg.RefreshPath),
	}
	if a.cfg.RateLimit > 0 {
		opts = append(opts, client.WithRateLimit(a.cfg.RateLimit))
	}
	c := client.New(a.cfg.BaseURL, store, opts...)

	a.sess = &session{
		client: c,
		store:  store,
		auth:   auth.NewService(c, store),
		hr:     hr.NewService(c),
		perms:  db.NewPermissionRepository(db.GetDB()),
	}
	log.Debug().Str("base_url", c.BaseURL()).Str("db", db.Path).Msg("Session ready")
	return a.sess, nil
}

// authed returns a session whose access token is fresh, refreshing it first if
// it expires within five minutes.
func (a *app) authed(ctx context.Context) (*session, error) {
	s, err := a.session()
	if err != nil {
		return nil, err
	}
	if err := s.auth.EnsureFresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (a *app) close() {
	if a.sess == nil {
		return
	}
	if err := db.CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close the database.")
	}
	a.sess = nil
}
