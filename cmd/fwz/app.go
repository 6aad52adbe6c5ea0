package main

import (
	"context"
	"net/http"

	"github.com/jrsteele09/foodwaste-zero/gate"
	"github.com/jrsteele09/foodwaste-zero/identity"
	"github.com/jrsteele09/foodwaste-zero/internal/config"
	"github.com/jrsteele09/foodwaste-zero/internal/logging"
	"github.com/jrsteele09/foodwaste-zero/inventory"
	"github.com/jrsteele09/foodwaste-zero/session"
	"github.com/jrsteele09/foodwaste-zero/session/boltrepo"
	"github.com/pkg/errors"
)

// app is one CLI invocation's wiring: durable token repo, session manager,
// gate and the authorized inventory client.
type app struct {
	repo      *boltrepo.BoltKVRepo
	manager   *session.Manager
	gate      *gate.Gate
	inventory *inventory.Client
}

func newApp(c config.Config) (*app, error) {
	logging.Setup(c.GetLogLevel(), c.GetEnv())

	repo, err := boltrepo.Open(c.GetTokenPath(), boltrepo.DefaultBucket)
	if err != nil {
		return nil, errors.Wrap(err, "opening token store")
	}

	httpClient := &http.Client{Timeout: c.GetHTTPTimeout()}
	provider := identity.NewClient(c.GetAPIBaseURL(), identity.WithHTTPClient(httpClient))

	manager, err := session.NewManager(session.NewStore(repo), provider)
	if err != nil {
		repo.Close()
		return nil, err
	}

	return &app{
		repo:      repo,
		manager:   manager,
		gate:      gate.New(),
		inventory: inventory.NewClient(c.GetAPIBaseURL(), manager.HTTPClient(httpClient)),
	}, nil
}

// boot runs the session boot sequence. It returns once the session has
// settled or ctx is done.
func (a *app) boot(ctx context.Context) (session.Snapshot, error) {
	if err := a.manager.Start(ctx); err != nil {
		return session.Snapshot{}, err
	}
	return a.manager.Snapshot(), nil
}

func (a *app) close() {
	a.manager.Close()
	_ = a.repo.Close()
}
