package app

import (
	"context"
	"errors"
	"log"

	"github.com/arnavshah/roster-compliance-go/pkg/auth"
	"github.com/arnavshah/roster-compliance-go/pkg/cache"
	"github.com/arnavshah/roster-compliance-go/pkg/config"
	"github.com/arnavshah/roster-compliance-go/pkg/handlers"
	"github.com/arnavshah/roster-compliance-go/pkg/scheduling"
	"github.com/arnavshah/roster-compliance-go/pkg/store"
	"github.com/gin-gonic/gin"
)

// App is a fully wired API: the router and the resources behind it
type App struct {
	Router  *gin.Engine
	Handler *handlers.Handler
	closers []func() error
}

// Build opens the store, the optional reliability cache and the auth
// manager described by cfg, and registers every route.
func Build(cfg *config.Config, lg *log.Logger) (*App, error) {
	if lg == nil {
		lg = log.Default()
	}
	if cfg.JWTSecret == "" || cfg.APIMasterSecret == "" {
		return nil, errors.New("JWT_SECRET and API_MASTER_SECRET must be set")
	}
	gin.SetMode(cfg.GinMode)

	weights, err := cfg.ScoringWeights()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DatabaseURL, cfg.DataPath, lg)
	if err != nil {
		return nil, err
	}
	a := &App{closers: []func() error{st.Close}}

	if err := auth.EnsureAdminExists(context.Background(), st, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		lg.Printf("Admin bootstrap skipped: %v", err)
	}

	var reliability scheduling.ReliabilityProvider = st
	if cfg.RedisURL != "" {
		client, err := cache.NewClient(cfg.RedisURL)
		if err != nil {
			lg.Printf("Redis unavailable, reliability is not cached: %v", err)
		} else {
			reliability = cache.NewReliabilityCache(client, st, cfg.ReliabilityCacheTTL(), lg)
			a.closers = append(a.closers, client.Close)
			lg.Printf("Reliability cache enabled (ttl %s)", cfg.ReliabilityCacheTTL())
		}
	}

	facade := scheduling.NewFacade(st, reliability, lg)
	facade.Weights = weights

	a.Handler = &handlers.Handler{
		Store:  st,
		Facade: facade,
		Auth:   auth.NewManager(cfg.JWTSecret, cfg.APIMasterSecret, cfg.AccessTokenTTL()),
		Logger: lg,
	}
	a.Router = handlers.NewRouter(a.Handler)
	return a, nil
}

// Close releases everything Build opened, newest first
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
