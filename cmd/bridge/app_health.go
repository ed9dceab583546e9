package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/intercord/pkg/dataaccess"
	"github.com/Jacobbrewer1/intercord/pkg/dataaccess/connection"
	"github.com/alexliesenfeld/health"
)

func (a *App) healthCheck() Controller {
	opts := []health.CheckerOption{
		// Set a TTL of 1 second for the results of the checks.
		health.WithCacheDuration(1 * time.Second),

		// Set a timeout of 2 seconds for the checks.
		health.WithTimeout(2 * time.Second),

		// Monitor the health of the Discord API.
		health.WithPeriodicCheck(15*time.Second, 5*time.Second, health.Check{
			Name: "Discord_API",
			Check: func(ctx context.Context) error {
				if _, err := a.Session().GatewayBot(); err != nil {
					return fmt.Errorf("failed to ping Discord API: %w", err)
				}
				return nil
			},
			Timeout:        3 * time.Second,
			StatusListener: a.healthStatusListener,
		}),
	}

	if a.api != nil {
		// Monitor the Intercom token. The check is periodic to stay well within the API rate limit.
		opts = append(opts, health.WithPeriodicCheck(60*time.Second, 5*time.Second, health.Check{
			Name: "Intercom_API",
			Check: func(ctx context.Context) error {
				if _, err := a.api.Me(ctx); err != nil {
					return fmt.Errorf("failed to reach Intercom API: %w", err)
				}
				return nil
			},
			Timeout:        5 * time.Second,
			StatusListener: a.healthStatusListener,
		}))
	}

	if dataaccess.MongoDB != nil {
		// Monitor the health of the database (MongoDB).
		opts = append(opts, health.WithCheck(health.Check{
			Name: "MongoDB",
			Check: func(ctx context.Context) error {
				if err := connection.Ping(ctx, dataaccess.MongoDB); err != nil {
					return fmt.Errorf("failed to ping MongoDB: %w", err)
				}
				return nil
			},
			Timeout:        2 * time.Second,
			StatusListener: a.healthStatusListener,
		}))
	}

	return Controller(health.NewHandler(health.NewChecker(opts...)))
}

func (a *App) healthStatusListener(_ context.Context, name string, state health.CheckState) {
	a.Info("Health check status changed",
		slog.String("name", name),
		slog.String("state", string(state.Status)),
	)
}
