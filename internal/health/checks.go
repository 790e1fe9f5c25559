package health

import (
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/selfservice-widget/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

const version = "1.0.0"

// NewHealthHandler registers a check for every backing store that is enabled.
// Without Postgres and Redis the service is healthy on its own.
func NewHealthHandler(cfg *config.Config) (*health.Health, error) {

	checks := []health.Config{}

	if cfg.Database.Enabled {
		checks = append(checks, health.Config{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: true,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		})
	}

	if cfg.RedisConnect.Enabled {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    "selfservice-widget",
			Version: version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}
