package health

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pinger is anything whose reachability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Status struct {
	Health   bool `json:"health"`
	Database bool `json:"database"`
	Cache    bool `json:"cache"`
}

type Service struct {
	db      Pinger
	cache   Pinger
	timeout time.Duration
	logger  *zap.Logger
}

func NewService(db, cache Pinger, timeout time.Duration, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Service{
		db:      db,
		cache:   cache,
		timeout: timeout,
		logger:  logger.With(zap.String("component", "health")),
	}
}

// Check reports that the process is serving.
func (s *Service) Check() Status {
	return Status{Health: true}
}

// Deep pings the database and the cache. Health is true only when both answer.
func (s *Service) Deep(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	st := Status{
		Database: s.ping(ctx, "database", s.db),
		Cache:    s.ping(ctx, "cache", s.cache),
	}
	st.Health = st.Database && st.Cache
	return st
}

func (s *Service) ping(ctx context.Context, name string, p Pinger) bool {
	if p == nil {
		return false
	}
	if err := p.Ping(ctx); err != nil {
		s.logger.Warn("health probe failed", zap.String("dependency", name), zap.Error(err))
		return false
	}
	return true
}
