package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/shopdesk-backend/pkg/logger"
)

type pinger interface {
	Ping(context.Context) error
}

type consumer interface {
	Run(ctx context.Context) error
}

type ServiceParams struct {
	Logger       *logger.Logger
	Dependencies map[string]pinger
	Consumers    map[string]consumer
}

// Service runs every Pub/Sub consumer side by side. When one of them stops
// the rest are canceled and Run reports the first failure.
type Service struct {
	logg      *logger.Logger
	deps      map[string]pinger
	consumers map[string]consumer
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("worker: logger is required")
	}
	if len(params.Consumers) == 0 {
		return nil, errors.New("worker: at least one consumer is required")
	}
	for name, c := range params.Consumers {
		if c == nil {
			return nil, fmt.Errorf("worker: consumer %s is nil", name)
		}
	}
	return &Service{logg: params.Logger, deps: params.Dependencies, consumers: params.Consumers}, nil
}

func (s *Service) checkDependencies(ctx context.Context) error {
	for _, name := range slices.Sorted(maps.Keys(s.deps)) {
		dep := s.deps[name]
		if dep == nil {
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "dependency", name), "worker.dependency_down", err)
			return fmt.Errorf("%s ping failed: %w", name, err)
		}
	}
	return nil
}

// Run blocks until ctx is canceled or a consumer exits.
func (s *Service) Run(ctx context.Context) error {
	if err := s.checkDependencies(ctx); err != nil {
		return err
	}
	names := slices.Sorted(maps.Keys(s.consumers))
	s.logg.Info(s.logg.WithField(ctx, "consumers", names), "worker.started")

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		c := s.consumers[name]
		g.Go(func() error {
			err := c.Run(gctx)
			switch {
			case err != nil:
				return fmt.Errorf("%s consumer: %w", name, err)
			case gctx.Err() == nil:
				return fmt.Errorf("%s consumer exited", name)
			}
			return nil
		})
	}

	err := g.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.logg.Info(ctx, "worker.stopped")
		return ctxErr
	}
	s.logg.Error(ctx, "worker.consumer_failed", err)
	return err
}
