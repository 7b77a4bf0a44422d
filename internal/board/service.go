package board

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"cboard-backend/internal/model"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// Source provides the raw organization and flyer records.
type Source interface {
	Organizations(ctx context.Context) ([]model.Organization, error)
	Flyers(ctx context.Context) ([]model.Flyer, error)
}

// ImageResolver fills in missing flyer images.
type ImageResolver interface {
	Resolve(ctx context.Context, flyers []model.Flyer) []model.Flyer
}

// Options configures a Service. Zero values fall back to the local zone, the
// wall clock, a time-seeded random source and two trending flyers.
type Options struct {
	Location      *time.Location
	TrendingCount int
	Now           func() time.Time
	Rand          *rand.Rand
	Resolver      ImageResolver
	Logger        *zap.Logger
}

// Service answers the board queries on top of a Source.
type Service struct {
	source   Source
	filter   Filter
	trending int
	now      func() time.Time
	resolver ImageResolver
	logger   *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService creates a Service reading from source.
func NewService(source Source, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("board")

	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.TrendingCount <= 0 {
		opts.TrendingCount = 2
	}

	return &Service{
		source: source,
		filter: Filter{
			Location: opts.Location,
			OnInvalid: func(f model.Flyer, err error) {
				logger.Warn("skipping flyer with invalid end date",
					zap.String("flyer", f.ID), zap.Error(err))
			},
		},
		trending: opts.TrendingCount,
		now:      opts.Now,
		resolver: opts.Resolver,
		logger:   logger,
		rng:      opts.Rand,
	}
}

// Organizations returns all organizations.
func (s *Service) Organizations(ctx context.Context) ([]model.Organization, error) {
	orgs, err := s.source.Organizations(ctx)
	if err != nil {
		s.logger.Error("fetching organizations", zap.Error(err))
		return nil, err
	}
	return orgs, nil
}

// OrganizationBySlug returns the organization with the given slug.
func (s *Service) OrganizationBySlug(ctx context.Context, slug string) (model.Organization, error) {
	orgs, err := s.Organizations(ctx)
	if err != nil {
		return model.Organization{}, err
	}
	for _, o := range orgs {
		if o.Slug == slug {
			return o, nil
		}
	}
	return model.Organization{}, fmt.Errorf("organization %q: %w", slug, ErrNotFound)
}

// Flyers returns all flyers in sheet order.
func (s *Service) Flyers(ctx context.Context) ([]model.Flyer, error) {
	flyers, err := s.fetchFlyers(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, flyers), nil
}

// UpcomingFlyers returns flyers that have not ended yet.
func (s *Service) UpcomingFlyers(ctx context.Context) ([]model.Flyer, error) {
	return s.filtered(ctx, s.filter.Upcoming)
}

// PastFlyers returns flyers that have ended.
func (s *Service) PastFlyers(ctx context.Context) ([]model.Flyer, error) {
	return s.filtered(ctx, s.filter.Past)
}

// WeeklyFlyers returns flyers ending within the next week.
func (s *Service) WeeklyFlyers(ctx context.Context) ([]model.Flyer, error) {
	return s.filtered(ctx, s.filter.Weekly)
}

// DailyFlyers returns flyers ending later today.
func (s *Service) DailyFlyers(ctx context.Context) ([]model.Flyer, error) {
	return s.filtered(ctx, s.filter.Daily)
}

// TrendingFlyers returns a random selection of upcoming flyers.
func (s *Service) TrendingFlyers(ctx context.Context) ([]model.Flyer, error) {
	flyers, err := s.fetchFlyers(ctx)
	if err != nil {
		return nil, err
	}
	upcoming := s.filter.Upcoming(flyers, s.now())

	s.mu.Lock()
	picked := Sample(upcoming, s.trending, s.rng)
	s.mu.Unlock()

	return s.resolve(ctx, picked), nil
}

// filtered applies fn before image resolution so only returned flyers are
// resolved.
func (s *Service) filtered(ctx context.Context, fn func([]model.Flyer, time.Time) []model.Flyer) ([]model.Flyer, error) {
	flyers, err := s.fetchFlyers(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, fn(flyers, s.now())), nil
}

func (s *Service) fetchFlyers(ctx context.Context) ([]model.Flyer, error) {
	flyers, err := s.source.Flyers(ctx)
	if err != nil {
		s.logger.Error("fetching flyers", zap.Error(err))
		return nil, err
	}
	return flyers, nil
}

func (s *Service) resolve(ctx context.Context, flyers []model.Flyer) []model.Flyer {
	if s.resolver == nil || len(flyers) == 0 {
		return flyers
	}
	return s.resolver.Resolve(ctx, flyers)
}
