package board

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cboard-backend/internal/model"
)

type fakeSource struct {
	orgs   []model.Organization
	flyers []model.Flyer
	err    error
}

func (f *fakeSource) Organizations(ctx context.Context) ([]model.Organization, error) {
	return f.orgs, f.err
}

func (f *fakeSource) Flyers(ctx context.Context) ([]model.Flyer, error) {
	return f.flyers, f.err
}

type stubResolver struct {
	calls int
	seen  []string
}

func (r *stubResolver) Resolve(ctx context.Context, flyers []model.Flyer) []model.Flyer {
	r.calls++
	r.seen = append(r.seen, ids(flyers)...)
	out := make([]model.Flyer, len(flyers))
	for i, f := range flyers {
		if f.ImageURL == "" {
			f.ImageURL = "resolved"
		}
		out[i] = f
	}
	return out
}

func newTestService(src Source, resolver ImageResolver) *Service {
	return NewService(src, Options{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
		Rand:     rand.New(rand.NewSource(42)),
		Resolver: resolver,
	})
}

func TestOrganizationBySlug(t *testing.T) {
	src := &fakeSource{orgs: []model.Organization{
		{ID: "1", Name: "Dance", Slug: "dance"},
		{ID: "2", Name: "Chess", Slug: "chess"},
	}}
	svc := newTestService(src, nil)

	org, err := svc.OrganizationBySlug(context.Background(), "chess")
	require.NoError(t, err)
	assert.Equal(t, "Chess", org.Name)

	_, err = svc.OrganizationBySlug(context.Background(), "rowing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrganizationBySlugDuplicate(t *testing.T) {
	src := &fakeSource{orgs: []model.Organization{
		{ID: "1", Name: "Dance A", Slug: "dance"},
		{ID: "2", Name: "Dance B", Slug: "dance"},
	}}
	svc := newTestService(src, nil)

	org, err := svc.OrganizationBySlug(context.Background(), "dance")
	require.NoError(t, err)
	assert.Equal(t, "Dance A", org.Name)
}

func TestServiceSourceError(t *testing.T) {
	boom := errors.New("sheets unavailable")
	svc := newTestService(&fakeSource{err: boom}, nil)
	ctx := context.Background()

	_, err := svc.Organizations(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = svc.OrganizationBySlug(ctx, "dance")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNotFound)

	for name, fn := range map[string]func(context.Context) ([]model.Flyer, error){
		"all":      svc.Flyers,
		"upcoming": svc.UpcomingFlyers,
		"past":     svc.PastFlyers,
		"weekly":   svc.WeeklyFlyers,
		"daily":    svc.DailyFlyers,
		"trending": svc.TrendingFlyers,
	} {
		_, err := fn(ctx)
		assert.ErrorIs(t, err, boom, name)
	}
}

func TestServiceFilters(t *testing.T) {
	svc := newTestService(&fakeSource{flyers: testFlyers()}, nil)
	ctx := context.Background()

	all, err := svc.Flyers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(testFlyers()))

	upcoming, err := svc.UpcomingFlyers(ctx)
	require.NoError(t, err)
	assert.Len(t, upcoming, 5)

	past, err := svc.PastFlyers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"yesterday", "last-month"}, ids(past))

	weekly, err := svc.WeeklyFlyers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tonight", "tomorrow", "in-3-days"}, ids(weekly))

	daily, err := svc.DailyFlyers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"tonight"}, ids(daily))
}

func TestTrendingFlyers(t *testing.T) {
	svc := newTestService(&fakeSource{flyers: testFlyers()}, nil)

	upcoming := map[string]bool{}
	for _, id := range []string{"tonight", "tomorrow", "in-3-days", "in-8-days", "next-month"} {
		upcoming[id] = true
	}

	for i := 0; i < 20; i++ {
		trending, err := svc.TrendingFlyers(context.Background())
		require.NoError(t, err)
		require.Len(t, trending, 2)
		assert.NotEqual(t, trending[0].ID, trending[1].ID)
		for _, f := range trending {
			assert.True(t, upcoming[f.ID], "%s is not upcoming", f.ID)
		}
	}
}

func TestTrendingFlyersFewUpcoming(t *testing.T) {
	flyers := []model.Flyer{
		flyer("only", testNow.Add(time.Hour)),
		flyer("old", testNow.Add(-time.Hour)),
	}
	svc := newTestService(&fakeSource{flyers: flyers}, nil)

	trending, err := svc.TrendingFlyers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, ids(trending))
}

func TestServiceResolvesImages(t *testing.T) {
	resolver := &stubResolver{}
	svc := newTestService(&fakeSource{flyers: []model.Flyer{
		flyer("a", testNow.Add(time.Hour)),
	}}, resolver)

	flyers, err := svc.UpcomingFlyers(context.Background())
	require.NoError(t, err)
	require.Len(t, flyers, 1)
	assert.Equal(t, "resolved", flyers[0].ImageURL)
	assert.Equal(t, 1, resolver.calls)
}

func TestServiceResolvesOnlyReturnedFlyers(t *testing.T) {
	ctx := context.Background()

	for name, fetch := range map[string]func(*Service, context.Context) ([]model.Flyer, error){
		"upcoming": (*Service).UpcomingFlyers,
		"past":     (*Service).PastFlyers,
		"weekly":   (*Service).WeeklyFlyers,
		"daily":    (*Service).DailyFlyers,
		"trending": (*Service).TrendingFlyers,
	} {
		t.Run(name, func(t *testing.T) {
			resolver := &stubResolver{}
			svc := newTestService(&fakeSource{flyers: testFlyers()}, resolver)

			flyers, err := fetch(svc, ctx)
			require.NoError(t, err)
			require.NotEmpty(t, flyers)
			assert.ElementsMatch(t, ids(flyers), resolver.seen)
			for _, f := range flyers {
				assert.Equal(t, "resolved", f.ImageURL, f.ID)
			}
		})
	}
}

func TestTrendingResolvesSample(t *testing.T) {
	resolver := &stubResolver{}
	svc := newTestService(&fakeSource{flyers: testFlyers()}, resolver)

	trending, err := svc.TrendingFlyers(context.Background())
	require.NoError(t, err)
	require.Len(t, trending, 2)
	assert.Equal(t, 1, resolver.calls)
	assert.Len(t, resolver.seen, 2)
}

func TestServiceSkipsResolverWhenEmpty(t *testing.T) {
	resolver := &stubResolver{}
	svc := newTestService(&fakeSource{flyers: []model.Flyer{
		flyer("old", testNow.Add(-time.Hour)),
	}}, resolver)

	daily, err := svc.DailyFlyers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, daily)
	assert.Zero(t, resolver.calls)
}
