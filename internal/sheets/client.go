package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"cboard-backend/internal/cache"
	"cboard-backend/internal/model"
)

// Options configures which spreadsheet and ranges the client reads.
type Options struct {
	SpreadsheetID      string
	OrganizationsRange string
	FlyersRange        string

	// Cache is optional. When nil every call hits the Sheets API.
	Cache  *cache.Cache
	Logger *zap.Logger
}

// Client reads organizations and flyers from a Google spreadsheet.
type Client struct {
	service *sheetsapi.Service
	opts    Options
	logger  *zap.Logger
}

// New creates a Sheets client authenticated with ts.
func New(ctx context.Context, ts oauth2.TokenSource, opts Options) (*Client, error) {
	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return NewWithService(svc, opts), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *sheetsapi.Service, opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		service: svc,
		opts:    opts,
		logger:  logger.Named("sheets"),
	}
}

// Values returns the formatted cell values of rng, row by row.
func (c *Client) Values(ctx context.Context, rng string) ([][]string, error) {
	if c.opts.Cache != nil {
		if rows, ok := c.opts.Cache.Get(rng); ok {
			c.logger.Debug("cache hit", zap.String("range", rng))
			return rows, nil
		}
	}

	resp, err := c.service.Spreadsheets.Values.Get(c.opts.SpreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading range %s: %w", rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, v := range raw {
			if s, ok := v.(string); ok {
				row[i] = s
			} else {
				row[i] = fmt.Sprint(v)
			}
		}
		rows = append(rows, row)
	}

	c.logger.Debug("fetched range", zap.String("range", rng), zap.Int("rows", len(rows)))

	if c.opts.Cache != nil {
		if err := c.opts.Cache.Set(rng, rows); err != nil {
			c.logger.Warn("failed to cache range", zap.String("range", rng), zap.Error(err))
		}
	}
	return rows, nil
}

// Refresh drops the cached organization and flyer ranges so the next read
// goes to the Sheets API. It is a no-op without a cache.
func (c *Client) Refresh() error {
	if c.opts.Cache == nil {
		return nil
	}
	for _, rng := range []string{c.opts.OrganizationsRange, c.opts.FlyersRange} {
		if err := c.opts.Cache.Invalidate(rng); err != nil {
			return fmt.Errorf("invalidating range %s: %w", rng, err)
		}
	}
	c.logger.Debug("cache invalidated")
	return nil
}

// Organizations returns every organization in the organization sheet.
func (c *Client) Organizations(ctx context.Context) ([]model.Organization, error) {
	rows, err := c.Values(ctx, c.opts.OrganizationsRange)
	if err != nil {
		return nil, fmt.Errorf("fetching organizations: %w", err)
	}
	return organizationsFromRows(rows), nil
}

// Flyers returns every flyer in the flyer sheet with its organization slugs
// resolved against the organization sheet.
func (c *Client) Flyers(ctx context.Context) ([]model.Flyer, error) {
	rows, err := c.Values(ctx, c.opts.FlyersRange)
	if err != nil {
		return nil, fmt.Errorf("fetching flyers: %w", err)
	}
	if len(rows) == 0 {
		return []model.Flyer{}, nil
	}

	orgs, err := c.Organizations(ctx)
	if err != nil {
		return nil, err
	}
	return flyersFromRows(rows, organizationsBySlug(orgs, c.logger), c.logger), nil
}
