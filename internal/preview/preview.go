package preview

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cboard-backend/internal/model"
)

const defaultConcurrency = 4

// Resolver fills in missing flyer images from the og:image tag of the flyer's
// post page.
type Resolver struct {
	client      *http.Client
	concurrency int
	logger      *zap.Logger
}

// NewResolver creates a Resolver. A nil client gets a client with a short
// timeout.
func NewResolver(client *http.Client, logger *zap.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		client:      client,
		concurrency: defaultConcurrency,
		logger:      logger.Named("preview"),
	}
}

// Resolve returns a copy of flyers where every flyer without an image but with
// a post URL has its image set from the post page. Failures leave the flyer
// unchanged.
func (r *Resolver) Resolve(ctx context.Context, flyers []model.Flyer) []model.Flyer {
	out := make([]model.Flyer, len(flyers))
	copy(out, flyers)

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i := range out {
		if out[i].ImageURL != "" || out[i].PostURL == "" {
			continue
		}
		g.Go(func() error {
			img, err := r.ImageURL(ctx, out[i].PostURL)
			if err != nil {
				r.logger.Warn("resolving flyer image",
					zap.String("flyer", out[i].ID), zap.String("post", out[i].PostURL), zap.Error(err))
				return nil
			}
			out[i].ImageURL = img
			return nil
		})
	}
	g.Wait()

	return out
}

// ImageURL fetches pageURL and returns its preview image as an absolute URL.
func (r *Resolver) ImageURL(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	var image string
	for _, sel := range []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:url"]`,
		`meta[name="twitter:image"]`,
	} {
		if v, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			image = strings.TrimSpace(v)
			break
		}
	}
	if image == "" {
		return "", fmt.Errorf("no preview image on page")
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parsing page URL: %w", err)
	}
	ref, err := url.Parse(image)
	if err != nil {
		return "", fmt.Errorf("parsing image URL: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
