package flyerfetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/kainolt/backend/internal/domain"
	"golang.org/x/time/rate"
)

// userAgent mirrors a desktop browser; several retailer sites refuse the
// default Go client string.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

const maxAttempts = 3

// hrefPDFRegex finds PDF links on a retailer's promo page
var hrefPDFRegex = regexp.MustCompile(`(?i)href=["']([^"']+\.pdf[^"']*)["']`)

// RetailerSite describes where a retailer publishes its promotional flyers
type RetailerSite struct {
	BaseURL   string
	FlyerPage string
}

// DefaultSites lists the flyer pages of the supported Lithuanian retailers.
// Barbora is online-only and publishes no PDF flyers.
var DefaultSites = map[string]RetailerSite{
	"Maxima": {BaseURL: "https://www.maxima.lt", FlyerPage: "https://www.maxima.lt/akcijos"},
	"Rimi":   {BaseURL: "https://www.rimi.lt", FlyerPage: "https://www.rimi.lt/akcijos"},
	"IKI":    {BaseURL: "https://www.iki.lt", FlyerPage: "https://www.iki.lt/akcijos"},
	"Lidl":   {BaseURL: "https://www.lidl.lt", FlyerPage: "https://www.lidl.lt/akcijos"},
	"Norfa":  {BaseURL: "https://www.norfa.lt", FlyerPage: "https://www.norfa.lt/akcijos"},
}

// Config holds fetch client settings
type Config struct {
	RequestTimeout time.Duration
	RatePerSecond  float64
	Burst          int
}

// Client discovers and downloads promotional flyer PDFs from retailer sites.
// Requests are rate limited so repeated session loads stay polite.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	sites       map[string]RetailerSite
}

// NewClient creates a fetch client over the default retailer sites
func NewClient(cfg Config) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 0.5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		sites:       DefaultSites,
	}
}

// FindFlyerURLs scrapes a retailer's promo page for PDF flyer links
func (c *Client) FindFlyerURLs(ctx context.Context, retailer string) ([]string, error) {
	site, ok := c.sites[retailer]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no flyer page", domain.ErrUnsupportedRetailer, retailer)
	}

	body, err := c.get(ctx, site.FlyerPage)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, m := range hrefPDFRegex.FindAllStringSubmatch(string(body), -1) {
		urls = append(urls, resolveURL(site.BaseURL, m[1]))
	}

	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrFlyerNotFound, retailer)
	}
	log.Printf("[FETCH] %s: found %d flyer PDF(s)", retailer, len(urls))
	return urls, nil
}

// DownloadFlyer fetches one flyer PDF
func (c *Client) DownloadFlyer(ctx context.Context, url string) ([]byte, error) {
	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	log.Printf("[FETCH] downloaded %s (%.1f KB)", url, float64(len(data))/1024)
	return data, nil
}

// get executes a rate-limited GET with retry on transient failures
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[FETCH] request error (attempt %d): %v", attempt, err)
			lastErr = fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
			sleep(ctx, exponentialBackoff(attempt))
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			log.Printf("[FETCH] status %d (attempt %d) for %s", resp.StatusCode, attempt, url)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrFetchFailed, resp.StatusCode)
			if resp.StatusCode == http.StatusNotFound {
				return nil, lastErr
			}
			sleep(ctx, exponentialBackoff(attempt))
			continue
		}
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", domain.ErrFetchFailed, readErr)
			sleep(ctx, exponentialBackoff(attempt))
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

// exponentialBackoff doubles the wait per attempt: 500ms, 1s, 2s
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// resolveURL turns a relative href into an absolute URL on the retailer site
func resolveURL(base, href string) string {
	switch {
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
		return href
	case strings.HasPrefix(href, "/"):
		return base + href
	default:
		return base + "/" + href
	}
}
