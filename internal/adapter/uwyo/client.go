package uwyo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soundinglab/inversion-etl/internal/domain"
)

// Client implements pipeline.Fetcher against the University of Wyoming
// sounding archive.
type Client struct {
	baseURL    string
	region     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an archive client. baseURL points at the sounding CGI
// endpoint, region selects the archive partition (e.g. "europe").
func NewClient(baseURL, region string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		region:  region,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch retrieves the full-month TEXT:LIST report page for a station. A page
// carrying no sounding tables maps to domain.ErrNoData.
func (c *Client) Fetch(ctx context.Context, year int, month time.Month, station string) (string, error) {
	params := url.Values{
		"region": {c.region},
		"TYPE":   {"TEXT:LIST"},
		"YEAR":   {fmt.Sprintf("%d", year)},
		"MONTH":  {fmt.Sprintf("%02d", int(month))},
		"FROM":   {"0100"},
		"TO":     {fmt.Sprintf("%02d12", domain.DaysInMonth(year, month))},
		"STNM":   {station},
	}
	fullURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	// The archive occasionally rejects clients without a browser-like agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html")

	c.logger.Debug("fetching report", "station", station, "year", year, "month", int(month))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sounding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("sounding archive error: status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	page := string(body)
	if !strings.Contains(page, "<PRE>") && !strings.Contains(page, "<pre>") {
		return "", domain.ErrNoData
	}
	return page, nil
}
