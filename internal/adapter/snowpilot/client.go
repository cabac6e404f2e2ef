package snowpilot

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/whiteroomlabs/snowpit-etl/internal/config"
	"github.com/whiteroomlabs/snowpit-etl/internal/observability"
)

// ErrNoResults means the query matched nothing. The server signals this with
// an empty archive filename rather than an error status.
var ErrNoResults = errors.New("query returned no pits")

// defaultRequestDelay spaces out requests so bulk fetches do not trip the
// server's rate limiting.
const defaultRequestDelay = 5 * time.Second

var filenamePattern = regexp.MustCompile(`filename="([^"]+)"`)

// Archive is one downloaded result set: a gzipped tarball of CAAML files.
type Archive struct {
	Filename string
	Data     []byte
}

// Document is a single CAAML file extracted from an archive.
type Document struct {
	Name string
	Data []byte
}

// Fetcher downloads pit archives matching a query.
type Fetcher interface {
	FetchArchive(ctx context.Context, q Query) (Archive, error)
}

// Client fetches CAAML exports from snowpilot.org. The site authenticates via
// a login form and session cookie, answers a query request with the name of a
// prepared archive, and serves the archive from a temp-file path.
type Client struct {
	baseURL    string
	user       string
	password   string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	delay      time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a snowpilot.org client from the service configuration.
func NewClient(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.SnowPilotBaseURL, "/"),
		user:     cfg.SnowPilotUser,
		password: cfg.SnowPilotPassword,
		httpClient: &http.Client{
			Timeout: cfg.SnowPilotTimeout,
			Jar:     jar,
		},
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
		delay:   defaultRequestDelay,
	}, nil
}

// SetClock replaces the rate-limit clock. Tests use this to avoid real sleeps.
func (c *Client) SetClock(clock clockwork.Clock) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c.clock = clock
}

// FetchArchive runs a query and downloads the matching archive, retrying
// transient failures with exponential backoff. Returns ErrNoResults when the
// query matches no pits.
func (c *Client) FetchArchive(ctx context.Context, q Query) (Archive, error) {
	if err := q.Validate(); err != nil {
		return Archive{}, err
	}
	if err := c.login(ctx); err != nil {
		return Archive{}, err
	}

	start := c.clock.Now()
	var archive Archive
	operation := func() error {
		var err error
		archive, err = c.fetchOnce(ctx, q)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	err := backoff.Retry(operation, backoff.WithContext(bo, ctx))

	c.observeFetch(err, c.clock.Since(start))
	if err != nil {
		return Archive{}, err
	}
	return archive, nil
}

// login establishes a session cookie. Skipped when no credentials are
// configured; most query endpoints require them.
func (c *Client) login(ctx context.Context) error {
	if c.user == "" {
		return nil
	}
	form := url.Values{
		"name":    {c.user},
		"pass":    {c.password},
		"form_id": {"user_login"},
		"op":      {"Log in"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/user/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: status %d", resp.StatusCode)
	}
	c.logger.Debug("authenticated with snowpilot", "user", c.user)
	return nil
}

// fetchOnce performs one query-then-download round trip.
func (c *Client) fetchOnce(ctx context.Context, q Query) (Archive, error) {
	c.enforceRateLimit()

	queryURL := c.baseURL + "/avscience-query-caaml.xml?" + q.Encode()
	c.logger.Info("requesting pit archive", "query", q.Encode())

	resp, err := c.doGet(ctx, queryURL)
	if err != nil {
		return Archive{}, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // filename arrives in a header

	if retryable(resp.StatusCode) {
		return Archive{}, fmt.Errorf("query throttled: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return Archive{}, backoff.Permanent(fmt.Errorf("query failed: status %d", resp.StatusCode))
	}

	filename, err := archiveFilename(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return Archive{}, backoff.Permanent(err)
	}

	c.enforceRateLimit()
	fileURL := c.baseURL + "/sites/default/files/tmp/" + filename
	c.logger.Info("downloading pit archive", "file", filename)

	fileResp, err := c.doGet(ctx, fileURL)
	if err != nil {
		return Archive{}, err
	}
	defer fileResp.Body.Close()

	if retryable(fileResp.StatusCode) {
		return Archive{}, fmt.Errorf("download throttled: status %d", fileResp.StatusCode)
	}
	if fileResp.StatusCode != http.StatusOK {
		return Archive{}, backoff.Permanent(fmt.Errorf("download failed: status %d", fileResp.StatusCode))
	}

	data, err := io.ReadAll(fileResp.Body)
	if err != nil {
		return Archive{}, fmt.Errorf("read archive: %w", err)
	}
	return Archive{Filename: filename, Data: data}, nil
}

func (c *Client) doGet(ctx context.Context, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", fullURL, err)
	}
	return resp, nil
}

// enforceRateLimit sleeps until the request delay has elapsed since the
// previous request.
func (c *Client) enforceRateLimit() {
	c.mu.Lock()
	defer c.mu.Unlock()

	elapsed := c.clock.Since(c.lastRequest)
	if !c.lastRequest.IsZero() && elapsed < c.delay {
		c.clock.Sleep(c.delay - elapsed)
	}
	c.lastRequest = c.clock.Now()
}

func (c *Client) observeFetch(err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case errors.Is(err, ErrNoResults):
		outcome = "no_results"
	case err != nil:
		outcome = "error"
	}
	c.metrics.FetchRequests.With(prometheus.Labels{"outcome": outcome}).Inc()
	c.metrics.FetchDuration.Observe(elapsed.Seconds())
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusForbidden ||
		status == http.StatusServiceUnavailable
}

// archiveFilename extracts the archive name from a Content-Disposition
// header. The server encodes "no results" as the bare suffix "_caaml.tar.gz".
func archiveFilename(disposition string) (string, error) {
	match := filenamePattern.FindStringSubmatch(disposition)
	if match == nil {
		return "", fmt.Errorf("no filename in Content-Disposition %q", disposition)
	}
	full := match[1]
	if full == "_caaml.tar.gz" {
		return "", ErrNoResults
	}
	name := strings.ReplaceAll(full, "_caaml", "")
	if name == "" || name == ".tar.gz" {
		return "", fmt.Errorf("invalid archive filename %q", full)
	}
	return name, nil
}

// ExtractDocuments unpacks the CAAML files from a downloaded archive.
func ExtractDocuments(archive Archive) ([]Document, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive.Data))
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archive.Filename, err)
	}
	defer gz.Close()

	var docs []Document
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read archive %s: %w", archive.Filename, err)
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, "caaml.xml") {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
		docs = append(docs, Document{Name: hdr.Name, Data: data})
	}
	return docs, nil
}
