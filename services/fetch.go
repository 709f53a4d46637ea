package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pickem-app-go/logging"
)

// Fetcher retrieves feed payloads with a bounded timeout, trying the
// direct URL first and then each configured relay in order. The first
// path that yields a plausible body wins; there is no backoff, only
// sequential alternate paths.
type Fetcher struct {
	client  *http.Client
	relays  []string // url templates, %s is the escaped target url
	minBody int
	logger  *logging.Logger
}

// NewFetcher creates a fetcher with the given relay templates and
// per-request timeout.
func NewFetcher(relays []string, timeout time.Duration, minBody int) *Fetcher {
	if minBody <= 0 {
		minBody = 64
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		relays:  relays,
		minBody: minBody,
		logger:  logging.WithPrefix("Fetcher"),
	}
}

// Fetch retrieves the resource at target, falling through the relay
// chain on any failure: network error, timeout, non-200 status, or a
// body that fails the plausibility check (too short, or an HTML error
// page returned in place of data).
func (f *Fetcher) Fetch(ctx context.Context, target string) ([]byte, error) {
	paths := make([]string, 0, len(f.relays)+1)
	paths = append(paths, target)
	for _, relay := range f.relays {
		paths = append(paths, fmt.Sprintf(relay, url.QueryEscape(target)))
	}

	var lastErr error
	for i, path := range paths {
		body, err := f.fetchOne(ctx, path)
		if err != nil {
			f.logger.Debugf("Path %d/%d failed for %s: %v", i+1, len(paths), target, err)
			lastErr = err
			continue
		}
		if i > 0 {
			f.logger.Infof("Fetched %s via relay %d", target, i)
		}
		return body, nil
	}

	return nil, fmt.Errorf("all %d path(s) failed for %s: %w", len(paths), target, lastErr)
}

func (f *Fetcher) fetchOne(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := f.checkPlausible(body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkPlausible rejects bodies that cannot be feed data: too short to
// carry a week of anything, or an HTML error page served with a 200.
func (f *Fetcher) checkPlausible(body []byte) error {
	if len(body) < f.minBody {
		return fmt.Errorf("body too short (%d bytes)", len(body))
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return fmt.Errorf("got HTML instead of data")
	}
	if strings.Contains(strings.ToLower(string(trimmed[:min(len(trimmed), 256)])), "<html") {
		return fmt.Errorf("got HTML instead of data")
	}
	return nil
}
