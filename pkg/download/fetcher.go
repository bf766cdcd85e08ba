// SPDX-License-Identifier: Apache-2.0
// Package download fetches artifacts over HTTP into an on-disk cache and
// runs batches of fetches with bounded concurrency.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Get(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher is a Fetcher over net/http. It never retries.
type HTTPFetcher struct {
	client *http.Client
	logger hclog.Logger
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout.
// A zero timeout means no timeout.
func NewHTTPFetcher(timeout time.Duration, logger hclog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger.Named("http"),
	}
}

// Get performs a GET and returns the body of a 2xx response.
func (f *HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &crerrors.TransportError{URL: url, Kind: crerrors.KindInvalidURL, Err: err}
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return nil, &crerrors.TransportError{
			URL:  url,
			Kind: crerrors.KindInvalidURL,
			Err:  fmt.Errorf("unsupported scheme %q", req.URL.Scheme),
		}
	}

	start := time.Now()
	f.logger.Trace("🌐 GET", "url", url)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Debug("❌ Unexpected status", "url", url, "status", resp.StatusCode)
		return nil, &crerrors.TransportError{URL: url, Kind: crerrors.KindStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classify(url, err)
	}

	f.logger.Trace("✅ Fetched", "url", url, "size", humanize.Bytes(uint64(len(body))), "elapsed", time.Since(start))
	return body, nil
}

func classify(url string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &crerrors.TransportError{URL: url, Kind: crerrors.KindTimeout, Err: err}
	}
	return &crerrors.TransportError{URL: url, Kind: crerrors.KindNetwork, Err: err}
}
