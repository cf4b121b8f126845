package sourceapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/zatekoja/doctordirectory/backend/pkg/errors"
)

// maxSourceBytes caps a single export download; a larger body fails the fetch
const maxSourceBytes = 32 << 20

// Client downloads raw delimited text from a source URL
type Client interface {
	FetchSource(ctx context.Context, url string) (string, error)
}

type HTTPClient struct {
	httpClient *http.Client
	maxBytes   int64
}

// Sources holds the raw text of both exports
type Sources struct {
	Doctors      string
	Institutions string
}

func NewClient(timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBytes: maxSourceBytes,
	}
}

// FetchSource returns the response body. Transport failures and non-2xx
// responses are SOURCE_UNAVAILABLE; nothing is retried here.
func (c *HTTPClient) FetchSource(ctx context.Context, url string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", apperrors.NewSourceUnavailableError(url, err)
	}
	httpReq.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.5")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.NewSourceUnavailableError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewSourceUnavailableError(url, fmt.Errorf("source returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return "", apperrors.NewSourceUnavailableError(url, err)
	}
	if int64(len(body)) > c.maxBytes {
		return "", apperrors.NewSourceUnavailableError(url, fmt.Errorf("source exceeds %d bytes", c.maxBytes))
	}

	return string(body), nil
}

// FetchAll downloads both exports concurrently and returns once both are in.
// The first failure cancels the other request.
func FetchAll(ctx context.Context, client Client, doctorsURL, institutionsURL string) (*Sources, error) {
	var sources Sources
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		body, err := client.FetchSource(ctx, doctorsURL)
		if err != nil {
			return err
		}
		sources.Doctors = body
		return nil
	})
	g.Go(func() error {
		body, err := client.FetchSource(ctx, institutionsURL)
		if err != nil {
			return err
		}
		sources.Institutions = body
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &sources, nil
}
