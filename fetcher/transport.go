package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"compensation-dashboard/apperr"
)

// Government hosts reject the default Go user agent.
const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Transport retrieves the raw bytes behind a URL.
type Transport interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// HTTPTransport downloads payloads with a plain HTTP GET.
type HTTPTransport struct {
	client *http.Client
}

func NewHTTPTransport(timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTransport) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Network("creating request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, apperr.Network("executing request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, apperr.Network(fmt.Sprintf("unexpected status code %d from %s", resp.StatusCode, url), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Network("reading response body", err)
	}
	if resp.ContentLength >= 0 && int64(len(body)) != resp.ContentLength {
		return nil, apperr.Network(fmt.Sprintf("truncated body: got %d of %d bytes", len(body), resp.ContentLength), nil)
	}
	return body, nil
}
