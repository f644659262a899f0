package changelog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"golang.org/x/text/encoding/htmlindex"
)

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
}

func NewFetcher(httpClient *http.Client, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
		timeout:    timeout,
	}
}

// Run downloads url once and returns the body decoded to UTF-8.
func (f *Fetcher) Run(ctx context.Context, url string) (string, error) {
	data, contentType, err := f.fetch(ctx, url)
	if err != nil {
		return "", NewError(KindFetch, err, "There appears to be a problem accessing %s", url)
	}

	text, err := decodeBody(data, contentType)
	if err != nil {
		return "", NewError(KindFetch, err, "Could not decode the response from %s", url)
	}

	slog.Debug("Changelog fetched", "url", url, "bytes", len(data), "content_type", contentType)

	return text, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// decodeBody decodes data using the charset declared in contentType, falling back to UTF-8.
func decodeBody(data []byte, contentType string) (string, error) {
	if contentType == "" {
		return string(data), nil
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(data), nil
	}

	charset := params["charset"]
	if charset == "" {
		return string(data), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", charset, err)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s body: %w", charset, err)
	}

	return string(decoded), nil
}
