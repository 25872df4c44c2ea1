package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadgen-engine/internal/scrape/util"
)

const maxBody = 5 << 20

// Page is a fetched document. Status is kept but never checked: error pages
// are still parsed.
type Page struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

func (p Page) Reader() io.Reader { return bytes.NewReader(p.Body) }

// Fetcher issues single GETs with a fixed timeout and no retries.
type Fetcher struct {
	UserAgent string
	Limiter   *util.HostLimiter
	hc        *http.Client
}

func NewFetcher(userAgent string, timeout time.Duration, lim *util.HostLimiter) *Fetcher {
	return &Fetcher{
		UserAgent: userAgent,
		Limiter:   lim,
		hc:        &http.Client{Timeout: timeout},
	}
}

func (f *Fetcher) Get(ctx context.Context, rawURL string) (Page, error) {
	if err := f.Limiter.WaitURL(ctx, rawURL); err != nil {
		return Page{}, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("build request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")

	res, err := f.hc.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return Page{}, fmt.Errorf("read %s: %w", rawURL, err)
	}

	final := rawURL
	if res.Request != nil && res.Request.URL != nil {
		final = res.Request.URL.String()
	}
	return Page{URL: final, Status: res.StatusCode, Header: res.Header, Body: b}, nil
}
