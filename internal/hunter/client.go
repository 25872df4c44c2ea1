// Package hunter is a small client for the domain-search email finder API.
package hunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"leadgen-engine/internal/scrape/util"
)

var ErrNoAPIKey = errors.New("hunter: no API key configured")

// APIError is a non-200 answer from the API.
type APIError struct {
	Status  int
	Details string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hunter: status %d: %s", e.Status, e.Details)
}

type Contact struct {
	Email      string `json:"email"`
	Confidence int    `json:"confidence"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Position   string `json:"position"`
	Department string `json:"department"`
	Type       string `json:"type"`
}

// FullName is first and last joined, trimmed.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Options struct {
	BaseURL           string
	Timeout           time.Duration
	Limit             int
	RequestsPerSecond float64
	Burst             int
	// APIKey is called on every request so a key stored at runtime is
	// picked up without a restart.
	APIKey func() string
	HTTP   *http.Client
}

type Client struct {
	base   string
	limit  int
	apiKey func() string
	hc     *http.Client
	lim    *rate.Limiter
}

func New(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Limit <= 0 {
		o.Limit = 5
	}
	if o.APIKey == nil {
		o.APIKey = func() string { return "" }
	}
	hc := o.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	lim := rate.NewLimiter(rate.Inf, 1)
	if o.RequestsPerSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(o.RequestsPerSecond), max(1, o.Burst))
	}
	return &Client{
		base:   strings.TrimRight(o.BaseURL, "/"),
		limit:  o.Limit,
		apiKey: o.APIKey,
		hc:     hc,
		lim:    lim,
	}
}

type searchResponse struct {
	Data *struct {
		Domain string `json:"domain"`
		Emails []struct {
			Value      string `json:"value"`
			Type       string `json:"type"`
			Confidence int    `json:"confidence"`
			FirstName  string `json:"first_name"`
			LastName   string `json:"last_name"`
			Position   string `json:"position"`
			Department string `json:"department"`
		} `json:"emails"`
	} `json:"data"`
	Errors []struct {
		ID      string `json:"id"`
		Code    int    `json:"code"`
		Details string `json:"details"`
	} `json:"errors"`
}

// FindEmails returns up to limit contacts for the site's domain, best first.
func (c *Client) FindEmails(ctx context.Context, siteURL string, limit int) ([]Contact, error) {
	key := strings.TrimSpace(c.apiKey())
	if key == "" {
		return nil, ErrNoAPIKey
	}
	dom := util.BareDomain(siteURL)
	if dom == "" {
		return nil, fmt.Errorf("hunter: no domain in %q", siteURL)
	}
	if limit <= 0 {
		limit = c.limit
	}

	if err := c.lim.Wait(ctx); err != nil {
		return nil, fmt.Errorf("hunter: rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("domain", dom)
	q.Set("api_key", key)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := c.base + "/domain-search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hunter domain-search: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("hunter read body: %w", err)
	}

	var sr searchResponse
	decodeErr := json.Unmarshal(body, &sr)

	if res.StatusCode != http.StatusOK || sr.Data == nil {
		details := "Unknown error"
		if decodeErr == nil && len(sr.Errors) > 0 && sr.Errors[0].Details != "" {
			details = sr.Errors[0].Details
		}
		return nil, &APIError{Status: res.StatusCode, Details: details}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("hunter decode: %w", decodeErr)
	}

	out := make([]Contact, 0, len(sr.Data.Emails))
	for _, e := range sr.Data.Emails {
		out = append(out, Contact{
			Email:      e.Value,
			Confidence: e.Confidence,
			FirstName:  e.FirstName,
			LastName:   e.LastName,
			Position:   e.Position,
			Department: e.Department,
			Type:       e.Type,
		})
	}
	return out, nil
}

// BestEmail asks for a single result. A nil contact with a nil error means
// the API answered but had nothing for this domain.
func (c *Client) BestEmail(ctx context.Context, siteURL string) (*Contact, error) {
	cs, err := c.FindEmails(ctx, siteURL, 1)
	if err != nil {
		return nil, err
	}
	if len(cs) == 0 || cs[0].Email == "" {
		return nil, nil
	}
	return &cs[0], nil
}
