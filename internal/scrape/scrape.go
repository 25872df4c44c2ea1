// Package scrape turns a company URL into a raw lead record.
package scrape

import (
	"context"
	"log/slog"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/scrape/util"
)

type Options struct {
	UserAgent   string
	Timeout     time.Duration
	DemoURLs    []string
	SearchLimit int
	Heuristics  config.Heuristics
	Limiter     *util.HostLimiter
	Log         *slog.Logger
}

type Scraper struct {
	fetch    *Fetcher
	x        extractor
	demoURLs []string
	limit    int
	log      *slog.Logger
}

func New(o Options) *Scraper {
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = 5
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	return &Scraper{
		fetch:    NewFetcher(o.UserAgent, o.Timeout, o.Limiter),
		x:        newExtractor(o.Heuristics),
		demoURLs: o.DemoURLs,
		limit:    o.SearchLimit,
		log:      o.Log,
	}
}

// Scrape never fails: each record either carries extracted fields or a
// non-empty Error.
func (s *Scraper) Scrape(ctx context.Context, query string, source domain.SourceType) []domain.Lead {
	if source == domain.SourceSearch {
		return s.search(ctx, query)
	}
	return []domain.Lead{s.ScrapeURL(ctx, query)}
}

// search stands in for a real search integration and ignores the query.
func (s *Scraper) search(ctx context.Context, _ string) []domain.Lead {
	urls := s.demoURLs
	if len(urls) > s.limit {
		urls = urls[:s.limit]
	}
	out := make([]domain.Lead, 0, len(urls))
	for _, u := range urls {
		out = append(out, s.ScrapeURL(ctx, u))
	}
	return out
}

func (s *Scraper) ScrapeURL(ctx context.Context, raw string) domain.Lead {
	pageURL := util.Canonicalize(util.NormalizeScheme(raw))

	page, err := s.fetch.Get(ctx, pageURL)
	if err != nil {
		return s.degraded(pageURL, err)
	}
	doc, err := goquery.NewDocumentFromReader(page.Reader())
	if err != nil {
		return s.degraded(pageURL, err)
	}

	lead := s.x.lead(doc, pageURL)
	s.log.Debug("scraped", "url", pageURL, "status", page.Status, "company", lead.CompanyName)
	return lead
}

func (s *Scraper) degraded(pageURL string, err error) domain.Lead {
	s.log.Warn("scrape failed", "url", pageURL, "err", err)
	return domain.Lead{
		URL:         pageURL,
		CompanyName: util.DomainLabel(pageURL),
		Status:      domain.StatusNew,
		Error:       err.Error(),
	}
}
