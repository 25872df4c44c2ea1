package enrich

import (
	"context"
	"errors"
	"strings"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/scrape"
)

type PageFetcher interface {
	Get(ctx context.Context, rawURL string) (scrape.Page, error)
}

var errNoTech = errors.New("no known technology signature")

// detectTech reports each technology whose signature appears in the lowered
// body or headers, in table order.
func detectTech(ctx context.Context, f PageFetcher, rules []config.Rule, rawURL string) Result[[]string] {
	unknown := []string{domain.Unknown}

	page, err := f.Get(ctx, rawURL)
	if err != nil {
		return degrade(unknown, err)
	}

	html := strings.ToLower(string(page.Body))
	var hb strings.Builder
	for k, vs := range page.Header {
		hb.WriteString(strings.ToLower(k))
		hb.WriteString(": ")
		hb.WriteString(strings.ToLower(strings.Join(vs, ", ")))
		hb.WriteByte('\n')
	}
	headers := hb.String()

	var found []string
	for _, r := range rules {
		for _, sig := range r.Any {
			sig = strings.ToLower(sig)
			if strings.Contains(html, sig) || strings.Contains(headers, sig) {
				found = append(found, r.Tag)
				break
			}
		}
	}
	if len(found) == 0 {
		return degrade(unknown, errNoTech)
	}
	return ok(found)
}
