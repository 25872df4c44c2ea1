package scrape

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/domain"
	"leadgen-engine/internal/scrape/util"
)

const descLimit = 200

var (
	emailRe  = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRes = []*regexp.Regexp{
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),           // (123) 456-7890
		regexp.MustCompile(`\+1[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`), // +1 (123) 456-7890
	}
)

type extractor struct {
	placeholders []string
	platforms    []config.Rule
}

func newExtractor(h config.Heuristics) extractor {
	ph := make([]string, 0, len(h.PlaceholderEmails))
	for _, p := range h.PlaceholderEmails {
		ph = append(ph, strings.ToLower(p))
	}
	return extractor{placeholders: ph, platforms: h.SocialPlatforms}
}

func (x extractor) lead(doc *goquery.Document, pageURL string) domain.Lead {
	text := doc.Text()
	return domain.Lead{
		URL:         pageURL,
		CompanyName: companyName(doc, pageURL),
		Email:       x.email(doc, text),
		Phone:       phone(text),
		Description: description(doc),
		SocialLinks: x.socialLinks(doc, pageURL),
		Status:      domain.StatusNew,
	}
}

func metaContent(doc *goquery.Document, sel string) string {
	v, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(v)
}

func companyName(doc *goquery.Document, pageURL string) string {
	if v := metaContent(doc, `meta[property="og:site_name"]`); v != "" {
		return v
	}
	if t := doc.Find("title").First(); t.Length() > 0 {
		name, _, _ := strings.Cut(t.Text(), "|")
		name, _, _ = strings.Cut(name, "-")
		if name = util.CleanText(name); name != "" {
			return name
		}
	}
	return util.DomainLabel(pageURL)
}

func (x extractor) email(doc *goquery.Document, text string) string {
	for _, e := range emailRe.FindAllString(text, -1) {
		if !x.placeholder(e) {
			return e
		}
	}

	href, ok := doc.Find(`a[href^="mailto:"]`).First().Attr("href")
	if !ok {
		return ""
	}
	addr := strings.TrimPrefix(strings.TrimSpace(href), "mailto:")
	addr, _, _ = strings.Cut(addr, "?")
	if u, err := url.PathUnescape(addr); err == nil {
		addr = u
	}
	return strings.TrimSpace(addr)
}

func (x extractor) placeholder(email string) bool {
	low := strings.ToLower(email)
	for _, p := range x.placeholders {
		if strings.Contains(low, p) {
			return true
		}
	}
	return false
}

func phone(text string) string {
	for _, re := range phoneRes {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

func description(doc *goquery.Document) string {
	if v := metaContent(doc, `meta[name="description"]`); v != "" {
		return util.Truncate(v, descLimit)
	}
	if v := metaContent(doc, `meta[property="og:description"]`); v != "" {
		return util.Truncate(v, descLimit)
	}

	var desc string
	doc.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		t := strings.TrimSpace(p.Text())
		if len([]rune(t)) > 50 {
			desc = util.Truncate(t, descLimit)
			return false
		}
		return true
	})
	if desc != "" {
		return desc
	}
	return domain.NoDescription
}

// socialLinks keeps the first link seen for each platform.
func (x extractor) socialLinks(doc *goquery.Document, pageURL string) map[string]string {
	base, _ := url.Parse(pageURL)
	out := map[string]string{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}
		full := util.Resolve(base, href)
		for _, p := range x.platforms {
			if !matchesAny(full, p.Any) {
				continue
			}
			if _, seen := out[p.Tag]; !seen {
				out[p.Tag] = full
			}
			break
		}
	})
	return out
}

func matchesAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
