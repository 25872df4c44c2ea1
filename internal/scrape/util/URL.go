package util

import (
	"net"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeScheme prefixes https:// when raw has no http(s) scheme.
func NormalizeScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	low := strings.ToLower(raw)
	if strings.HasPrefix(low, "http://") || strings.HasPrefix(low, "https://") {
		return raw
	}
	return "https://" + raw
}

// Canonicalize lowercases scheme and host, drops the fragment, trailing
// slashes and common tracking parameters, and sorts the rest of the query.
func Canonicalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") ||
			lk == "gclid" || lk == "fbclid" || lk == "msclkid" ||
			lk == "mc_cid" || lk == "mc_eid" ||
			lk == "mkt_tok" {
			q.Del(k)
		}
	}
	for k := range q {
		vals := q[k]
		sort.Strings(vals)
		q[k] = vals
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Host returns the lowercased host of raw without port. Scheme-less input
// ("acme.com/about") is read as a host.
func Host(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	h := u.Host
	if h == "" {
		h, _, _ = strings.Cut(u.Path, "/")
	}
	if hp, _, err := net.SplitHostPort(h); err == nil {
		h = hp
	}
	return strings.ToLower(h)
}

// BareDomain is the host with a leading "www." removed.
func BareDomain(raw string) string {
	return strings.TrimPrefix(Host(raw), "www.")
}

var titleCaser = cases.Title(language.Und)

// DomainLabel turns https://www.acme.com into "Acme".
func DomainLabel(raw string) string {
	d := BareDomain(raw)
	label, _, _ := strings.Cut(d, ".")
	return titleCaser.String(label)
}

// Resolve joins href against base the way a browser would.
func Resolve(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
