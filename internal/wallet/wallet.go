// Package wallet derives wallet addresses, display labels and page URLs.
package wallet

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

const (
	DefaultBaseURL = "https://gmgn.ai"
	DefaultChain   = "sol"

	siteHost = "gmgn.ai"
)

var (
	base58SegmentRe = regexp.MustCompile(`/([a-zA-Z0-9]{32,44})`)
	anySegmentRe    = regexp.MustCompile(`/([a-zA-Z0-9]{4,})`)
	addressRe       = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// ErrInvalidAddress is returned for empty or non-alphanumeric addresses.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Label shortens long addresses to first8...last4 for display.
func Label(address string) string {
	if len(address) > 12 {
		return address[:8] + "..." + address[len(address)-4:]
	}
	return address
}

// AddressFromURL recovers the wallet address from a page URL: the segment
// after /address/ on any host. On gmgn.ai hosts it falls back to the first
// base58-length segment, else the first segment of at least four characters.
// It returns "" when nothing fits.
func AddressFromURL(raw string) string {
	path, host := raw, ""
	if u, err := url.Parse(raw); err == nil {
		host = strings.ToLower(u.Hostname())
		if u.Path != "" {
			path = u.Path
		}
	}
	if i := strings.Index(path, "/address/"); i >= 0 {
		rest := path[i+len("/address/"):]
		if j := strings.IndexAny(rest, "/?#"); j >= 0 {
			rest = rest[:j]
		}
		if rest != "" {
			return rest
		}
	}
	if host != siteHost && !strings.HasSuffix(host, "."+siteHost) {
		return ""
	}
	if m := base58SegmentRe.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	if m := anySegmentRe.FindStringSubmatch(path); m != nil {
		return m[1]
	}
	return ""
}

// PageURL builds <base>/<chain>/address/<address>.
func PageURL(base, chain, address string) (string, error) {
	address = strings.TrimSpace(address)
	if !addressRe.MatchString(address) {
		return "", ErrInvalidAddress
	}
	if base == "" {
		base = DefaultBaseURL
	}
	if chain == "" {
		chain = DefaultChain
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(chain) + "/address/" + address, nil
}
