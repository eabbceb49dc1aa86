package pipeline

import (
	"regexp"
	"strconv"
	"strings"
)

// notVisible is the sentinel the vision model returns for on-screen fields it
// could not read. Such values are never stored.
const notVisible = "non visible"

// visibleValue trims s and blanks it when it carries the not-visible sentinel.
func visibleValue(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, notVisible) {
		return ""
	}
	return s
}

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseApproxCount converts an on-screen count such as "1.2K", "1,2K", "3M",
// "12 400" or "450" into an integer. A trailing K/M suffix multiplies by
// 1 000 / 1 000 000, a decimal comma reads as a dot, and when the direct parse
// fails the first numeric token is extracted instead. Returns nil when the
// string holds no digits or is not visible.
func ParseApproxCount(raw string) *int {
	s := visibleValue(raw)
	if s == "" {
		return nil
	}

	lower := strings.ToLower(s)
	mult := 1.0
	switch {
	case strings.Contains(lower, "k"):
		mult = 1_000
	case strings.Contains(lower, "m"):
		mult = 1_000_000
	}

	if mult > 1 {
		cleaned := strings.NewReplacer(
			"k", "", "K", "", "m", "", "M", "",
			",", ".", " ", "", "\u00a0", "",
		).Replace(s)
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			n := int(f * mult)
			return &n
		}
	} else {
		cleaned := strings.NewReplacer(",", "", " ", "", "\u00a0", "").Replace(s)
		if n, err := strconv.Atoi(cleaned); err == nil {
			return &n
		}
	}

	// Direct parse failed: pull the first numeric token and keep the suffix
	// multiplier read from the original string.
	tok := numberRe.FindString(strings.ReplaceAll(s, ",", "."))
	if tok == "" {
		return nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil
	}
	n := int(f * mult)
	return &n
}

// assetExtensions mark static-asset URLs that crawlers mistake for profiles.
var assetExtensions = []string{
	".css", ".js", ".png", ".jpg", ".jpeg", ".gif", ".ico",
	".svg", ".woff2", ".woff", ".ttf",
}

// excludedPathParts reject share widgets, content deep-links, and site
// plumbing that carry a platform domain without being a profile page.
var excludedPathParts = []string{
	"/sharer", "/share", "/posts", "/post", "/events", "/groups",
	"/watch", "/permalink", "/media", "/photos", "/login", "/pages",
	"/search", "/reels", "/reel", "/stories", "/story",
	"/wp-content/", "/plugins/", "/widgets/", "/assets/", "/static/",
}

// ValidSocialURL reports whether raw looks like a real profile page on the
// given platform domain (e.g. "facebook.com"). Asset links, share and
// deep-link paths, and trivially short paths are rejected.
func ValidSocialURL(raw, domain string) bool {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return false
	}
	idx := strings.Index(u, domain)
	if idx < 0 {
		return false
	}
	for _, ext := range assetExtensions {
		if strings.Contains(u, ext) {
			return false
		}
	}
	for _, part := range excludedPathParts {
		if strings.Contains(u, part) {
			return false
		}
	}

	path := u[idx+len(domain):]
	if q := strings.IndexAny(path, "?#"); q >= 0 {
		path = path[:q]
	}
	path = strings.Trim(path, "/")
	return len(path) > 2
}

// SocialPlatform identifies the social platform of a URL, or "" when the URL
// is not a known platform domain.
func SocialPlatform(url string) string {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "facebook.com"):
		return "facebook"
	case strings.Contains(u, "instagram.com"):
		return "instagram"
	}
	return ""
}
