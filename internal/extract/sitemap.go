package extract

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ParseSitemap extracts the URLs listed in a sitemap.xml document.
// Both urlset and sitemapindex documents are handled; anything without
// loc entries yields an empty slice.
func ParseSitemap(body []byte) []string {
	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var urls []string
	for _, node := range xmlquery.Find(doc, "//loc") {
		loc := strings.TrimSpace(node.InnerText())
		if loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls
}

// IsSitemapURL reports whether a URL points at an XML document, which the
// crawler treats as a sitemap rather than a page.
func IsSitemapURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".xml")
}
