// Package extract parses fetched HTML into the structured facts the scan
// pipeline persists: metadata, headings, word counts, outbound links and
// image tags. Malformed HTML degrades to partial facts instead of failing
// the page.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/net/html"
)

// readingSpeedWPM is the fixed reading speed used for the reading-time
// estimate.
const readingSpeedWPM = 200

var whitespacePattern = regexp.MustCompile(`\s+`)

// LinkFact is one anchor found on a page, resolved to an absolute URL.
type LinkFact struct {
	URL        string
	AnchorText string
	Internal   bool // same host as the scan's start URL
}

// ImageFact is one img tag found on a page.
type ImageFact struct {
	URL    string
	Alt    string
	HasAlt bool // alt attribute present, even if empty
}

// PageFacts is everything the extractor derives from one HTML document.
type PageFacts struct {
	Title           string
	MetaDescription string
	H1Count         int
	H2Count         int
	H3Count         int
	WordCount       int
	ReadingTimeMin  float64
	Text            string // whitespace-normalized visible text
	ContentHash     string // stable hash of Text, for change detection
	Links           []LinkFact
	Images          []ImageFact
}

// Extract parses an HTML document fetched from baseURL. Links are resolved
// against baseURL and classified internal when their host matches startHost.
// On parse failure the returned facts are empty but usable.
func Extract(htmlBody []byte, baseURL, startHost string) (*PageFacts, error) {
	facts := &PageFacts{}

	base, err := url.Parse(baseURL)
	if err != nil {
		return facts, fmt.Errorf("invalid base URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return facts, fmt.Errorf("parse HTML: %w", err)
	}

	facts.Title = strings.TrimSpace(doc.Find("title").First().Text())
	facts.MetaDescription, _ = doc.Find(`meta[name="description"]`).Attr("content")
	facts.MetaDescription = strings.TrimSpace(facts.MetaDescription)

	facts.H1Count = doc.Find("h1").Length()
	facts.H2Count = doc.Find("h2").Length()
	facts.H3Count = doc.Find("h3").Length()

	startHost = strings.ToLower(startHost)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if skipHref(href) {
			return
		}

		resolved, err := resolveURL(base, href)
		if err != nil {
			return
		}

		facts.Links = append(facts.Links, LinkFact{
			URL:        resolved.String(),
			AnchorText: anchorText(s),
			Internal:   strings.ToLower(resolved.Host) == startHost,
		})
	})

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if src == "" {
			return
		}

		resolved, err := resolveURL(base, src)
		if err != nil {
			return
		}

		alt, hasAlt := s.Attr("alt")
		facts.Images = append(facts.Images, ImageFact{
			URL:    resolved.String(),
			Alt:    strings.TrimSpace(alt),
			HasAlt: hasAlt,
		})
	})

	facts.Text = VisibleText(doc)
	facts.WordCount = len(strings.Fields(facts.Text))
	facts.ReadingTimeMin = float64(facts.WordCount) / readingSpeedWPM
	facts.ContentHash = ContentHash(facts.Text)

	return facts, nil
}

// VisibleText returns the document's visible text with scripts, styles and
// markup removed and whitespace collapsed.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()
	text := doc.Text()
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}

// TextOf parses an HTML fragment and returns its visible text. Used by the
// analysis phase, which reads stored html_content back out of the database.
func TextOf(htmlBody []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBody))
	if err != nil {
		return ""
	}
	return VisibleText(doc)
}

// ContentHash computes a stable hash of normalized text content.
func ContentHash(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(text))
}

func skipHref(href string) bool {
	if href == "" {
		return true
	}
	for _, prefix := range []string{"#", "mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

func resolveURL(base *url.URL, ref string) (*url.URL, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}

	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", resolved.Scheme)
	}
	return resolved, nil
}

// anchorText collects the text nodes under an anchor, joining nested
// fragments with single spaces.
func anchorText(s *goquery.Selection) string {
	var parts []string
	for _, node := range s.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, " ")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if text := strings.TrimSpace(n.Data); text != "" {
			*parts = append(*parts, text)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
