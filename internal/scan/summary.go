package scan

import (
	"encoding/json"
	"sort"
	"unicode/utf8"

	"github.com/seoscanhq/seoscan/internal/config"
)

// Summary is the scan-level aggregate report stored as analysis_json.
type Summary struct {
	TotalPages            int                 `json:"total_pages"`
	MissingTitles         []string            `json:"missing_titles"`
	ShortTitles           []string            `json:"short_titles"`
	LongTitles            []string            `json:"long_titles"`
	DuplicateTitles       map[string][]string `json:"duplicate_titles"`
	MissingDescriptions   []string            `json:"missing_descriptions"`
	ShortDescriptions     []string            `json:"short_descriptions"`
	LongDescriptions      []string            `json:"long_descriptions"`
	DuplicateDescriptions map[string][]string `json:"duplicate_descriptions"`
	DuplicateContent      map[string][]string `json:"duplicate_content"`
	OrphanPages           []string            `json:"orphan_pages"`
	SitemapOnlyURLs       []string            `json:"sitemap_only_urls"`
	BrokenLinks           int                 `json:"broken_links"`
	MissingAltImages      int                 `json:"missing_alt_images"`
	SpellingIssues        int                 `json:"spelling_issues"`
	GrammarIssues         int                 `json:"grammar_issues"`
}

// buildSummary derives the aggregate report from a scan's page rows plus
// the link/image issue counts already rolled up in storage.
func buildSummary(pages []*Page, cfg *config.ScanConfig, brokenLinks, missingAlt int, sitemapOnly []string) *Summary {
	s := &Summary{
		TotalPages:            len(pages),
		MissingTitles:         []string{},
		ShortTitles:           []string{},
		LongTitles:            []string{},
		DuplicateTitles:       map[string][]string{},
		MissingDescriptions:   []string{},
		ShortDescriptions:     []string{},
		LongDescriptions:      []string{},
		DuplicateDescriptions: map[string][]string{},
		DuplicateContent:      map[string][]string{},
		OrphanPages:           []string{},
		SitemapOnlyURLs:       sitemapOnly,
		BrokenLinks:           brokenLinks,
		MissingAltImages:      missingAlt,
	}
	if s.SitemapOnlyURLs == nil {
		s.SitemapOnlyURLs = []string{}
	}

	titleMap := make(map[string][]string)
	descMap := make(map[string][]string)
	contentMap := make(map[string][]string)

	for _, page := range pages {
		s.SpellingIssues += page.SpellingIssues
		s.GrammarIssues += page.GrammarIssues

		if page.IsOrphan {
			s.OrphanPages = append(s.OrphanPages, page.URL)
		}

		if page.Title == "" {
			s.MissingTitles = append(s.MissingTitles, page.URL)
		} else {
			// Length limits are in characters, not bytes
			titleLen := utf8.RuneCountInString(page.Title)
			if titleLen < cfg.MinTitleLength {
				s.ShortTitles = append(s.ShortTitles, page.URL)
			}
			if titleLen > cfg.MaxTitleLength {
				s.LongTitles = append(s.LongTitles, page.URL)
			}
			titleMap[page.Title] = append(titleMap[page.Title], page.URL)
		}

		if page.MetaDescription == "" {
			s.MissingDescriptions = append(s.MissingDescriptions, page.URL)
		} else {
			descLen := utf8.RuneCountInString(page.MetaDescription)
			if descLen < cfg.MinDescLength {
				s.ShortDescriptions = append(s.ShortDescriptions, page.URL)
			}
			if descLen > cfg.MaxDescLength {
				s.LongDescriptions = append(s.LongDescriptions, page.URL)
			}
			descMap[page.MetaDescription] = append(descMap[page.MetaDescription], page.URL)
		}

		if page.ContentHash != "" {
			contentMap[page.ContentHash] = append(contentMap[page.ContentHash], page.URL)
		}
	}

	for title, urls := range titleMap {
		if len(urls) > 1 {
			sort.Strings(urls)
			s.DuplicateTitles[title] = urls
		}
	}
	for desc, urls := range descMap {
		if len(urls) > 1 {
			sort.Strings(urls)
			s.DuplicateDescriptions[desc] = urls
		}
	}
	for hash, urls := range contentMap {
		if len(urls) > 1 {
			sort.Strings(urls)
			s.DuplicateContent[hash] = urls
		}
	}

	sort.Strings(s.MissingTitles)
	sort.Strings(s.ShortTitles)
	sort.Strings(s.LongTitles)
	sort.Strings(s.MissingDescriptions)
	sort.Strings(s.ShortDescriptions)
	sort.Strings(s.LongDescriptions)
	sort.Strings(s.OrphanPages)
	sort.Strings(s.SitemapOnlyURLs)

	return s
}

// marshal renders the summary as deterministic JSON: slices are sorted and
// encoding/json orders map keys.
func (s *Summary) marshal() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
