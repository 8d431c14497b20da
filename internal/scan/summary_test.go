package scan

import (
	"strings"
	"testing"

	"github.com/seoscanhq/seoscan/internal/config"
)

func summaryPages() []*Page {
	return []*Page{
		{
			URL:             "https://example.com",
			Title:           "A perfectly reasonable page title",
			MetaDescription: strings.Repeat("Good description. ", 5), // 90 chars
			ContentHash:     "hash-a",
		},
		{
			URL:         "https://example.com/no-title",
			ContentHash: "hash-b",
		},
		{
			URL:             "https://example.com/short",
			Title:           "Tiny",
			MetaDescription: "Too short",
			ContentHash:     "hash-c",
		},
		{
			URL:             "https://example.com/dup-1",
			Title:           "Duplicated title here ok",
			MetaDescription: strings.Repeat("Another fine description. ", 4),
			ContentHash:     "hash-dup",
			SpellingIssues:  2,
			GrammarIssues:   1,
		},
		{
			URL:             "https://example.com/dup-2",
			Title:           "Duplicated title here ok",
			MetaDescription: strings.Repeat("Another fine description. ", 4),
			ContentHash:     "hash-dup",
			IsOrphan:        true,
		},
	}
}

func TestBuildSummary(t *testing.T) {
	cfg := config.DefaultConfig()
	s := buildSummary(summaryPages(), cfg, 3, 2, []string{"https://example.com/only-in-sitemap"})

	if s.TotalPages != 5 {
		t.Errorf("TotalPages = %d, want 5", s.TotalPages)
	}
	if len(s.MissingTitles) != 1 || s.MissingTitles[0] != "https://example.com/no-title" {
		t.Errorf("MissingTitles = %v", s.MissingTitles)
	}
	if len(s.ShortTitles) != 1 || s.ShortTitles[0] != "https://example.com/short" {
		t.Errorf("ShortTitles = %v", s.ShortTitles)
	}
	if len(s.DuplicateTitles) != 1 {
		t.Errorf("DuplicateTitles = %v, want one group", s.DuplicateTitles)
	}
	if urls := s.DuplicateTitles["Duplicated title here ok"]; len(urls) != 2 {
		t.Errorf("Duplicate title group = %v, want 2 URLs", urls)
	}
	if len(s.MissingDescriptions) != 1 {
		t.Errorf("MissingDescriptions = %v", s.MissingDescriptions)
	}
	if len(s.ShortDescriptions) != 1 || s.ShortDescriptions[0] != "https://example.com/short" {
		t.Errorf("ShortDescriptions = %v", s.ShortDescriptions)
	}
	if urls := s.DuplicateContent["hash-dup"]; len(urls) != 2 {
		t.Errorf("DuplicateContent[hash-dup] = %v, want 2 URLs", urls)
	}
	if len(s.OrphanPages) != 1 || s.OrphanPages[0] != "https://example.com/dup-2" {
		t.Errorf("OrphanPages = %v", s.OrphanPages)
	}
	if len(s.SitemapOnlyURLs) != 1 {
		t.Errorf("SitemapOnlyURLs = %v", s.SitemapOnlyURLs)
	}
	if s.BrokenLinks != 3 || s.MissingAltImages != 2 {
		t.Errorf("BrokenLinks = %d, MissingAltImages = %d", s.BrokenLinks, s.MissingAltImages)
	}
	if s.SpellingIssues != 2 || s.GrammarIssues != 1 {
		t.Errorf("SpellingIssues = %d, GrammarIssues = %d", s.SpellingIssues, s.GrammarIssues)
	}
}

func TestBuildSummaryCountsCharactersNotBytes(t *testing.T) {
	cfg := config.DefaultConfig()
	pages := []*Page{
		{
			// 25 characters, 75 bytes: within the 10-60 title range
			URL:   "https://example.jp/ok",
			Title: strings.Repeat("あ", 25),
			// 100 characters, 300 bytes: within the 70-160 description range
			MetaDescription: strings.Repeat("い", 100),
			ContentHash:     "hash-jp-ok",
		},
		{
			// 40 characters, 120 bytes: short by character count even
			// though the byte count clears the 70 minimum
			URL:             "https://example.jp/short-desc",
			Title:           strings.Repeat("あ", 25),
			MetaDescription: strings.Repeat("い", 40),
			ContentHash:     "hash-jp-short",
		},
	}

	s := buildSummary(pages, cfg, 0, 0, nil)

	if len(s.ShortTitles) != 0 || len(s.LongTitles) != 0 {
		t.Errorf("multibyte titles misclassified: short=%v long=%v", s.ShortTitles, s.LongTitles)
	}
	if len(s.LongDescriptions) != 0 {
		t.Errorf("LongDescriptions = %v, want none", s.LongDescriptions)
	}
	if len(s.ShortDescriptions) != 1 || s.ShortDescriptions[0] != "https://example.jp/short-desc" {
		t.Errorf("ShortDescriptions = %v, want only the 40-character description", s.ShortDescriptions)
	}
}

func TestSummaryMarshalDeterministic(t *testing.T) {
	cfg := config.DefaultConfig()

	first, err := buildSummary(summaryPages(), cfg, 3, 2, nil).marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	second, err := buildSummary(summaryPages(), cfg, 3, 2, nil).marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if first != second {
		t.Errorf("Summary JSON is not deterministic:\n%s\n%s", first, second)
	}
	if !strings.Contains(first, `"sitemap_only_urls":[]`) {
		t.Errorf("nil sitemap list should serialize as an empty array, got: %s", first)
	}
}
