package scan

import (
	"testing"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase scheme and host",
			input:    "HTTPS://Example.COM/Page",
			expected: "https://example.com/Page",
		},
		{
			name:     "strip trailing slash",
			input:    "https://example.com/about/",
			expected: "https://example.com/about",
		},
		{
			name:     "drop fragment",
			input:    "https://example.com/page#section",
			expected: "https://example.com/page",
		},
		{
			name:     "root path collapses to bare host",
			input:    "https://example.com/",
			expected: "https://example.com",
		},
		{
			name:     "query preserved",
			input:    "https://example.com/search?q=go",
			expected: "https://example.com/search?q=go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if err != nil {
				t.Fatalf("NormalizeURL(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFrontierDeduplication(t *testing.T) {
	f := NewFrontier(100, 0)

	if !f.Enqueue("https://example.com/page", 0) {
		t.Fatal("First enqueue should be accepted")
	}

	// Equivalent forms of the same URL must all be rejected
	duplicates := []string{
		"https://example.com/page",
		"https://EXAMPLE.com/page",
		"https://example.com/page/",
		"https://example.com/page#top",
	}
	for _, dup := range duplicates {
		if f.Enqueue(dup, 1) {
			t.Errorf("Enqueue(%q) accepted a duplicate", dup)
		}
	}

	if f.Len() != 1 {
		t.Errorf("Queue length = %d, want 1", f.Len())
	}
}

func TestFrontierFIFOOrder(t *testing.T) {
	f := NewFrontier(100, 0)

	urls := []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}
	for i, u := range urls {
		f.Enqueue(u, i)
	}

	for i, want := range urls {
		entry, ok := f.Dequeue()
		if !ok {
			t.Fatalf("Dequeue %d returned empty", i)
		}
		if entry.URL != want {
			t.Errorf("Dequeue %d = %q, want %q", i, entry.URL, want)
		}
		if entry.Depth != i {
			t.Errorf("Dequeue %d depth = %d, want %d", i, entry.Depth, i)
		}
		f.Done()
	}

	if _, ok := f.Dequeue(); ok {
		t.Error("Dequeue on empty frontier should report false")
	}
}

func TestFrontierPageCap(t *testing.T) {
	f := NewFrontier(2, 0)

	if !f.Enqueue("https://example.com/1", 0) {
		t.Fatal("First enqueue rejected")
	}
	if !f.Enqueue("https://example.com/2", 0) {
		t.Fatal("Second enqueue rejected")
	}
	if f.Enqueue("https://example.com/3", 0) {
		t.Error("Enqueue beyond page cap should be rejected")
	}
	if f.SeenCount() != 2 {
		t.Errorf("SeenCount = %d, want 2", f.SeenCount())
	}
}

func TestFrontierDepthCap(t *testing.T) {
	f := NewFrontier(100, 2)

	if !f.Enqueue("https://example.com/shallow", 2) {
		t.Error("Enqueue at the depth cap should be accepted")
	}
	if f.Enqueue("https://example.com/deep", 3) {
		t.Error("Enqueue beyond the depth cap should be rejected")
	}
}

func TestFrontierIdle(t *testing.T) {
	f := NewFrontier(100, 0)

	if !f.Idle() {
		t.Error("Empty frontier should be idle")
	}

	f.Enqueue("https://example.com", 0)
	if f.Idle() {
		t.Error("Frontier with queued work should not be idle")
	}

	entry, ok := f.Dequeue()
	if !ok {
		t.Fatal("Dequeue failed")
	}
	if f.Idle() {
		t.Errorf("Frontier with %q in flight should not be idle", entry.URL)
	}

	f.Done()
	if !f.Idle() {
		t.Error("Frontier should be idle after Done")
	}
}

func TestFrontierSeen(t *testing.T) {
	f := NewFrontier(100, 0)
	f.Enqueue("https://example.com/page", 0)

	if !f.Seen("https://example.com/page/") {
		t.Error("Seen should match the normalized form")
	}
	if f.Seen("https://example.com/other") {
		t.Error("Seen should be false for unknown URLs")
	}
}

func TestFrontierDrain(t *testing.T) {
	f := NewFrontier(100, 0)
	f.Enqueue("https://example.com/a", 0)
	f.Enqueue("https://example.com/b", 0)

	f.Drain()
	if f.Len() != 0 {
		t.Errorf("Len after Drain = %d, want 0", f.Len())
	}
	// Seen entries survive: drained URLs must not be re-enqueued
	if f.Enqueue("https://example.com/a", 0) {
		t.Error("Drained URL should still count as seen")
	}
}
