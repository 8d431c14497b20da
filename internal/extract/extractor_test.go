package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>  Sample Page  </title>
<meta name="description" content="A sample page for testing.">
<style>body { color: red; }</style>
</head>
<body>
<h1>Main Heading</h1>
<h2>Sub One</h2>
<h2>Sub Two</h2>
<h3>Detail</h3>
<p>Welcome to the sample page with some readable words.</p>
<script>var hidden = "should not appear";</script>
<a href="/about">About <strong>Us</strong></a>
<a href="https://other.example.org/partner">Partner site</a>
<a href="#section">Jump</a>
<a href="mailto:team@example.com">Mail</a>
<a href="tel:+15550100">Call</a>
<a href="javascript:void(0)">Noop</a>
<img src="/logo.png" alt="Company logo">
<img src="/decor.png" alt="">
<img src="banner.jpg">
</body>
</html>`

func TestExtract(t *testing.T) {
	facts, err := Extract([]byte(samplePage), "https://example.com/start", "example.com")
	require.NoError(t, err)

	assert.Equal(t, "Sample Page", facts.Title)
	assert.Equal(t, "A sample page for testing.", facts.MetaDescription)
	assert.Equal(t, 1, facts.H1Count)
	assert.Equal(t, 2, facts.H2Count)
	assert.Equal(t, 1, facts.H3Count)
	assert.Greater(t, facts.WordCount, 0)
	assert.NotEmpty(t, facts.ContentHash)
	assert.NotContains(t, facts.Text, "should not appear", "script content must be excluded")
	assert.NotContains(t, facts.Text, "color: red", "style content must be excluded")
}

func TestExtractLinks(t *testing.T) {
	facts, err := Extract([]byte(samplePage), "https://example.com/start", "example.com")
	require.NoError(t, err)

	// Fragment, mailto, tel and javascript hrefs are skipped
	require.Len(t, facts.Links, 2)

	internal := facts.Links[0]
	assert.Equal(t, "https://example.com/about", internal.URL)
	assert.Equal(t, "About Us", internal.AnchorText)
	assert.True(t, internal.Internal)

	external := facts.Links[1]
	assert.Equal(t, "https://other.example.org/partner", external.URL)
	assert.False(t, external.Internal)
}

func TestExtractImages(t *testing.T) {
	facts, err := Extract([]byte(samplePage), "https://example.com/start", "example.com")
	require.NoError(t, err)

	require.Len(t, facts.Images, 3)

	assert.Equal(t, "https://example.com/logo.png", facts.Images[0].URL)
	assert.Equal(t, "Company logo", facts.Images[0].Alt)
	assert.True(t, facts.Images[0].HasAlt)

	// Empty alt is still a present attribute
	assert.True(t, facts.Images[1].HasAlt)
	assert.Empty(t, facts.Images[1].Alt)

	// Relative src resolves against the page URL
	assert.Equal(t, "https://example.com/banner.jpg", facts.Images[2].URL)
	assert.False(t, facts.Images[2].HasAlt)
}

func TestExtractHostMatchingIsCaseInsensitive(t *testing.T) {
	page := `<html><body><a href="https://EXAMPLE.com/page">Link</a></body></html>`
	facts, err := Extract([]byte(page), "https://example.com", "Example.COM")
	require.NoError(t, err)

	require.Len(t, facts.Links, 1)
	assert.True(t, facts.Links[0].Internal)
}

func TestContentHashStability(t *testing.T) {
	textA := "identical content"
	assert.Equal(t, ContentHash(textA), ContentHash("identical content"))
	assert.NotEqual(t, ContentHash(textA), ContentHash("different content"))
	assert.Len(t, ContentHash(textA), 16)
}

func TestTextOf(t *testing.T) {
	html := `<html><body><p>Visible   text</p><script>ignore()</script></body></html>`
	assert.Equal(t, "Visible text", TextOf([]byte(html)))
}

func TestExtractReadingTime(t *testing.T) {
	words := make([]byte, 0, 4096)
	words = append(words, []byte("<html><body><p>")...)
	for i := 0; i < 400; i++ {
		words = append(words, []byte("word ")...)
	}
	words = append(words, []byte("</p></body></html>")...)

	facts, err := Extract(words, "https://example.com", "example.com")
	require.NoError(t, err)
	assert.Equal(t, 400, facts.WordCount)
	assert.InDelta(t, 2.0, facts.ReadingTimeMin, 0.01)
}
