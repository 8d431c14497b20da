package scan

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
)

const robotsBody = `User-agent: *
Disallow: /private/
Disallow: /admin
`

func TestRobotsCheckerIsAllowed(t *testing.T) {
	fetcher := newMockedFetcher(t)
	httpmock.RegisterResponder("GET", "https://example.com/robots.txt",
		httpmock.NewStringResponder(200, robotsBody))

	checker := NewRobotsChecker(fetcher, "SEOScan/test", false)
	ctx := context.Background()

	assert.True(t, checker.IsAllowed(ctx, "https://example.com/public/page"))
	assert.False(t, checker.IsAllowed(ctx, "https://example.com/private/secret"))
	assert.False(t, checker.IsAllowed(ctx, "https://example.com/admin"))
	assert.True(t, checker.IsAllowed(ctx, "https://example.com"))

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["GET https://example.com/robots.txt"], "robots.txt must be fetched once per host")
}

func TestRobotsCheckerIgnoreFlag(t *testing.T) {
	fetcher := newMockedFetcher(t)
	checker := NewRobotsChecker(fetcher, "SEOScan/test", true)

	assert.True(t, checker.IsAllowed(context.Background(), "https://example.com/private/secret"))
	assert.Equal(t, 0, httpmock.GetTotalCallCount(), "ignoring robots must not fetch anything")
}

func TestRobotsCheckerMissingRobotsAllowsAll(t *testing.T) {
	fetcher := newMockedFetcher(t)
	httpmock.RegisterResponder("GET", "https://example.com/robots.txt",
		httpmock.NewStringResponder(404, "not found"))

	checker := NewRobotsChecker(fetcher, "SEOScan/test", false)
	assert.True(t, checker.IsAllowed(context.Background(), "https://example.com/anything"))
}
