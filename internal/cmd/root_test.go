package cmd

import (
	"strings"
	"testing"

	"github.com/seoscanhq/seoscan/internal/config"
)

func TestGenerateUserAgent(t *testing.T) {
	origVersion := version
	defer func() { version = origVersion }()

	version = "1.2.3"
	if got := generateUserAgent(); got != "SEOScan/1.2.3" {
		t.Errorf("generateUserAgent() = %q, want SEOScan/1.2.3", got)
	}

	version = "dev"
	if got := generateUserAgent(); got != "SEOScan/dev" {
		t.Errorf("generateUserAgent() = %q, want SEOScan/dev", got)
	}

	version = ""
	if got := generateUserAgent(); got != "SEOScan/dev" {
		t.Errorf("generateUserAgent() = %q, want SEOScan/dev", got)
	}
}

func TestShowCurrentConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.StartURL = "https://example.com"

	if err := showCurrentConfig(cfg); err != nil {
		t.Errorf("showCurrentConfig returned error: %v", err)
	}

	if err := showCurrentConfig(nil); err == nil {
		t.Error("showCurrentConfig(nil) should return an error")
	}
}

func TestRootCommandRejectsExtraArgs(t *testing.T) {
	cmd := rootCmd
	if err := cmd.Args(cmd, []string{"https://a.example.com", "https://b.example.com"}); err == nil {
		t.Error("more than one URL argument should be rejected")
	}
	if err := cmd.Args(cmd, []string{"https://a.example.com"}); err != nil {
		t.Errorf("a single URL argument should be accepted, got: %v", err)
	}
	if err := cmd.Args(cmd, nil); err != nil {
		t.Errorf("zero arguments should be accepted (start URL may come from config), got: %v", err)
	}
}

func TestFlagDefaults(t *testing.T) {
	checks := map[string]string{
		"workers":  "4",
		"limit":    "200",
		"database": "./seoscan.db",
	}
	for name, want := range checks {
		flag := rootCmd.Flags().Lookup(name)
		if flag == nil {
			t.Errorf("flag %q is not registered", name)
			continue
		}
		if !strings.EqualFold(flag.DefValue, want) {
			t.Errorf("flag %q default = %q, want %q", name, flag.DefValue, want)
		}
	}
}
