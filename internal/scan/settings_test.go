package scan

import (
	"errors"
	"testing"

	"github.com/seoscanhq/seoscan/internal/config"
)

type mapSettings map[string]string

func (m mapSettings) Get(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

func TestApplySettings(t *testing.T) {
	t.Run("nil settings keep defaults", func(t *testing.T) {
		cfg := config.DefaultConfig()
		if err := applySettings(cfg, nil); err != nil {
			t.Fatalf("applySettings(nil) returned error: %v", err)
		}
		if cfg.MaxPages != 200 {
			t.Errorf("MaxPages = %d, want default 200", cfg.MaxPages)
		}
	})

	t.Run("overrides applied", func(t *testing.T) {
		cfg := config.DefaultConfig()
		settings := mapSettings{
			SettingMaxPages:       "50",
			SettingMaxImageSizeKB: "300",
			SettingWorkerCount:    "8",
			SettingAnalyzeAll:     "true",
		}
		if err := applySettings(cfg, settings); err != nil {
			t.Fatalf("applySettings returned error: %v", err)
		}
		if cfg.MaxPages != 50 {
			t.Errorf("MaxPages = %d, want 50", cfg.MaxPages)
		}
		if cfg.MaxImageSizeKB != 300 {
			t.Errorf("MaxImageSizeKB = %d, want 300", cfg.MaxImageSizeKB)
		}
		if cfg.WorkerCount != 8 {
			t.Errorf("WorkerCount = %d, want 8", cfg.WorkerCount)
		}
		if !cfg.AnalyzeUnchanged {
			t.Error("AnalyzeUnchanged should be true")
		}
	})

	t.Run("absent keys keep defaults", func(t *testing.T) {
		cfg := config.DefaultConfig()
		if err := applySettings(cfg, mapSettings{SettingMaxDepth: "3"}); err != nil {
			t.Fatalf("applySettings returned error: %v", err)
		}
		if cfg.MaxDepth != 3 {
			t.Errorf("MaxDepth = %d, want 3", cfg.MaxDepth)
		}
		if cfg.MaxPages != 200 {
			t.Errorf("MaxPages = %d, want untouched default 200", cfg.MaxPages)
		}
	})

	t.Run("malformed integer is a config error", func(t *testing.T) {
		cfg := config.DefaultConfig()
		err := applySettings(cfg, mapSettings{SettingMaxPages: "lots"})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
		}
		if cfgErr.Key != SettingMaxPages {
			t.Errorf("ConfigError.Key = %q, want %q", cfgErr.Key, SettingMaxPages)
		}
	})

	t.Run("negative value is a config error", func(t *testing.T) {
		cfg := config.DefaultConfig()
		err := applySettings(cfg, mapSettings{SettingMaxImageSizeKB: "-1"})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
		}
	})

	t.Run("malformed boolean is a config error", func(t *testing.T) {
		cfg := config.DefaultConfig()
		err := applySettings(cfg, mapSettings{SettingAnalyzeAll: "maybe"})
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
		}
	})
}
