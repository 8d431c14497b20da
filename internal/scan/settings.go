package scan

import (
	"fmt"
	"strconv"

	"github.com/seoscanhq/seoscan/internal/config"
)

// Settings table keys recognized at scan start. Values override the static
// configuration for the scan being started.
const (
	SettingMaxImageSizeKB = "max_image_size_kb"
	SettingMaxPages       = "max_pages_limit"
	SettingMaxDepth       = "max_depth"
	SettingWorkerCount    = "worker_count"
	SettingSnippetLimit   = "issue_snippet_limit"
	SettingAnalyzeAll     = "analyze_unchanged"
	SettingMinTitleLength = "min_title_length"
	SettingMaxTitleLength = "max_title_length"
	SettingMinDescLength  = "min_desc_length"
	SettingMaxDescLength  = "max_desc_length"
)

// applySettings overlays stored settings onto a scan's configuration.
// A malformed value is a ConfigError and aborts the scan before it leaves
// pending; absent keys keep their configured defaults.
func applySettings(cfg *config.ScanConfig, settings Settings) error {
	if settings == nil {
		return nil
	}

	intTargets := []struct {
		key string
		dst *int
	}{
		{SettingMaxImageSizeKB, &cfg.MaxImageSizeKB},
		{SettingMaxPages, &cfg.MaxPages},
		{SettingMaxDepth, &cfg.MaxDepth},
		{SettingWorkerCount, &cfg.WorkerCount},
		{SettingSnippetLimit, &cfg.SnippetLimit},
		{SettingMinTitleLength, &cfg.MinTitleLength},
		{SettingMaxTitleLength, &cfg.MaxTitleLength},
		{SettingMinDescLength, &cfg.MinDescLength},
		{SettingMaxDescLength, &cfg.MaxDescLength},
	}

	for _, target := range intTargets {
		raw, ok := settings.Get(target.key)
		if !ok {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return &ConfigError{Key: target.key, Err: fmt.Errorf("not an integer: %q", raw)}
		}
		if value < 0 {
			return &ConfigError{Key: target.key, Err: fmt.Errorf("must not be negative: %d", value)}
		}
		*target.dst = value
	}

	if raw, ok := settings.Get(SettingAnalyzeAll); ok {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return &ConfigError{Key: SettingAnalyzeAll, Err: fmt.Errorf("not a boolean: %q", raw)}
		}
		cfg.AnalyzeUnchanged = value
	}

	return nil
}
