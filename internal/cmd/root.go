// Package cmd provides the command-line interface for SEOScan.
// It handles command parsing, configuration loading, and scan execution.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/seoscanhq/seoscan/internal/config"
	"github.com/seoscanhq/seoscan/internal/logging"
	"github.com/seoscanhq/seoscan/internal/scan"
	"github.com/seoscanhq/seoscan/internal/storage"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seoscan [URL]",
	Short: "A website scanner for SEO and content issues",
	Long: `SEOScan crawls a website from a start URL, records its pages,
links and images, and analyzes page content for readability,
spelling and grammar issues. Results are stored in SQLite.

A start URL ending in .xml is treated as a sitemap: every listed
URL is scanned and no links are followed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./seoscan.yml)")

	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	rootCmd.Flags().IntP("workers", "w", 4, "Number of concurrent crawl workers")
	rootCmd.Flags().DurationP("delay", "r", 100*time.Millisecond, "Delay between requests per host")
	rootCmd.Flags().DurationP("timeout", "t", 10*time.Second, "HTTP request timeout")
	rootCmd.Flags().Duration("scan-timeout", 30*time.Minute, "Wall-clock cap for a whole scan (0=unlimited)")
	rootCmd.Flags().StringP("user-agent", "u", "SEOScan/1.0", "HTTP User-Agent header")
	rootCmd.Flags().Bool("ignore-robots", false, "Ignore robots.txt rules")
	rootCmd.Flags().IntP("limit", "l", 200, "Stop after N pages")
	rootCmd.Flags().Int("max-depth", 0, "Maximum link depth from the start URL (0=unlimited)")
	rootCmd.Flags().Int("max-image-size", 150, "Flag images larger than this many KB")
	rootCmd.Flags().Bool("analyze-unchanged", false, "Re-analyze pages whose content has not changed since the last scan")

	rootCmd.Flags().StringP("database", "d", "./seoscan.db", "Path to SQLite database file")

	rootCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().String("log-file", "", "Log file path (empty=stdout only)")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"worker_count", "workers"},
		{"request_delay", "delay"},
		{"request_timeout", "timeout"},
		{"scan_timeout", "scan-timeout"},
		{"user_agent", "user-agent"},
		{"ignore_robots", "ignore-robots"},
		{"max_pages", "limit"},
		{"max_depth", "max-depth"},
		{"max_image_size_kb", "max-image-size"},
		{"analyze_unchanged", "analyze-unchanged"},
		{"database_path", "database"},
	}

	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.Flags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("seoscan")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SEOSCAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func generateUserAgent() string {
	if version != "" && version != "dev" {
		return fmt.Sprintf("SEOScan/%s", version)
	}
	return "SEOScan/dev"
}

func showCurrentConfig(cfg *config.ScanConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Configuration validation failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "Displaying configuration anyway...\n\n")
	}

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Printf("# Current SEOScan Configuration\n")
	fmt.Printf("# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("# Configuration file search paths: ./seoscan.yml\n")
	fmt.Printf("# Environment variables prefix: SEOSCAN_\n\n")

	fmt.Print(string(yamlData))

	fmt.Printf("\n# Configuration source priority:\n")
	fmt.Printf("# 1. Command-line arguments (highest priority)\n")
	fmt.Printf("# 2. Environment variables (SEOSCAN_ prefix)\n")
	fmt.Printf("# 3. Configuration file (seoscan.yml)\n")
	fmt.Printf("# 4. Default values (lowest priority)\n")

	return nil
}

func runScan(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	cfg := config.DefaultConfig()

	if len(args) > 0 {
		cfg.StartURL = args[0]
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !cmd.Flags().Changed("user-agent") && cfg.UserAgent == "SEOScan/1.0" {
		cfg.UserAgent = generateUserAgent()
	}

	if showConfig {
		return showCurrentConfig(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logLevel, _ := cmd.Flags().GetString("log-level")
	logFile, _ := cmd.Flags().GetString("log-file")
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(logLevel)
	logCfg.FilePath = logFile
	if err := logging.SetDefault(*logCfg); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}

	dbDir := filepath.Dir(cfg.DatabasePath)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	fmt.Printf("Starting scan with configuration:\n")
	fmt.Printf("  Start URL: %s\n", cfg.StartURL)
	fmt.Printf("  Workers: %d\n", cfg.WorkerCount)
	fmt.Printf("  Page Limit: %d\n", cfg.MaxPages)
	fmt.Printf("  Request Delay: %v\n", cfg.RequestDelay)
	fmt.Printf("  Database: %s\n", cfg.DatabasePath)
	fmt.Printf("  Ignore Robots: %t\n", cfg.IgnoreRobots)

	coordinator := scan.NewCoordinator(cfg, store, store, scan.NewMetrics())

	scanID, err := coordinator.Run(cmd.Context(), cfg.StartURL)
	if err != nil {
		return fmt.Errorf("scan %d failed: %w", scanID, err)
	}

	result, err := store.GetScan(scanID)
	if err != nil {
		return fmt.Errorf("failed to load scan result: %w", err)
	}

	stats := coordinator.GetStats()
	fmt.Printf("\nScan %d completed in %v\n", scanID, stats.Duration.Round(time.Millisecond))
	fmt.Printf("  Pages crawled: %d\n", stats.PagesCrawled)
	fmt.Printf("  Pages analyzed: %d\n", stats.PagesAnalyzed)
	fmt.Printf("  Total issues: %d\n", result.TotalIssues)
	fmt.Printf("  New: %d  Updated: %d  Unchanged: %d\n",
		result.NewCount, result.UpdatedCount, result.ExistingCount)

	return nil
}
