// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/docwatch/internal/classify"
	"github.com/listenupapp/docwatch/internal/scanner"
	"github.com/listenupapp/docwatch/internal/trigger"
	"github.com/listenupapp/docwatch/internal/validation"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Watch     WatchConfig
	Trigger   TriggerConfig
	Generator GeneratorConfig
	Store     StoreConfig
	Server    ServerConfig

	// Warnings collects non-fatal problems found while loading, such as
	// deprecated settings. They are logged once the logger exists.
	Warnings []string
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string `env:"ENV"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL"`
}

// WatchConfig holds the watched tree and what to skip inside it.
type WatchConfig struct {
	Root                string   `env:"WATCH_ROOT" validate:"required,dir"`
	ExcludedDirectories []string `env:"EXCLUDED_DIRS"`
	IgnorePatterns      []string `env:"IGNORE_PATTERNS"`
	MaxSnapshotBytes    int64    `env:"MAX_SNAPSHOT_BYTES" validate:"gte=0"`
}

// TriggerConfig holds when and how documentation is triggered.
type TriggerConfig struct {
	ChangeThreshold  int           `env:"CHANGE_THRESHOLD" validate:"gte=1"`
	GenerateOnCreate bool          `env:"GENERATE_ON_CREATE"`
	Debounce         time.Duration `env:"DEBOUNCE" validate:"gt=0"`
	Cooldown         time.Duration `env:"COOLDOWN" validate:"gte=0"`
	// ExtensionDetailLevels maps ".ext" to a level. Empty means the default
	// extension set at the standard level.
	ExtensionDetailLevels map[string]classify.DetailLevel `env:"DETAIL_LEVELS"`
	// LegacyDetailLevel is the deprecated single global level. It is
	// accepted but never consulted; see Warnings.
	LegacyDetailLevel string `env:"DETAIL_LEVEL" validate:"detail_level"`
	DocSuffix         string `env:"DOC_SUFFIX"`
	DocOutputDir      string `env:"DOC_OUTPUT_DIR"`
}

// GeneratorConfig holds the documentation generator settings.
type GeneratorConfig struct {
	// Command is run once per dispatch. Empty selects the dry-run generator.
	Command       string        `env:"GENERATOR_COMMAND"`
	Timeout       time.Duration `env:"GENERATOR_TIMEOUT" validate:"gt=0"`
	RatePerMinute int           `env:"GENERATOR_RATE_PER_MINUTE" validate:"gte=0"`
	Burst         int           `env:"GENERATOR_BURST" validate:"gte=1"`
}

// StoreConfig holds the history database location.
type StoreConfig struct {
	Path string `env:"STORE_PATH" validate:"required"`
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Enabled      bool          `env:"SERVER_ENABLED"`
	Port         string        `env:"SERVER_PORT" validate:"required,numeric"` // Server port (default: 7331)
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"`                     // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT"`                    // HTTP write timeout (default: 0, SSE streams are long-lived)
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT"`                     // HTTP idle timeout (default: 60s)
	CORSOrigins  []string      `env:"CORS_ORIGINS"`                            // Allowed browser origins (default: *)
}

// LoadConfig loads configuration from the process arguments. See Load.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("docwatch", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Watch flags
	root := fs.String("root", "", "Directory tree to watch (default: current directory)")
	excludedDirs := fs.String("exclude", "", "Comma-separated directories to skip")
	ignorePatterns := fs.String("ignore", "", "Comma-separated glob patterns to skip")
	maxSnapshot := fs.String("max-snapshot-bytes", "", "Largest file kept as a diff baseline (default: 5MiB)")

	// Trigger flags
	threshold := fs.String("threshold", "", "Changed lines that arm the debounce timer (default: 40)")
	onCreate := fs.String("generate-on-create", "", "Document new files immediately (default: false)")
	debounce := fs.String("debounce", "", "Quiet period before generation (default: 20s)")
	cooldown := fs.String("cooldown", "", "Minimum spacing between generations per file (default: 30s)")
	detailLevels := fs.String("detail-levels", "", "Per-extension detail levels, e.g. .go=detailed,.ts=standard")
	docSuffix := fs.String("doc-suffix", "", "Suffix of generated documentation files (default: .doc.md)")
	docOutputDir := fs.String("doc-output-dir", "", "Directory generated documentation is written to (default: docs)")

	// Generator flags
	command := fs.String("generator-command", "", "Command run for each generation (default: dry run)")
	genTimeout := fs.String("generator-timeout", "", "Generator command timeout (default: 5m)")
	ratePerMinute := fs.String("generator-rate", "", "Generations per minute per trigger kind (default: 30)")
	burst := fs.String("generator-burst", "", "Generation burst size (default: 5)")

	// Store and server flags
	storePath := fs.String("store-path", "", "History database path (default: ~/.docwatch/history.db)")
	serverEnabled := fs.String("server", "", "Serve the control API (default: true)")
	serverPort := fs.String("port", "", "Server port (default: 7331)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 0)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma-separated allowed browser origins (default: *)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Watch: WatchConfig{
			Root:                getConfigValue(*root, "WATCH_ROOT", ""),
			ExcludedDirectories: getListConfigValue(*excludedDirs, "EXCLUDED_DIRS", scanner.DefaultExcludedDirs),
			IgnorePatterns:      getListConfigValue(*ignorePatterns, "IGNORE_PATTERNS", scanner.DefaultIgnorePatterns),
			MaxSnapshotBytes:    int64(getIntConfigValue(*maxSnapshot, "MAX_SNAPSHOT_BYTES", int(scanner.DefaultMaxSnapshotBytes))),
		},
		Trigger: TriggerConfig{
			ChangeThreshold:   getIntConfigValue(*threshold, "CHANGE_THRESHOLD", trigger.DefaultChangeThreshold),
			GenerateOnCreate:  getBoolConfigValue(*onCreate, "GENERATE_ON_CREATE", false),
			LegacyDetailLevel: getConfigValue("", "DETAIL_LEVEL", ""),
			DocSuffix:         getConfigValue(*docSuffix, "DOC_SUFFIX", ".doc.md"),
			DocOutputDir:      getConfigValue(*docOutputDir, "DOC_OUTPUT_DIR", "docs"),
		},
		Generator: GeneratorConfig{
			Command:       getConfigValue(*command, "GENERATOR_COMMAND", ""),
			RatePerMinute: getIntConfigValue(*ratePerMinute, "GENERATOR_RATE_PER_MINUTE", 30),
			Burst:         getIntConfigValue(*burst, "GENERATOR_BURST", 5),
		},
		Store: StoreConfig{
			Path: getConfigValue(*storePath, "STORE_PATH", ""),
		},
		Server: ServerConfig{
			Enabled:     getBoolConfigValue(*serverEnabled, "SERVER_ENABLED", true),
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "7331"),
			CORSOrigins: getListConfigValue(*corsOrigins, "CORS_ORIGINS", []string{"*"}),
		},
	}

	levels, err := parseDetailLevels(getConfigValue(*detailLevels, "DETAIL_LEVELS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid DETAIL_LEVELS: %w", err)
	}
	cfg.Trigger.ExtensionDetailLevels = levels

	durations := []struct {
		target     *time.Duration
		flagValue  string
		envKey     string
		defaultVal string
	}{
		{&cfg.Trigger.Debounce, *debounce, "DEBOUNCE", trigger.DefaultDebounce.String()},
		{&cfg.Trigger.Cooldown, *cooldown, "COOLDOWN", trigger.DefaultCooldown.String()},
		{&cfg.Generator.Timeout, *genTimeout, "GENERATOR_TIMEOUT", "5m"},
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "0s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
	}
	for _, d := range durations {
		value := getConfigValue(d.flagValue, d.envKey, d.defaultVal)
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, value, err)
		}
		*d.target = parsed
	}

	if err := cfg.expandWatchRoot(); err != nil {
		return nil, fmt.Errorf("invalid watch root: %w", err)
	}

	if err := cfg.expandStorePath(); err != nil {
		return nil, fmt.Errorf("invalid store path: %w", err)
	}

	if cfg.Trigger.LegacyDetailLevel != "" && len(cfg.Trigger.ExtensionDetailLevels) == 0 {
		cfg.Warnings = append(cfg.Warnings,
			"DETAIL_LEVEL is deprecated and ignored; configured extensions use the standard level, set DETAIL_LEVELS instead")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	return validation.New().Validate(c)
}

// TriggerConfig derives the trigger controller settings.
func (c *Config) TriggerConfig() trigger.Config {
	return trigger.Config{
		Root:             c.Watch.Root,
		ChangeThreshold:  c.Trigger.ChangeThreshold,
		GenerateOnCreate: c.Trigger.GenerateOnCreate,
		Debounce:         c.Trigger.Debounce,
		Cooldown:         c.Trigger.Cooldown,
	}
}

// ScannerOptions derives the filtering options shared by scanner and watcher.
func (c *Config) ScannerOptions() scanner.Options {
	return scanner.Options{
		ExcludedDirs:     c.Watch.ExcludedDirectories,
		IgnorePatterns:   c.Watch.IgnorePatterns,
		MaxSnapshotBytes: c.Watch.MaxSnapshotBytes,
	}
}

// Resolver builds the detail-level lookup table once.
func (c *Config) Resolver() *classify.Resolver {
	return classify.NewResolver(c.Trigger.ExtensionDetailLevels)
}

// Classifier builds the path classifier around resolver.
func (c *Config) Classifier(resolver *classify.Resolver) *classify.Classifier {
	return classify.NewClassifier(c.Watch.Root, c.Watch.ExcludedDirectories, c.Trigger.DocSuffix, c.Trigger.DocOutputDir, resolver)
}

// parseDetailLevels parses ".go=detailed,ts=minimal".
func parseDetailLevels(s string) (map[string]classify.DetailLevel, error) {
	levels := make(map[string]classify.DetailLevel)
	for _, entry := range splitList(s) {
		ext, level, ok := strings.Cut(entry, "=")
		ext = strings.TrimSpace(ext)
		if !ok || ext == "" {
			return nil, fmt.Errorf("entry %q must look like .ext=level", entry)
		}
		parsed, err := classify.ParseDetailLevel(level)
		if err != nil {
			return nil, err
		}
		levels[classify.NormalizeExt(ext)] = parsed
	}
	return levels, nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	// Expand tilde.
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	// Make absolute if needed.
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandWatchRoot defaults the root to the working directory.
func (c *Config) expandWatchRoot() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	expanded, err := expandPath(c.Watch.Root, cwd)
	if err != nil {
		return err
	}
	c.Watch.Root = expanded
	return nil
}

// expandStorePath defaults the history database to ~/.docwatch/history.db.
func (c *Config) expandStorePath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".docwatch", "history.db")

	expanded, err := expandPath(c.Store.Path, defaultPath)
	if err != nil {
		return err
	}
	c.Store.Path = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strings.TrimSpace(strValue))
	if err != nil {
		return defaultValue
	}
	return result
}

// getListConfigValue returns a comma-separated list from flag, env var, or default.
// The value "none" yields an empty list.
func getListConfigValue(flagValue, envKey string, defaultValue []string) []string {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return append([]string(nil), defaultValue...)
	}
	if strings.EqualFold(strings.TrimSpace(strValue), "none") {
		return []string{}
	}
	return splitList(strValue)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present.
		value = strings.Trim(value, `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
