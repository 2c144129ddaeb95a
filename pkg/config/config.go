package config

import (
	"fmt"
	"os"
	"strings"

	"hugo-micropub/pkg/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Server settings come from the environment; site settings come from the
// YAML config file.
type Server struct {
	Addr       string
	ConfigPath string
	LogLevel   string
}

// LoadServer reads server settings from the environment, loading a local
// .env file first when present.
func LoadServer() Server {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Println("No .env file found or error loading it.")
	}
	return Server{
		Addr:       getEnv("MICROPUB_ADDR", ":8080"),
		ConfigPath: getEnv("MICROPUB_CONFIG", "config.yml"),
		LogLevel:   getEnv("MICROPUB_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadSite reads and validates the site config file.
func LoadSite(path string) (*models.SiteConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site config: %w", err)
	}

	var cfg models.SiteConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("parse site config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	// Both roots are used by bare concatenation, so the trailing slash is
	// load-bearing.
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	if !strings.HasSuffix(cfg.SourcePath, "/") {
		cfg.SourcePath += "/"
	}
	return &cfg, nil
}

func validate(cfg *models.SiteConfig) error {
	if cfg.BaseURL == "" {
		return fmt.Errorf("site config: base_url is required")
	}
	if cfg.SourcePath == "" {
		return fmt.Errorf("site config: source_path is required")
	}
	seen := make(map[string]bool, len(cfg.ContentPaths))
	for _, r := range cfg.ContentPaths {
		if r.Type == "" {
			return fmt.Errorf("site config: content_paths entry without a type")
		}
		if seen[r.Type] {
			return fmt.Errorf("site config: duplicate content_paths entry for %q", r.Type)
		}
		seen[r.Type] = true
	}
	for uid, target := range cfg.Syndication {
		if target.Kind == "" {
			return fmt.Errorf("site config: syndication target %q has no kind", uid)
		}
	}
	return nil
}
