// Package config builds the runtime configuration of the server and agent
// binaries from environment variables and the GraphRAG settings.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cristofima/maf-graphrag-series/internal/util"
	"github.com/cristofima/maf-graphrag-series/pkg/search"

	"github.com/go-playground/validator"
	"gopkg.in/yaml.v3"
)

const (
	SettingsFile     = "settings.yaml"
	DefaultOutputDir = "output"
)

// Config is the configuration of the MCP server.
type Config struct {
	ServerName    string `validate:"required"`
	ServerVersion string `validate:"required"`

	// Transport is "http" or "stdio".
	Transport string `validate:"oneof=http stdio"`
	Host      string `validate:"required"`
	Port      int    `validate:"min=1,max=65535"`
	// APIKey, when set, protects the MCP and API routes with a bearer token.
	APIKey string

	Root      string `validate:"required"`
	OutputDir string `validate:"required"`
	Watch     bool

	DefaultCommunityLevel int `validate:"min=0"`
	DefaultResponseType   string `validate:"required"`

	SearchURL        string `validate:"required,url"`
	SearchAPIKey     string
	SearchTimeout    time.Duration
	SearchMaxRetries int `validate:"min=1"`

	S3 S3Config

	Debug     bool
	LogFormat string
}

// S3Config describes the optional artifact bucket synced into OutputDir at
// startup. Sync is disabled when Bucket is empty.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether artifacts should be pulled from S3.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// ServerURL is the base URL clients use to reach the HTTP transport.
func (c *Config) ServerURL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// Address is the listen address of the HTTP transport.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SearchOptions returns the default engine options.
func (c *Config) SearchOptions() search.Options {
	return search.Options{
		CommunityLevel: c.DefaultCommunityLevel,
		ResponseType:   c.DefaultResponseType,
	}
}

// Load reads the server configuration from the environment. OutputDir comes
// from GRAPHRAG_OUTPUT_DIR, then settings.yaml under GRAPHRAG_ROOT, then
// GRAPHRAG_ROOT/output.
func Load() (*Config, error) {
	root := util.GetEnvString("GRAPHRAG_ROOT", ".")

	cfg := &Config{
		ServerName:            util.GetEnvString("MCP_SERVER_NAME", "graphrag-mcp"),
		ServerVersion:         util.GetEnvString("MCP_SERVER_VERSION", "1.0.0"),
		Transport:             strings.ToLower(util.GetEnvString("MCP_TRANSPORT", "http")),
		Host:                  util.GetEnvString("MCP_HOST", "127.0.0.1"),
		Port:                  util.GetEnvInt("MCP_PORT", 8011),
		APIKey:                util.GetEnv("MCP_API_KEY"),
		Root:                  root,
		Watch:                 util.GetEnvBool("GRAPHRAG_WATCH", true),
		DefaultCommunityLevel: util.GetEnvInt("GRAPHRAG_COMMUNITY_LEVEL", search.DefaultCommunityLevel),
		DefaultResponseType:   util.GetEnvString("GRAPHRAG_RESPONSE_TYPE", search.DefaultResponseType),
		SearchURL:             util.GetEnvString("GRAPHRAG_SEARCH_URL", "http://127.0.0.1:8010"),
		SearchAPIKey:          util.GetEnv("GRAPHRAG_SEARCH_API_KEY"),
		SearchTimeout:         util.GetEnvDuration("GRAPHRAG_SEARCH_TIMEOUT", 120*time.Second),
		SearchMaxRetries:      util.GetEnvInt("GRAPHRAG_SEARCH_MAX_RETRIES", 3),
		S3: S3Config{
			Bucket:    util.GetEnv("GRAPHRAG_S3_BUCKET"),
			Prefix:    util.GetEnv("GRAPHRAG_S3_PREFIX"),
			Region:    util.GetEnvString("AWS_REGION", "us-east-1"),
			Endpoint:  util.GetEnv("AWS_ENDPOINT_URL_S3"),
			AccessKey: util.GetEnv("AWS_ACCESS_KEY_ID"),
			SecretKey: util.GetEnv("AWS_SECRET_ACCESS_KEY"),
		},
		Debug:     util.GetEnvBool("DEBUG", false),
		LogFormat: util.GetEnvString("LOG_FORMAT", "text"),
	}

	outputDir := util.GetEnv("GRAPHRAG_OUTPUT_DIR")
	if outputDir == "" {
		var err error
		outputDir, err = ResolveOutputDir(root)
		if err != nil {
			return nil, err
		}
	}
	cfg.OutputDir = outputDir

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

type baseDir struct {
	BaseDir string `yaml:"base_dir"`
}

type settings struct {
	OutputStorage baseDir `yaml:"output_storage"`
	Output        baseDir `yaml:"output"`
	Storage       baseDir `yaml:"storage"`
}

// ResolveOutputDir returns the artifact directory declared in
// root/settings.yaml. GraphRAG 3.x uses output_storage.base_dir; older
// layouts use output.base_dir or storage.base_dir. A missing settings file
// or key falls back to root/output. Relative paths are joined onto root.
func ResolveOutputDir(root string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(root, SettingsFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return filepath.Join(root, DefaultOutputDir), nil
		}
		return "", fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}

	var s settings
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", SettingsFile, err)
	}

	dir := DefaultOutputDir
	for _, candidate := range []string{s.OutputStorage.BaseDir, s.Output.BaseDir, s.Storage.BaseDir} {
		if strings.TrimSpace(candidate) != "" {
			dir = strings.TrimSpace(candidate)
			break
		}
	}
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	return filepath.Join(root, dir), nil
}
