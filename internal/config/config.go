package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"site_crawler/internal/models"
	urlqueue "site_crawler/internal/url_queue"
)

const (
	DefaultPort           = 4000
	DefaultTimeoutSec     = 8
	DefaultMaxBodyBytes   = 10 * 1024 * 1024
	DefaultMaxRedirects   = 15
	DefaultUserAgent      = "Mozilla/5.0 (compatible; site_crawler/1.0)"
	DefaultDatabase       = "site_crawler"
	DefaultDocumentsTable = "documents"
)

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DBConfig struct {
	Connection  string `yaml:"connection"`
	Database    string `yaml:"database"`
	Collections struct {
		Documents string `yaml:"documents"`
	} `yaml:"collections"`
}

// Enabled reports whether extracted pages should be archived in MongoDB.
func (c DBConfig) Enabled() bool {
	return c.Connection != ""
}

type LogicConfig struct {
	TimeoutSec        int    `yaml:"timeout_sec"`
	DefaultPageBudget int    `yaml:"default_page_budget"`
	MinContentLength  int    `yaml:"min_content_length"`
	UserAgent         string `yaml:"user_agent"`
	MaxBodyBytes      int    `yaml:"max_body_bytes"`
	MaxRedirects      int    `yaml:"max_redirects"`
	ScopeMode         string `yaml:"scope_mode"`
}

func (c LogicConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

type SpiderConfig struct {
	Server ServerConfig `yaml:"server"`
	Logic  LogicConfig  `yaml:"logic"`
	Log    LogConfig    `yaml:"log"`
	DB     DBConfig     `yaml:"db"`
}

func Default() *SpiderConfig {
	cfg := &SpiderConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the YAML file at path. An empty path yields the defaults.
// PORT in the environment overrides server.port in both cases.
func LoadConfig(path string) (*SpiderConfig, error) {
	var cfg SpiderConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		cfg.Server.Port = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SpiderConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Logic.TimeoutSec == 0 {
		c.Logic.TimeoutSec = DefaultTimeoutSec
	}
	if c.Logic.DefaultPageBudget == 0 {
		c.Logic.DefaultPageBudget = models.DefaultPageBudget
	}
	if c.Logic.MinContentLength == 0 {
		c.Logic.MinContentLength = models.MinContentLength
	}
	if c.Logic.UserAgent == "" {
		c.Logic.UserAgent = DefaultUserAgent
	}
	if c.Logic.MaxBodyBytes == 0 {
		c.Logic.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Logic.MaxRedirects == 0 {
		c.Logic.MaxRedirects = DefaultMaxRedirects
	}
	if c.Logic.ScopeMode == "" {
		c.Logic.ScopeMode = string(urlqueue.ScopeStrict)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = "console"
	}
	if c.DB.Database == "" {
		c.DB.Database = DefaultDatabase
	}
	if c.DB.Collections.Documents == "" {
		c.DB.Collections.Documents = DefaultDocumentsTable
	}
}

func (c *SpiderConfig) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Logic.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("logic.timeout_sec must be positive, got %d", c.Logic.TimeoutSec))
	}
	if c.Logic.DefaultPageBudget < 1 {
		errs = append(errs, fmt.Errorf("logic.default_page_budget must be at least 1, got %d", c.Logic.DefaultPageBudget))
	}
	if c.Logic.MinContentLength < 0 {
		errs = append(errs, fmt.Errorf("logic.min_content_length must not be negative, got %d", c.Logic.MinContentLength))
	}
	if c.Logic.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("logic.max_body_bytes must not be negative, got %d", c.Logic.MaxBodyBytes))
	}
	if _, err := urlqueue.ParseScopeMode(c.Logic.ScopeMode); err != nil {
		errs = append(errs, fmt.Errorf("logic.scope_mode: %w", err))
	}
	return errors.Join(errs...)
}
