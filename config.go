package urlmanager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/genaku/urlmanager/parser"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config describes a Manager. Values may reference environment variables as
// ${VAR} or ${VAR:-default}.
type Config struct {
	// Domains maps a domain name to its replacement base URL.
	Domains map[string]string `json:"domains" yaml:"domains"`

	GlobalDomain    string `json:"global_domain" yaml:"global_domain"`
	AdvancedBaseURL string `json:"advanced_base_url" yaml:"advanced_base_url"`

	// CacheSize defaults to DefaultCacheSize when zero.
	CacheSize int `json:"cache_size" yaml:"cache_size"`

	// SchemePolicy is "replacement" (default) or "original".
	SchemePolicy string `json:"scheme_policy" yaml:"scheme_policy"`

	// Disabled creates the manager stopped.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// LoadConfigFromFile reads a YAML or JSON config. envFiles are loaded into the
// process environment first; variables already set are not overridden.
func LoadConfigFromFile(filename string, envFiles ...string) (*Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig expands environment references in data and decodes it as YAML,
// falling back to JSON.
func ParseConfig(data []byte) (*Config, error) {
	expanded := []byte(expandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expanded, &config); err != nil {
		if err := json.Unmarshal(expanded, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file as YAML or JSON: %w", err)
		}
	}
	return &config, nil
}

// expandEnv replaces ${VAR} and ${VAR:-default}. Unset variables without a
// default expand to the empty string.
func expandEnv(s string) string {
	return os.Expand(s, func(key string) string {
		name, def, hasDefault := strings.Cut(key, ":-")
		if v, ok := os.LookupEnv(name); ok && v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return ""
	})
}

// ValidateConfig checks every URL and field of config.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: configuration is nil", ErrInvalidConfig)
	}
	for name, raw := range config.Domains {
		if name == "" {
			return fmt.Errorf("%w: domain name cannot be empty", ErrInvalidConfig)
		}
		if name == GlobalDomainName {
			return fmt.Errorf("%w: domain name %q is reserved, use global_domain", ErrInvalidConfig, name)
		}
		if _, err := parser.Parse(raw); err != nil {
			return fmt.Errorf("%w: domain %q: %w", ErrInvalidConfig, name, err)
		}
	}
	if config.GlobalDomain != "" {
		if _, err := parser.Parse(config.GlobalDomain); err != nil {
			return fmt.Errorf("%w: global_domain: %w", ErrInvalidConfig, err)
		}
	}
	if config.AdvancedBaseURL != "" {
		if _, err := parser.Parse(config.AdvancedBaseURL); err != nil {
			return fmt.Errorf("%w: advanced_base_url: %w", ErrInvalidConfig, err)
		}
	}
	if config.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must be >= 0, got %d", ErrInvalidConfig, config.CacheSize)
	}
	if _, err := config.schemePolicy(); err != nil {
		return err
	}
	return nil
}

func (c *Config) schemePolicy() (parser.SchemePolicy, error) {
	switch strings.ToLower(c.SchemePolicy) {
	case "", SchemePolicyReplacement:
		return parser.SchemeFromReplacement, nil
	case SchemePolicyOriginal:
		return parser.SchemeFromOriginal, nil
	default:
		return 0, fmt.Errorf("%w: unknown scheme_policy %q", ErrInvalidConfig, c.SchemePolicy)
	}
}

// NewManagerFromConfig validates config and builds a Manager from it. opts
// are applied after the config values.
func NewManagerFromConfig(config *Config, opts ...ManagerOption) (*Manager, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	policy, _ := config.schemePolicy()
	base := []ManagerOption{WithSchemePolicy(policy)}
	if config.CacheSize > 0 {
		base = append(base, WithCacheSize(config.CacheSize))
	}
	m, err := NewManager(append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	for name, raw := range config.Domains {
		if err := m.PutDomain(name, raw); err != nil {
			return nil, err
		}
	}
	if config.GlobalDomain != "" {
		if err := m.SetGlobalDomain(config.GlobalDomain); err != nil {
			return nil, err
		}
	}
	if config.AdvancedBaseURL != "" {
		if err := m.StartAdvancedMode(config.AdvancedBaseURL); err != nil {
			return nil, err
		}
	}
	m.SetRun(!config.Disabled)
	return m, nil
}
