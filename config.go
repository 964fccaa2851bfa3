package propguard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the tunables of the access layer.
type Config struct {
	Version uint16       `json:"version" yaml:"version"`
	Engine  EngineConfig `json:"engine" yaml:"engine"`
	// Provisioning controls the documented fallback that auto-creates a
	// profile for an unrecognized principal. The admin default role mirrors
	// the legacy behavior; production deployments are expected to disable
	// this or pick a harmless role.
	Provisioning ProvisioningConfig `json:"provisioning" yaml:"provisioning"`
}

type EngineConfig struct {
	ContextCacheTTLMs    int64 `json:"context_cache_ttl_ms" yaml:"context_cache_ttl_ms"`
	LeaseLookupTimeoutMs int64 `json:"lease_lookup_timeout_ms" yaml:"lease_lookup_timeout_ms"`
	DisableRoleScoping   bool  `json:"disable_role_scoping" yaml:"disable_role_scoping"`
	RistrettoNumCounter  int64 `json:"ristretto_num_counter" yaml:"ristretto_num_counter"`
	RistrettoMaxCost     int64 `json:"ristretto_max_cost" yaml:"ristretto_max_cost"`
	RistrettoBuffer      int64 `json:"ristretto_buffer" yaml:"ristretto_buffer"`
}

type ProvisioningConfig struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	DefaultRole Role `json:"default_role" yaml:"default_role"`
}

// DefaultLeaseLookupTimeout bounds the tenant active-lease query during
// context resolution; on expiry the rented set degrades to empty.
const DefaultLeaseLookupTimeout = 10 * time.Second

// ContextTTL returns the configured context cache TTL or the default.
func (c *Config) ContextTTL() time.Duration {
	if c != nil && c.Engine.ContextCacheTTLMs > 0 {
		return time.Duration(c.Engine.ContextCacheTTLMs) * time.Millisecond
	}
	return DefaultContextTTL
}

// LeaseLookupTimeout returns the configured lease lookup bound or the default.
func (c *Config) LeaseLookupTimeout() time.Duration {
	if c != nil && c.Engine.LeaseLookupTimeoutMs > 0 {
		return time.Duration(c.Engine.LeaseLookupTimeoutMs) * time.Millisecond
	}
	return DefaultLeaseLookupTimeout
}

// ProvisionRole returns the role assigned to auto-provisioned profiles.
// Defaults to admin, matching the legacy fallback, when provisioning is
// enabled without an explicit role.
func (c *Config) ProvisionRole() Role {
	if c != nil && c.Provisioning.DefaultRole != "" {
		return c.Provisioning.DefaultRole
	}
	return RoleAdmin
}

// Validate rejects configs that would misbehave at runtime.
func (c *Config) Validate() error {
	if c.Provisioning.DefaultRole != "" && !ValidRole(c.Provisioning.DefaultRole) {
		return fmt.Errorf("unknown provisioning default role: %s", c.Provisioning.DefaultRole)
	}
	if c.Engine.ContextCacheTTLMs < 0 {
		return fmt.Errorf("context_cache_ttl_ms must not be negative")
	}
	if c.Engine.LeaseLookupTimeoutMs < 0 {
		return fmt.Errorf("lease_lookup_timeout_ms must not be negative")
	}
	return nil
}

// ConfigLoader loads configuration from YAML or JSON.
type ConfigLoader struct{}

func NewConfigLoader() *ConfigLoader { return &ConfigLoader{} }

func (l *ConfigLoader) LoadYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *ConfigLoader) LoadJSON(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile dispatches on the file extension.
func (l *ConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return l.LoadYAML(data)
	case ".json":
		return l.LoadJSON(data)
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}
}

// ToYAML exports config to YAML
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// ToJSON exports config to JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
