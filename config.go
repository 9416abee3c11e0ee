package poflow

import (
	"context"
	"fmt"
	"os"

	"github.com/viant/afs"
	"github.com/viant/scy"
	"gopkg.in/yaml.v3"

	"github.com/poflow/poflow/service/delegate"
	"github.com/poflow/poflow/service/messaging/fs"
	"github.com/poflow/poflow/service/processor"
)

// Config is a serialisable representation of the engine configuration. It can
// be populated from JSON or YAML; the zero-value is useful - all nested
// fields inherit their package defaults.
type Config struct {
	Name      string           `json:"name,omitempty" yaml:"name,omitempty"`
	Version   string           `json:"version,omitempty" yaml:"version,omitempty"`
	Processor processor.Config `json:"processor" yaml:"processor"`
	Delegate  DelegateConfig   `json:"delegate,omitempty" yaml:"delegate,omitempty"`
	Events    EventsConfig     `json:"events,omitempty" yaml:"events,omitempty"`
	Tracing   TracingConfig    `json:"tracing,omitempty" yaml:"tracing,omitempty"`
}

// DelegateConfig configures the optional completion delegate. When Mode is
// empty the engine decides approvals with its built-in rules and never calls
// out.
type DelegateConfig struct {
	// Mode selects the delegate prompt: "narrative" or "extraction".
	Mode            string `json:"mode,omitempty" yaml:"mode,omitempty"`
	delegate.Config `yaml:",inline"`
	// APIKeySecret optionally points at an encrypted scy resource holding
	// the API key, e.g. "file:///opt/secrets/azure.enc|blowfish://default".
	APIKeySecret string `json:"apiKeySecret,omitempty" yaml:"apiKeySecret,omitempty"`
	SecretKey    string `json:"secretKey,omitempty" yaml:"secretKey,omitempty"`
}

// Enabled reports whether a delegate mode was configured.
func (c *DelegateConfig) Enabled() bool {
	return c != nil && c.Mode != ""
}

// EventsConfig selects the event queue vendor.
type EventsConfig struct {
	Vendor string     `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	FS     *fs.Config `json:"fs,omitempty" yaml:"fs,omitempty"`
}

// TracingConfig controls OpenTelemetry initialisation.
type TracingConfig struct {
	Enabled    bool   `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with package defaults. Callers may
// modify the returned struct before passing it to New.
func DefaultConfig() *Config {
	return &Config{
		Name:      "poflow",
		Version:   "1.0",
		Processor: processor.DefaultConfig(),
		Events:    EventsConfig{Vendor: "memory"},
	}
}

// Validate returns an error describing invalid settings or nil. Delegate
// settings are only checked when a delegate mode is configured - a
// misconfigured delegate is a fatal error reported before any task is
// accepted.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Processor.WorkerCount <= 0 {
		return fmt.Errorf("processor.workerCount must be > 0")
	}
	if c.Delegate.Enabled() {
		if !delegate.Mode(c.Delegate.Mode).Valid() {
			return fmt.Errorf("unsupported delegate mode: %s", c.Delegate.Mode)
		}
		if err := c.Delegate.Config.Validate(); err != nil {
			return err
		}
	}
	switch c.Events.Vendor {
	case "", "memory":
	case "fs":
		if c.Events.FS == nil {
			return fmt.Errorf("events.fs configuration is required for the fs vendor")
		}
	default:
		return fmt.Errorf("unsupported events vendor: %s", c.Events.Vendor)
	}
	return nil
}

// LoadConfig reads a YAML configuration from the supplied URL (file path,
// s3://, gs:// etc), applies environment overrides and resolves the API key
// secret when configured.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	data, err := afs.New().DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	config.applyEnv()
	if err = config.resolveSecrets(ctx); err != nil {
		return nil, err
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv overlays the Azure OpenAI connection settings from the
// environment. Environment values win over file values.
func (c *Config) applyEnv() {
	if value := os.Getenv("ENDPOINT"); value != "" {
		c.Delegate.Endpoint = value
	}
	if value := os.Getenv("API_KEY"); value != "" {
		c.Delegate.APIKey = value
	}
	if value := os.Getenv("API_VERSION"); value != "" {
		c.Delegate.APIVersion = value
	}
	if value := os.Getenv("DEPLOYMENT_NAME"); value != "" {
		c.Delegate.Deployment = value
	}
}

// resolveSecrets loads the delegate API key from the configured scy resource
// when no plain key was provided.
func (c *Config) resolveSecrets(ctx context.Context) error {
	if c.Delegate.APIKey != "" || c.Delegate.APIKeySecret == "" {
		return nil
	}
	resource := scy.NewResource(nil, c.Delegate.APIKeySecret, c.Delegate.SecretKey)
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return fmt.Errorf("failed to load delegate api key secret: %w", err)
	}
	c.Delegate.APIKey = secret.String()
	return nil
}
