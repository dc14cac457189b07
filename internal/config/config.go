package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL  = "https://api.hari.quality-match.com/v1"
	DefaultAuthURL  = "https://auth.hari.quality-match.com/realms/hari/protocol/openid-connect/token"
	DefaultClientID = "hari-client"
	DefaultTimeout  = 60 * time.Second

	envBaseURL  = "HARI_API_BASE_URL"
	envAuthURL  = "HARI_AUTH_URL"
	envClientID = "HARI_CLIENT_ID"
	envUsername = "HARI_USERNAME"
	envPassword = "HARI_PASSWORD"
	envTimeout  = "HARI_TIMEOUT_SECONDS"

	credentialsFileName = "credentials.yaml"
)

// Config holds the endpoint and credential settings for the HARI client.
type Config struct {
	BaseURL  string
	AuthURL  string
	ClientID string
	Username string
	Password string
	Timeout  time.Duration
}

// EnvLookup resolves one environment variable.
type EnvLookup func(key string) (string, bool)

// DefaultEnvLookup reads from the process environment.
func DefaultEnvLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

type loadOptions struct {
	envLookup EnvLookup
	readFile  func(string) ([]byte, error)
	homeDir   func() (string, error)
}

// Option customizes Load, mainly for tests.
type Option func(*loadOptions)

// WithEnvLookup overrides environment resolution.
func WithEnvLookup(lookup EnvLookup) Option {
	return func(o *loadOptions) { o.envLookup = lookup }
}

// WithReadFile overrides credentials-file reading.
func WithReadFile(readFile func(string) ([]byte, error)) Option {
	return func(o *loadOptions) { o.readFile = readFile }
}

// WithHomeDir overrides home directory resolution.
func WithHomeDir(homeDir func() (string, error)) Option {
	return func(o *loadOptions) { o.homeDir = homeDir }
}

// credentialsFile mirrors ~/.hari/credentials.yaml.
type credentialsFile struct {
	BaseURL  string `yaml:"api_base_url"`
	AuthURL  string `yaml:"auth_url"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Load resolves configuration from the environment and the optional
// credentials file, with environment values taking precedence.
func Load(opts ...Option) (Config, error) {
	options := loadOptions{
		envLookup: DefaultEnvLookup,
		readFile:  os.ReadFile,
		homeDir:   os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(&options)
	}

	cfg := Config{
		BaseURL:  DefaultBaseURL,
		AuthURL:  DefaultAuthURL,
		ClientID: DefaultClientID,
		Timeout:  DefaultTimeout,
	}

	if fileCfg, ok := loadCredentialsFile(options); ok {
		applyNonEmpty(&cfg.BaseURL, fileCfg.BaseURL)
		applyNonEmpty(&cfg.AuthURL, fileCfg.AuthURL)
		applyNonEmpty(&cfg.ClientID, fileCfg.ClientID)
		applyNonEmpty(&cfg.Username, fileCfg.Username)
		applyNonEmpty(&cfg.Password, fileCfg.Password)
	}

	applyEnv(&cfg.BaseURL, options.envLookup, envBaseURL)
	applyEnv(&cfg.AuthURL, options.envLookup, envAuthURL)
	applyEnv(&cfg.ClientID, options.envLookup, envClientID)
	applyEnv(&cfg.Username, options.envLookup, envUsername)
	applyEnv(&cfg.Password, options.envLookup, envPassword)

	if raw, ok := options.envLookup(envTimeout); ok {
		seconds, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || seconds <= 0 {
			return Config{}, fmt.Errorf("invalid %s=%q", envTimeout, raw)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// Validate reports whether the configuration is usable for authenticated calls.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("api base url is required")
	}
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("username is required (set %s)", envUsername)
	}
	if strings.TrimSpace(c.Password) == "" {
		return fmt.Errorf("password is required (set %s)", envPassword)
	}
	return nil
}

func loadCredentialsFile(options loadOptions) (credentialsFile, bool) {
	home, err := options.homeDir()
	if err != nil || home == "" {
		return credentialsFile{}, false
	}
	data, err := options.readFile(filepath.Join(home, ".hari", credentialsFileName))
	if err != nil {
		return credentialsFile{}, false
	}
	var fileCfg credentialsFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return credentialsFile{}, false
	}
	return fileCfg, true
}

func applyNonEmpty(dst *string, value string) {
	if strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}

func applyEnv(dst *string, lookup EnvLookup, key string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*dst = strings.TrimSpace(value)
	}
}
