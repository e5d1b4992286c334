// Package config loads promptdeck settings from defaults, an optional YAML
// file, .env files and the process environment.
//
// Priority, highest first: process environment > local .env > config-dir .env >
// config.yaml > defaults. Values set through Override (command-line flags) beat all of them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"promptdeck/internal/completion"
	"promptdeck/internal/data/embedded"
	"promptdeck/internal/logger"
)

// EnvPrefix prefixes every promptdeck environment variable.
const EnvPrefix = "PROMPTDECK_"

// Setting keys.
const (
	KeyProvider       = "provider"
	KeyModel          = "model"
	KeyAPIKey         = "api_key"
	KeyBaseURL        = "base_url"
	KeyTimeout        = "timeout"
	KeyTemplatesFile  = "templates_file"
	KeyTheme          = "theme"
	KeyRenderMarkdown = "render_markdown"
	KeyListen         = "listen"
)

var settingKeys = []string{
	KeyProvider, KeyModel, KeyAPIKey, KeyBaseURL, KeyTimeout,
	KeyTemplatesFile, KeyTheme, KeyRenderMarkdown, KeyListen,
}

// Options controls where configuration is read from. Zero values select the
// user config dir, the working directory and os.Environ.
type Options struct {
	ConfigDir  string
	WorkDir    string
	ConfigFile string // explicit YAML file, replaces <ConfigDir>/config.yaml
	Environ    func() []string
}

// Paths reports which configuration sources were found.
type Paths struct {
	ConfigDir       string
	ConfigFile      string
	ConfigFileFound bool
	ConfigEnvPath   string
	ConfigEnvLoaded bool
	LocalEnvPath    string
	LocalEnvLoaded  bool
}

// Service holds the merged configuration.
type Service struct {
	opts  Options
	v     *viper.Viper
	env   map[string]string
	paths Paths
}

// New creates an unloaded Service.
func New(opts Options) *Service {
	return &Service{opts: opts, v: viper.New(), env: map[string]string{}}
}

// Load reads every source in priority order.
func (s *Service) Load() error {
	s.setDefaults()

	configDir := s.opts.ConfigDir
	if configDir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			configDir = filepath.Join(dir, "promptdeck")
		}
	}
	s.paths.ConfigDir = configDir

	if err := s.loadConfigFile(configDir); err != nil {
		return err
	}

	if configDir != "" {
		s.paths.ConfigEnvPath = filepath.Join(configDir, ".env")
		loaded, err := s.loadDotEnv(s.paths.ConfigEnvPath)
		if err != nil {
			return err
		}
		s.paths.ConfigEnvLoaded = loaded
	}

	workDir := s.opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		workDir = wd
	}
	s.paths.LocalEnvPath = filepath.Join(workDir, ".env")
	loaded, err := s.loadDotEnv(s.paths.LocalEnvPath)
	if err != nil {
		return err
	}
	s.paths.LocalEnvLoaded = loaded

	environ := s.opts.Environ
	if environ == nil {
		environ = os.Environ
	}
	for _, kv := range environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			s.env[key] = value
		}
	}

	for _, key := range settingKeys {
		if value, ok := s.env[EnvPrefix+strings.ToUpper(key)]; ok && value != "" {
			s.v.Set(key, value)
		}
	}

	logger.Debug("Configuration loaded",
		"config_file", s.paths.ConfigFile, "config_file_found", s.paths.ConfigFileFound,
		"config_env", s.paths.ConfigEnvLoaded, "local_env", s.paths.LocalEnvLoaded,
		"provider", s.Provider())
	return nil
}

func (s *Service) setDefaults() {
	s.v.SetDefault(KeyProvider, completion.ProviderGemini)
	s.v.SetDefault(KeyTheme, "default")
	s.v.SetDefault(KeyRenderMarkdown, true)
	s.v.SetDefault(KeyListen, "127.0.0.1:8080")
	s.v.SetDefault(KeyTimeout, "0s")
}

func (s *Service) loadConfigFile(configDir string) error {
	path := s.opts.ConfigFile
	explicit := path != ""
	if !explicit {
		if configDir == "" {
			return nil
		}
		path = filepath.Join(configDir, "config.yaml")
	}
	s.paths.ConfigFile = path

	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		return nil
	}

	s.v.SetConfigFile(path)
	if err := s.v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	s.paths.ConfigFileFound = true
	return nil
}

// loadDotEnv merges a .env file into the environment map without touching the
// process environment. A missing file is not an error.
func (s *Service) loadDotEnv(path string) (bool, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	for k, v := range values {
		s.env[k] = v
	}
	return true, nil
}

// Override sets a value that beats every other source.
func (s *Service) Override(key string, value any) {
	s.v.Set(key, value)
}

// Validate checks the loaded values.
func (s *Service) Validate() error {
	if !slices.Contains(completion.SupportedProviders(), s.Provider()) {
		return fmt.Errorf("unsupported provider '%s' (supported: %s)", s.Provider(), strings.Join(completion.SupportedProviders(), ", "))
	}
	if !slices.Contains(embedded.ThemeNames, s.Theme()) {
		return fmt.Errorf("unknown theme '%s' (available: %s)", s.Theme(), strings.Join(embedded.ThemeNames, ", "))
	}
	if s.Timeout() < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// Provider returns the lower-cased provider name.
func (s *Service) Provider() string {
	return strings.ToLower(strings.TrimSpace(s.v.GetString(KeyProvider)))
}

// Model returns the configured model or the provider's default.
func (s *Service) Model() string {
	if m := s.v.GetString(KeyModel); m != "" {
		return m
	}
	return completion.DefaultModels[s.Provider()]
}

// APIKeyNames lists, in lookup order, the environment names checked for provider's key.
func APIKeyNames(provider string) []string {
	upper := strings.ToUpper(provider)
	names := []string{EnvPrefix + upper + "_API_KEY", upper + "_API_KEY"}
	if provider == completion.ProviderGemini {
		names = append(names, "GOOGLE_API_KEY")
	}
	return append(names, EnvPrefix+"API_KEY")
}

// APIKey returns the credential for the configured provider.
func (s *Service) APIKey() (string, error) {
	provider := s.Provider()
	names := APIKeyNames(provider)
	for _, name := range names {
		if value := s.env[name]; value != "" {
			return value, nil
		}
	}
	if value := s.v.GetString(KeyAPIKey); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("API key not configured for provider %s (expected one of %s)", provider, strings.Join(names, ", "))
}

// BaseURL returns the optional endpoint override.
func (s *Service) BaseURL() string {
	return s.v.GetString(KeyBaseURL)
}

// Timeout returns the per-request timeout; 0 means none.
func (s *Service) Timeout() time.Duration {
	return s.v.GetDuration(KeyTimeout)
}

// TemplatesFile returns the optional catalog override path.
func (s *Service) TemplatesFile() string {
	return s.v.GetString(KeyTemplatesFile)
}

// Theme returns the terminal theme name.
func (s *Service) Theme() string {
	return strings.ToLower(s.v.GetString(KeyTheme))
}

// RenderMarkdown reports whether assistant replies are rendered as markdown.
func (s *Service) RenderMarkdown() bool {
	return s.v.GetBool(KeyRenderMarkdown)
}

// Listen returns the HTTP listen address.
func (s *Service) Listen() string {
	return s.v.GetString(KeyListen)
}

// Paths returns the discovered configuration sources.
func (s *Service) Paths() Paths {
	return s.paths
}

// CompletionConfig assembles the client configuration for the selected provider.
func (s *Service) CompletionConfig() (completion.Config, error) {
	apiKey, err := s.APIKey()
	if err != nil {
		return completion.Config{}, err
	}
	return completion.Config{
		Provider: s.Provider(),
		APIKey:   apiKey,
		Model:    s.Model(),
		BaseURL:  s.BaseURL(),
		Timeout:  s.Timeout(),
	}, nil
}

// Settings returns every setting as display strings, with the API key masked.
func (s *Service) Settings() map[string]string {
	out := make(map[string]string, len(settingKeys))
	for _, key := range settingKeys {
		out[key] = s.v.GetString(key)
	}
	out[KeyModel] = s.Model()
	out[KeyProvider] = s.Provider()
	if key, err := s.APIKey(); err == nil {
		out[KeyAPIKey] = maskSecret(key)
	} else {
		out[KeyAPIKey] = ""
	}
	return out
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "****" + secret[len(secret)-4:]
}
