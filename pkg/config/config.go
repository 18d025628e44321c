package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultGeminiBaseURL is the generative-language endpoint the client handle is bound to
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/"

	// DefaultGeminiModel is the hosted model the assistant talks to
	DefaultGeminiModel = "gemini-2.0-flash"

	// ProviderOpenAICompat routes calls through the chat-completions client
	ProviderOpenAICompat = "openai_compat"

	// ProviderGemini routes calls through the native genai client
	ProviderGemini = "gemini"
)

// Config represents the configuration of the assistant
type Config struct {
	// LLM configuration
	LLM struct {
		Provider string `mapstructure:"provider"`

		Gemini struct {
			APIKey      string        `mapstructure:"api_key"`
			BaseURL     string        `mapstructure:"base_url"`
			Model       string        `mapstructure:"model"`
			Temperature float64       `mapstructure:"temperature"`
			Timeout     time.Duration `mapstructure:"timeout"`
		} `mapstructure:"gemini"`
	} `mapstructure:"llm"`

	// Tracing configuration
	Tracing struct {
		Disabled          bool   `mapstructure:"disabled"`
		ServiceName       string `mapstructure:"service_name"`
		CollectorEndpoint string `mapstructure:"collector_endpoint"`
	} `mapstructure:"tracing"`

	// Agent configuration
	Agent struct {
		Name         string `mapstructure:"name"`
		Instructions string `mapstructure:"instructions"`
		ConfigPath   string `mapstructure:"config_path"`
	} `mapstructure:"agent"`

	// Server configuration
	Server struct {
		Port          int    `mapstructure:"port"`
		AllowedOrigin string `mapstructure:"allowed_origin"`
	} `mapstructure:"server"`
}

// envBindings maps config keys to the environment variables that override them
var envBindings = map[string]string{
	"llm.provider":               "LLM_PROVIDER",
	"llm.gemini.api_key":         "GEMINI_API_KEY",
	"llm.gemini.base_url":        "GEMINI_BASE_URL",
	"llm.gemini.model":           "GEMINI_MODEL",
	"llm.gemini.temperature":     "GEMINI_TEMPERATURE",
	"llm.gemini.timeout":         "GEMINI_TIMEOUT",
	"tracing.disabled":           "TRACING_DISABLED",
	"tracing.service_name":       "OTEL_SERVICE_NAME",
	"tracing.collector_endpoint": "OTEL_COLLECTOR_ENDPOINT",
	"agent.name":                 "AGENT_NAME",
	"agent.instructions":         "AGENT_INSTRUCTIONS",
	"agent.config_path":          "AGENT_CONFIG_PATH",
	"server.port":                "SERVER_PORT",
	"server.allowed_origin":      "SERVER_ALLOWED_ORIGIN",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderOpenAICompat)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.base_url", DefaultGeminiBaseURL)
	v.SetDefault("llm.gemini.model", DefaultGeminiModel)
	v.SetDefault("llm.gemini.temperature", 0.7)
	v.SetDefault("llm.gemini.timeout", 60*time.Second)

	v.SetDefault("tracing.disabled", true)
	v.SetDefault("tracing.service_name", "physai-agent")
	v.SetDefault("tracing.collector_endpoint", "localhost:4317")

	v.SetDefault("agent.name", "Physical AI Assistant")
	v.SetDefault("agent.instructions", "You help readers of the Physical AI textbook with robotics, ROS 2, digital twins, and AI integration.")
	v.SetDefault("agent.config_path", "")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origin", "http://localhost:3000")
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return v, nil
}

// LoadFromEnv loads configuration from defaults and environment variables
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// Load loads configuration from an optional file, then environment variables.
// Environment variables take priority over the file, which takes priority over defaults.
func Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))

	return cfg, nil
}

// Validate checks the configuration for values no component can work with.
// An empty API key is accepted; the remote API reports it on first use.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderOpenAICompat, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("unsupported LLM provider: %q (supported: %s, %s)", c.LLM.Provider, ProviderOpenAICompat, ProviderGemini))
	}
	if strings.TrimSpace(c.LLM.Gemini.BaseURL) == "" {
		errs = append(errs, errors.New("llm.gemini.base_url is required"))
	}
	if strings.TrimSpace(c.LLM.Gemini.Model) == "" {
		errs = append(errs, errors.New("llm.gemini.model is required"))
	}
	if c.LLM.Gemini.Timeout < 0 {
		errs = append(errs, errors.New("llm.gemini.timeout must not be negative"))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	return errors.Join(errs...)
}
