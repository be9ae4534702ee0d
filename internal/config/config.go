package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	ProviderOpenAI  = "openai"
	ProviderBedrock = "bedrock"
)

const defaultPersona = `You are the Rural Cyber Guard assistant, a friendly cyber security adviser for farms and rural businesses in the UK.
Answer in plain English, avoid jargon, and keep replies short and practical.
Focus on protecting farm systems, accounts, payments and connected equipment.
If a question needs hands-on help, suggest contacting the Rural Cyber Guard team.`

// Config is everything the handlers need. It is built once per cold start and
// passed into each handler constructor.
type Config struct {
	Chat    ChatConfig
	Email   EmailConfig
	Contact ContactConfig
	Log     LogConfig

	BrandName string `env:"BRAND_NAME" envDefault:"Rural Cyber Guard"`
	Port      string `env:"PORT" envDefault:"8080"`

	warnings []string
}

// Warnings lists the options that were ignored while loading.
func (c *Config) Warnings() []string {
	return c.warnings
}

type ChatConfig struct {
	Provider       string        `env:"LLM_PROVIDER" envDefault:"openai"`
	APIKey         string        `env:"LLM_API_KEY"`
	APIKeyParam    string        `env:"LLM_API_KEY_SSM_PARAM"`
	BaseURL        string        `env:"LLM_BASE_URL" envDefault:"https://api.openai.com"`
	Model          string        `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	BedrockModelID string        `env:"BEDROCK_MODEL_ID"`
	MaxTokens      int           `env:"LLM_MAX_TOKENS" envDefault:"500"`
	Timeout        time.Duration `env:"LLM_TIMEOUT" envDefault:"20s"`
	SystemPrompt   string        `env:"CHAT_SYSTEM_PROMPT"`

	HumanPhone string `env:"HUMAN_CONTACT_PHONE" envDefault:"01234 567890"`
	HumanEmail string `env:"HUMAN_CONTACT_EMAIL" envDefault:"hello@ruralcyberguard.co.uk"`
}

// Configured reports whether a real upstream call can be attempted. An
// unknown provider is never configured.
func (c ChatConfig) Configured() bool {
	switch c.Provider {
	case ProviderOpenAI:
		return c.APIKey != ""
	case ProviderBedrock:
		return c.BedrockModelID != ""
	}
	return false
}

// Persona returns the system prompt sent with every completion.
func (c ChatConfig) Persona() string {
	if c.SystemPrompt != "" {
		return c.SystemPrompt
	}
	return defaultPersona
}

type EmailConfig struct {
	ServerToken      string        `env:"EMAIL_SERVER_TOKEN"`
	ServerTokenParam string        `env:"EMAIL_SERVER_TOKEN_SSM_PARAM"`
	ToEmail          string        `env:"CONTACT_TO_EMAIL"`
	FromEmail        string        `env:"CONTACT_FROM_EMAIL"`
	BaseURL          string        `env:"EMAIL_API_BASE_URL" envDefault:"https://api.postmarkapp.com"`
	MessageStream    string        `env:"EMAIL_MESSAGE_STREAM" envDefault:"outbound"`
	Timeout          time.Duration `env:"EMAIL_TIMEOUT" envDefault:"10s"`
}

// Configured is true only when token, destination and verified sender are all set.
func (c EmailConfig) Configured() bool {
	return c.ServerToken != "" && c.ToEmail != "" && c.FromEmail != ""
}

type ContactConfig struct {
	EnquiriesTable string `env:"CONTACT_ENQUIRIES_TABLE"`
	AlertTopicArn  string `env:"CONTACT_ALERT_TOPIC_ARN"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	File   string `env:"LOG_FILE"`
}

// Load parses the process environment.
func Load() (*Config, error) {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return parse(vars)
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	cp := make(map[string]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	return parse(cp)
}

// tunables have a safe default. A value that fails its check is dropped so
// the default applies and both functions still start.
var tunables = map[string]func(string) error{
	"LLM_MAX_TOKENS": positiveInt,
	"LLM_TIMEOUT":    positiveDuration,
	"EMAIL_TIMEOUT":  positiveDuration,
	"LOG_LEVEL":      logLevel,
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func positiveDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func logLevel(s string) error {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("unknown level")
}

func parse(vars map[string]string) (*Config, error) {
	var warnings []string
	for key, check := range tunables {
		v, ok := vars[key]
		if !ok {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			delete(vars, key)
			continue
		}
		if err := check(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s=%q ignored, using default: %v", key, v, err))
			delete(vars, key)
			continue
		}
		vars[key] = v
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	switch cfg.Chat.Provider {
	case ProviderOpenAI, ProviderBedrock:
	default:
		warnings = append(warnings, fmt.Sprintf("LLM_PROVIDER=%q is not supported, chat runs unconfigured", cfg.Chat.Provider))
	}
	sort.Strings(warnings)
	cfg.warnings = warnings
	return cfg, nil
}

// normalize trims every string option so that whitespace-only values count as absent.
func (c *Config) normalize() {
	trim := func(ps ...*string) {
		for _, p := range ps {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(&c.BrandName, &c.Port)
	trim(&c.Chat.Provider, &c.Chat.APIKey, &c.Chat.APIKeyParam, &c.Chat.BaseURL, &c.Chat.Model,
		&c.Chat.BedrockModelID, &c.Chat.SystemPrompt, &c.Chat.HumanPhone, &c.Chat.HumanEmail)
	trim(&c.Email.ServerToken, &c.Email.ServerTokenParam, &c.Email.ToEmail, &c.Email.FromEmail,
		&c.Email.BaseURL, &c.Email.MessageStream)
	trim(&c.Contact.EnquiriesTable, &c.Contact.AlertTopicArn)
	trim(&c.Log.Level, &c.Log.Format, &c.Log.File)

	c.Chat.Provider = strings.ToLower(c.Chat.Provider)
	c.Chat.BaseURL = strings.TrimRight(c.Chat.BaseURL, "/")
	c.Email.BaseURL = strings.TrimRight(c.Email.BaseURL, "/")
}
