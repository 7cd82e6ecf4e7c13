package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. JOB_TRACKER_SERVER_ADDR.
const EnvPrefix = "JOB_TRACKER"

// Config represents the application configuration.
type Config struct {
	LLM    LLMConfig    `mapstructure:"llm"`
	Store  StoreConfig  `mapstructure:"store"`
	Server ServerConfig `mapstructure:"server"`
	Events EventsConfig `mapstructure:"events"`
	Tailor TailorConfig `mapstructure:"tailor"`
}

// LLMConfig selects the model provider and fixes the model parameters.
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"`
	Model           string        `mapstructure:"model"`
	Temperature     float64       `mapstructure:"temperature"`
	Timeout         time.Duration `mapstructure:"timeout"`
	APIKey          string        `mapstructure:"api_key"`
	AnthropicAPIKey string        `mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string        `mapstructure:"openai_api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	VertexProject   string        `mapstructure:"vertex_project"`
	VertexLocation  string        `mapstructure:"vertex_location"`
	CredentialsFile string        `mapstructure:"credentials_file"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	MongoURI   string `mapstructure:"mongo_uri"`
	Database   string `mapstructure:"database"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// EventsConfig holds the job event publisher settings. An empty AMQPURL disables publishing.
type EventsConfig struct {
	AMQPURL string `mapstructure:"amqp_url"`
	Queue   string `mapstructure:"queue"`
}

// TailorConfig holds resume tailoring defaults.
type TailorConfig struct {
	TemplateDir   string `mapstructure:"template_dir"`
	KnowledgeBank string `mapstructure:"knowledge_bank"`
	OutputDir     string `mapstructure:"output_dir"`
	Compiler      string `mapstructure:"compiler"`
	MainFile      string `mapstructure:"main_file"`
}

//nolint:gochecknoglobals // per-provider model defaults
var defaultModels = map[string]string{
	"gemini":    "gemini-1.5-flash",
	"vertex":    "gemini-1.5-flash",
	"anthropic": "claude-sonnet-4-20250514",
	"openai":    "gpt-4o-mini",
}

// DefaultModel returns the model used for provider when llm.model is unset.
func DefaultModel(provider string) (model string) {
	model = defaultModels[provider]
	return model
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.4)
	v.SetDefault("llm.timeout", 2*time.Minute)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.vertex_project", "")
	v.SetDefault("llm.vertex_location", "us-central1")
	v.SetDefault("llm.credentials_file", "")

	v.SetDefault("store.driver", "mongo")
	v.SetDefault("store.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("store.database", "job_tracker")
	v.SetDefault("store.sqlite_path", "job_tracker.db")

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.allowed_origin", "*")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.queue", "job_events")

	v.SetDefault("tailor.template_dir", ".")
	v.SetDefault("tailor.knowledge_bank", "knowledge_bank.json")
	v.SetDefault("tailor.output_dir", "generated_resumes")
	v.SetDefault("tailor.compiler", "latexmk")
	v.SetDefault("tailor.main_file", "resume.tex")
}

// bindWellKnownEnv maps the conventional variable names onto config keys.
func bindWellKnownEnv(v *viper.Viper) (err error) {
	bindings := map[string][]string{
		"llm.api_key":           {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
		"llm.anthropic_api_key": {"ANTHROPIC_API_KEY"},
		"llm.openai_api_key":    {"OPENAI_API_KEY"},
		"llm.vertex_project":    {"GOOGLE_CLOUD_PROJECT"},
		"llm.credentials_file":  {"GOOGLE_APPLICATION_CREDENTIALS"},
		"store.mongo_uri":       {"MONGO_URI"},
		"events.amqp_url":       {"RABBITMQ_URL"},
	}

	for key, names := range bindings {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		args := append([]string{key, prefixed}, names...)
		err = v.BindEnv(args...)
		if err != nil {
			err = errors.Wrapf(err, "failed to bind env for %s", key)
			return err
		}
	}
	return err
}

// DefaultPath returns $HOME/.job-tracker/config.yaml.
func DefaultPath() (path string, err error) {
	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}
	path = filepath.Join(homeDir, ".job-tracker", "config.yaml")
	return path, err
}

// Load reads configuration from defaults, an optional YAML file, a .env file and the environment, in increasing priority.
// An explicit configPath must exist. Without one, the default path is used when present.
func Load(configPath string) (cfg Config, err error) {
	// Missing .env is fine; existing variables are never overwritten.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err = bindWellKnownEnv(v)
	if err != nil {
		return cfg, err
	}

	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
		_, statErr := os.Stat(path)
		if statErr != nil {
			path = ""
		}
	} else {
		_, statErr := os.Stat(path)
		if os.IsNotExist(statErr) {
			err = errors.Errorf("config file not found: %s (run 'job-tracker init' to create)", path)
			return cfg, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		err = v.ReadInConfig()
		if err != nil {
			err = errors.Wrapf(err, "failed to parse config file: %s", path)
			return cfg, err
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to decode config")
		return cfg, err
	}

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModel(cfg.LLM.Provider)
	}

	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks that the configuration is usable. Credentials are checked separately.
func (c *Config) Validate() (err error) {
	switch c.LLM.Provider {
	case "gemini", "anthropic", "openai", "vertex":
	default:
		err = errors.Errorf("llm.provider must be one of gemini, anthropic, openai, vertex (got %q)", c.LLM.Provider)
		return err
	}

	if c.LLM.Model == "" {
		err = errors.New("llm.model is required")
		return err
	}

	if c.LLM.Temperature <= 0 || c.LLM.Temperature > 2 {
		err = errors.Errorf("llm.temperature must be in (0, 2] (got %v)", c.LLM.Temperature)
		return err
	}

	switch c.Store.Driver {
	case "mongo":
		if c.Store.MongoURI == "" || c.Store.Database == "" {
			err = errors.New("store.mongo_uri and store.database are required for the mongo driver")
			return err
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			err = errors.New("store.sqlite_path is required for the sqlite driver")
			return err
		}
	default:
		err = errors.Errorf("store.driver must be mongo or sqlite (got %q)", c.Store.Driver)
		return err
	}

	if c.Server.Addr == "" {
		err = errors.New("server.addr is required")
		return err
	}

	return err
}

// RequireCredentials checks that the selected provider has what it needs to authenticate.
func (c *Config) RequireCredentials() (err error) {
	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.APIKey == "" {
			err = errors.New("llm.api_key is required for gemini (set in config or GOOGLE_API_KEY env var)")
		}
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			err = errors.New("llm.anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")
		}
	case "openai":
		if c.LLM.OpenAIAPIKey == "" && c.LLM.BaseURL == "" {
			err = errors.New("llm.openai_api_key is required (set in config or OPENAI_API_KEY env var)")
		}
	case "vertex":
		if c.LLM.VertexProject == "" {
			err = errors.New("llm.vertex_project is required (set in config or GOOGLE_CLOUD_PROJECT env var)")
		}
	}
	return err
}

const defaultConfigYAML = `# job-tracker configuration
llm:
  provider: gemini          # gemini | anthropic | openai | vertex
  model: ""                 # empty picks the provider default
  temperature: 0.4
  timeout: 2m
  api_key: ""               # or GOOGLE_API_KEY
  anthropic_api_key: ""     # or ANTHROPIC_API_KEY
  openai_api_key: ""        # or OPENAI_API_KEY
  base_url: ""
  vertex_project: ""
  vertex_location: us-central1
  credentials_file: ""

store:
  driver: mongo             # mongo | sqlite
  mongo_uri: mongodb://localhost:27017
  database: job_tracker
  sqlite_path: job_tracker.db

server:
  addr: ":8000"
  allowed_origin: "*"
  shutdown_timeout: 10s

events:
  amqp_url: ""              # or RABBITMQ_URL; empty disables job events
  queue: job_events

tailor:
  template_dir: .
  knowledge_bank: knowledge_bank.json
  output_dir: generated_resumes
  compiler: latexmk
  main_file: resume.tex
`

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (path string, err error) {
	path = configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return path, err
		}
	}

	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return path, err
	}

	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return path, err
	}

	err = os.WriteFile(path, []byte(defaultConfigYAML), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return path, err
	}

	return path, err
}
