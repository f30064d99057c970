package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultLLMModel       = "mistralai/mistral-7b-instruct"
	DefaultLLMBaseURL     = "https://openrouter.ai/api/v1"
	HuggingFaceRouterURL  = "https://router.huggingface.co/v1"
	DefaultGeocodeBaseURL = "https://api.opentripmap.com/0.1/en"
	DefaultOpenSkyBaseURL = "https://opensky-network.org/api"

	AirportsEmbedded = "embedded"
	AirportsPostgres = "postgres"
)

// Config is the process-wide configuration. It is loaded once in main and
// handed to constructors; nothing else reads the environment.
type Config struct {
	LLMModel       string  `toml:"llm_model"`
	LLMAPIKey      string  `toml:"llm_api_key"`
	LLMBaseURL     string  `toml:"llm_base_url"`
	LLMTemperature float64 `toml:"llm_temperature"`

	GeocodeAPIKey  string `toml:"geocode_api_key"`
	GeocodeBaseURL string `toml:"geocode_base_url"`
	OpenSkyBaseURL string `toml:"opensky_base_url"`

	AirportsSource string `toml:"airports_source"`
	DatabaseURL    string `toml:"database_url"`

	Port         string   `toml:"port"`
	FrontendURLs []string `toml:"frontend_urls"`
	GinMode      string   `toml:"gin_mode"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLMModel:       DefaultLLMModel,
		LLMBaseURL:     DefaultLLMBaseURL,
		LLMTemperature: 0.7,
		GeocodeBaseURL: DefaultGeocodeBaseURL,
		OpenSkyBaseURL: DefaultOpenSkyBaseURL,
		AirportsSource: AirportsEmbedded,
		Port:           "8080",
	}
}

// Load builds the configuration from defaults, an optional TOML file, a .env
// file and finally the process environment.
func Load() (Config, error) {
	cfg := Default()

	path := os.Getenv("TRIPCREW_CONFIG")
	explicit := path != ""
	if !explicit {
		path = "tripcrew.toml"
	}
	if err := cfg.LoadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}

	// .env is optional; in production the variables are set directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found — using environment variables")
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

// LoadFile merges a TOML file into cfg. Keys missing from the file keep
// their current values.
func (c *Config) LoadFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables looked up via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.LLMModel, "LLM_MODEL")
	set(&c.LLMBaseURL, "LLM_BASE_URL")
	set(&c.LLMAPIKey, "LLM_API_KEY", "OPENROUTER_API_KEY")
	if c.LLMAPIKey == "" && strings.HasPrefix(c.LLMBaseURL, HuggingFaceRouterURL) {
		set(&c.LLMAPIKey, "HF_TOKEN", "HUGGINGFACE_API_KEY")
	}
	if v := getenv("LLM_TEMPERATURE"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil {
			c.LLMTemperature = t
		} else {
			log.Printf("⚠️  Ignoring invalid LLM_TEMPERATURE %q: %v", v, err)
		}
	}

	set(&c.GeocodeAPIKey, "GEOCODE_API_KEY", "OPENTRIPMAP_KEY")
	set(&c.GeocodeBaseURL, "GEOCODE_BASE_URL")
	set(&c.OpenSkyBaseURL, "OPENSKY_BASE_URL")

	set(&c.AirportsSource, "AIRPORTS_SOURCE")
	set(&c.DatabaseURL, "DATABASE_URL")

	set(&c.Port, "PORT")
	set(&c.GinMode, "GIN_MODE")
	if v := getenv("FRONTEND_URL"); v != "" {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.FrontendURLs = append(c.FrontendURLs, u)
			}
		}
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.AirportsSource {
	case AirportsEmbedded:
	case AirportsPostgres:
		if c.DatabaseURL == "" {
			return errors.New("airports_source is postgres but database_url is empty")
		}
	default:
		return fmt.Errorf("unknown airports_source %q", c.AirportsSource)
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return fmt.Errorf("llm_temperature %.2f out of range [0, 2]", c.LLMTemperature)
	}
	return nil
}
