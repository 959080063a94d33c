package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultBaseURL = "https://api.amber.com.au/v1"
	DefaultTimeout = 30 * time.Second
	DefaultDBPath  = "amber.db"
)

// States that publish renewables data.
var knownStates = mapset.NewSet("nsw", "qld", "sa", "vic")

var (
	ErrMissingToken = errors.New("no API token configured; set [apitoken] psk or AMBER_API_TOKEN")
	ErrUnknownState = errors.New("unknown state")
)

type Config struct {
	BaseURL    string
	AuthToken  string
	TokenName  string
	State      string
	Timeout    time.Duration
	DBPath     string
	AuthTokens []string
	File       string
}

// Load reads cfgFile, or .amberctl.toml from $HOME or the working
// directory when cfgFile is empty. A missing default file is not an error;
// everything can come from the environment.
func Load(cfgFile string) (*Config, error) {
	godotenv.Load()

	v := viper.New()
	v.SetDefault("amberconfig.base_url", DefaultBaseURL)
	v.SetDefault("amberconfig.timeout", DefaultTimeout.String())
	v.SetDefault("database.path", DefaultDBPath)

	v.BindEnv("amberconfig.base_url", "AMBER_BASE_URL")
	v.BindEnv("amberconfig.timeout", "AMBER_TIMEOUT")
	v.BindEnv("apitoken.psk", "AMBER_API_TOKEN")
	v.BindEnv("userconfig.state", "AMBER_STATE")
	v.BindEnv("database.path", "AMBER_DATABASE_PATH")
	v.BindEnv("serve.auth_tokens", "AMBER_AUTH_TOKENS")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("toml")
		v.SetConfigName(".amberctl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("amberconfig.timeout"))
	if err != nil {
		return nil, fmt.Errorf("parsing amberconfig.timeout: %w", err)
	}

	cfg := &Config{
		BaseURL:    strings.TrimRight(v.GetString("amberconfig.base_url"), "/"),
		AuthToken:  v.GetString("apitoken.psk"),
		TokenName:  v.GetString("apitoken.name"),
		State:      strings.ToLower(strings.TrimSpace(v.GetString("userconfig.state"))),
		Timeout:    timeout,
		DBPath:     v.GetString("database.path"),
		AuthTokens: splitTokens(v.GetStringSlice("serve.auth_tokens")),
		File:       v.ConfigFileUsed(),
	}
	return cfg, nil
}

// Validate checks what every API command needs.
func (c *Config) Validate() error {
	if c.AuthToken == "" {
		return ErrMissingToken
	}
	if c.BaseURL == "" {
		return errors.New("amberconfig.base_url is empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("amberconfig.timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// RequireState is checked only by commands that query renewables.
func (c *Config) RequireState() error {
	if c.State == "" {
		return fmt.Errorf("%w: set [userconfig] state or AMBER_STATE", ErrUnknownState)
	}
	if !knownStates.Contains(c.State) {
		return fmt.Errorf("%w %q (valid: nsw, qld, sa, vic)", ErrUnknownState, c.State)
	}
	return nil
}

// splitTokens accepts both a TOML array and a comma separated env value.
func splitTokens(raw []string) []string {
	var tokens []string
	for _, r := range raw {
		for _, t := range strings.Split(r, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tokens = append(tokens, t)
			}
		}
	}
	return tokens
}
