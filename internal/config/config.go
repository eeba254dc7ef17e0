package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Port           int           `yaml:"port"`
	LogLevel       string        `yaml:"log_level"`
	LogJSON        bool          `yaml:"log_json"`
	SecureCookies  bool          `yaml:"secure_cookies"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	AccessTTL      time.Duration `yaml:"access_ttl"`
	RefreshTTL     time.Duration `yaml:"refresh_ttl"`
	ResetCodeTTL   time.Duration `yaml:"reset_code_ttl"`
	// Client-side request timeout for store calls; on expiry the operation
	// fails exactly like a network error.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxBodyLen     int           `yaml:"max_body_len"`
	MaxTitleLen    int           `yaml:"max_title_len"`
}

type Private struct {
	Pg     Pg     `yaml:"pg"`
	JwtKey string `yaml:"jwt_key"`
	ApiKey string `yaml:"api_key"` // public anon key handed to REST clients
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, then lets
// environment variables override the private credentials so deployments can
// keep secrets out of files entirely.
func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	cfg := &Config{public, private}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TFTBOARD_JWT_KEY"); v != "" {
		c.Private.JwtKey = v
	}
	if v := os.Getenv("TFTBOARD_API_KEY"); v != "" {
		c.Private.ApiKey = v
	}
	if v := os.Getenv("TFTBOARD_PG_HOST"); v != "" {
		c.Private.Pg.Host = v
	}
	if v := os.Getenv("TFTBOARD_PG_PASSWORD"); v != "" {
		c.Private.Pg.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Public.Port == 0 {
		c.Public.Port = 8080
	}
	if c.Public.LogLevel == "" {
		c.Public.LogLevel = "info"
	}
	if c.Public.AccessTTL == 0 {
		c.Public.AccessTTL = 15 * time.Minute
	}
	if c.Public.RefreshTTL == 0 {
		c.Public.RefreshTTL = 30 * 24 * time.Hour
	}
	if c.Public.ResetCodeTTL == 0 {
		c.Public.ResetCodeTTL = 15 * time.Minute
	}
	if c.Public.RequestTimeout == 0 {
		c.Public.RequestTimeout = 12 * time.Second
	}
	if c.Public.MaxBodyLen == 0 {
		c.Public.MaxBodyLen = 10000
	}
	if c.Public.MaxTitleLen == 0 {
		c.Public.MaxTitleLen = 200
	}
}

// ClientCredentials locates the base URL and public API key a REST client
// needs. Either may be absent; callers degrade to the null-object client
// instead of failing.
type ClientCredentials struct {
	BaseURL string
	ApiKey  string
}

// ClientCredentialsFromEnv reads TFTBOARD_API_URL and TFTBOARD_API_KEY.
func ClientCredentialsFromEnv() ClientCredentials {
	return ClientCredentials{
		BaseURL: os.Getenv("TFTBOARD_API_URL"),
		ApiKey:  os.Getenv("TFTBOARD_API_KEY"),
	}
}

// Configured reports whether both values are present.
func (c ClientCredentials) Configured() bool {
	return c.BaseURL != "" && c.ApiKey != ""
}
