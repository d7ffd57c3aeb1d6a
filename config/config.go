// Package config loads the server settings from defaults, an optional config
// file, an optional .env file and CARTEIRA_ prefixed environment variables,
// in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lvillar/carteira"
	"github.com/lvillar/carteira/member"
	"github.com/lvillar/carteira/photo"
	"github.com/lvillar/carteira/qrimage"
)

// EnvPrefix prefixes every environment variable, e.g. CARTEIRA_SERVER_ADDR.
const EnvPrefix = "CARTEIRA"

// Photo cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerConfig      `mapstructure:"server"`
	Log    LogConfig         `mapstructure:"log"`
	Photo  PhotoConfig       `mapstructure:"photo"`
	Redis  photo.RedisConfig `mapstructure:"redis"`
	Export ExportConfig      `mapstructure:"export"`
	QR     QRConfig          `mapstructure:"qr"`
	Church member.Settings   `mapstructure:"church"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	PublicURL       string        `mapstructure:"public_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PhotoConfig struct {
	Cache        string        `mapstructure:"cache"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxBytes     int64         `mapstructure:"max_bytes"`
	MaxPixels    int64         `mapstructure:"max_pixels"`
	// Proxy is tried when a direct fetch fails. It must be another host:
	// this server's own /api/photo-proxy would repeat the same fetch.
	Proxy string `mapstructure:"proxy"`
	// AllowedHosts restricts photo fetches to these hosts and their
	// subdomains; empty admits any public host.
	AllowedHosts []string `mapstructure:"allowed_hosts"`
	// AllowPrivate lets fetches reach loopback and private addresses.
	AllowPrivate bool `mapstructure:"allow_private"`
}

type ExportConfig struct {
	Mode            string        `mapstructure:"mode"`
	Toolbar         bool          `mapstructure:"toolbar"`
	IPLookupURL     string        `mapstructure:"ip_lookup_url"`
	IPLookupTimeout time.Duration `mapstructure:"ip_lookup_timeout"`
	ResourceTimeout time.Duration `mapstructure:"resource_timeout"`
	FontStylesheet  string        `mapstructure:"font_stylesheet"`
}

type QRConfig struct {
	Size  int    `mapstructure:"size"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 2*time.Minute)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 32<<20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("photo.cache", CacheMemory)
	v.SetDefault("photo.cache_ttl", photo.DefaultCacheTTL)
	v.SetDefault("photo.fetch_timeout", photo.DefaultFetchTimeout)
	v.SetDefault("photo.max_bytes", photo.DefaultMaxBytes)
	v.SetDefault("photo.max_pixels", photo.DefaultMaxPixels)
	v.SetDefault("photo.proxy", "")
	v.SetDefault("photo.allowed_hosts", []string{})
	v.SetDefault("photo.allow_private", false)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.namespace", "carteira")

	v.SetDefault("export.mode", string(carteira.ModePrint))
	v.SetDefault("export.toolbar", false)
	v.SetDefault("export.ip_lookup_url", carteira.DefaultIPLookupURL)
	v.SetDefault("export.ip_lookup_timeout", carteira.DefaultIPLookupTimeout)
	v.SetDefault("export.resource_timeout", time.Duration(0))
	v.SetDefault("export.font_stylesheet", carteira.NewExportConfig().FontStylesheet)

	v.SetDefault("qr.size", qrimage.DefaultSize)
	v.SetDefault("qr.level", string(qrimage.LevelM))

	// Registered so AutomaticEnv can override them during Unmarshal.
	for _, key := range []string{"nome_igreja", "sigla", "logo_url", "endereco_linha1",
		"endereco_linha2", "cep", "nome_assinante", "cargo_assinante"} {
		v.SetDefault("church."+key, "")
	}
}

// Load reads the configuration. configFile may be empty; dotEnv names an
// optional .env file that is ignored when missing.
func Load(configFile, dotEnv string) (*Config, error) {
	if dotEnv != "" {
		if err := godotenv.Load(dotEnv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", dotEnv, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that have no safe fallback.
func (c *Config) Validate() error {
	if !carteira.Mode(c.Export.Mode).Valid() {
		return fmt.Errorf("config: export.mode: %w: %q", carteira.ErrInvalidMode, c.Export.Mode)
	}
	switch c.Photo.Cache {
	case CacheNone, CacheMemory, CacheRedis:
	default:
		return fmt.Errorf("config: photo.cache: unknown backend %q", c.Photo.Cache)
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if c.QR.Size <= 0 {
		return fmt.Errorf("config: qr.size must be positive, got %d", c.QR.Size)
	}
	return nil
}

// ResolverOptions turns the photo section into resolver options.
func (c *Config) ResolverOptions() []photo.Option {
	return []photo.Option{
		photo.WithFetchTimeout(c.Photo.FetchTimeout),
		photo.WithPrivateNetworks(c.Photo.AllowPrivate),
		photo.WithAllowedHosts(c.Photo.AllowedHosts...),
		photo.WithBaseURL(c.Server.PublicURL),
		photo.WithProxy(c.Photo.Proxy),
		photo.WithMaxBytes(c.Photo.MaxBytes),
		photo.WithMaxPixels(c.Photo.MaxPixels),
	}
}

// ExportOptions turns the export section into document options.
func (c *Config) ExportOptions() []carteira.Option {
	return []carteira.Option{
		carteira.WithMode(carteira.Mode(c.Export.Mode)),
		carteira.WithToolbar(c.Export.Toolbar),
		carteira.WithIPLookup(c.Export.IPLookupURL, c.Export.IPLookupTimeout),
		carteira.WithResourceTimeout(c.Export.ResourceTimeout),
		carteira.WithFontStylesheet(c.Export.FontStylesheet),
	}
}
