package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SecurityConfig struct {
	JWTSecret         string
	UserTokenTTL      time.Duration
	AdminTokenTTL     time.Duration
	MinPasswordLength int

	// Bootstrap admin credentials. Supplied via configuration so no
	// credential ever lives in source.
	AdminUsername string
	AdminPassword string
}

type ResponderConfig struct {
	ProxyBaseURL string
	Timeout      time.Duration
}

type AccessCodeConfig struct {
	Length int
	TTL    time.Duration
}

type RateLimitConfig struct {
	Enabled bool
	QPS     int
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Security         SecurityConfig
	Responder        ResponderConfig
	AccessCodes      AccessCodeConfig
	RateLimit        RateLimitConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("MAMILAND")
	// Nested keys map to underscored names: security.jwtsecret is
	// MAMILAND_SECURITY_JWTSECRET.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Security.JWTSecret == "" {
		return nil, fmt.Errorf("security.jwtsecret is required")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	// Empty defaults register the secret-bearing keys so environment
	// overrides reach Unmarshal even without a config file.
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.adminpassword", "")
	v.SetDefault("responder.proxybaseurl", "")
	v.SetDefault("allowcorsorigins", "")

	v.SetDefault("postgres.maxopen", 10)
	v.SetDefault("postgres.maxidle", 2)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("security.usertokenttl", "168h")  // 7 days
	v.SetDefault("security.admintokenttl", "168h") // 7 days
	v.SetDefault("security.minpasswordlength", 6)
	v.SetDefault("security.adminusername", "admin")

	v.SetDefault("responder.timeout", "30s")

	v.SetDefault("accesscodes.length", 6)
	v.SetDefault("accesscodes.ttl", "24h")

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.qps", 5)
}
