package config

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	GinMode        string        `mapstructure:"GIN_MODE"`
	SiteURL        string        `mapstructure:"SITE_URL"`        // absolute base for the sitemap and RSS feed
	SessionSecret  string        `mapstructure:"SESSION_SECRET"`
	TemplatesDir   string        `mapstructure:"TEMPLATES_DIR"`
	StaticDir      string        `mapstructure:"STATIC_DIR"`
	StoreBackend   string        `mapstructure:"STORE_BACKEND"`   // file, sqlite, postgres, memory
	DataDir        string        `mapstructure:"DATA_DIR"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	NewsBaseURL    string        `mapstructure:"NEWS_BASE_URL"`
	NewsTimeout    time.Duration `mapstructure:"NEWS_TIMEOUT"`
	NewsCacheTTL   time.Duration `mapstructure:"NEWS_CACHE_TTL"`
	RedisURL       string        `mapstructure:"REDIS_URL"`       // empty keeps the news cache in process
	AuthRateLimit  int           `mapstructure:"AUTH_RATE_LIMIT"` // login/register attempts per minute per IP, 0 disables
	TrustedProxies []string      `mapstructure:"TRUSTED_PROXIES"` // comma separated; empty ignores X-Forwarded-For
	LogLevel       zapcore.Level `mapstructure:"LOG_LEVEL"`
}

const DefaultSessionSecret = "dev-secret-key-change-in-production"

var defaults = map[string]any{
	"PORT":            "5000",
	"GIN_MODE":        "debug",
	"SITE_URL":        "http://localhost:5000",
	"SESSION_SECRET":  DefaultSessionSecret,
	"TEMPLATES_DIR":   "./web/templates",
	"STATIC_DIR":      "./web/static",
	"STORE_BACKEND":   "file",
	"DATA_DIR":        "data",
	"DATABASE_URL":    "",
	"NEWS_BASE_URL":   "https://saurav.tech/NewsAPI",
	"NEWS_TIMEOUT":    "10s",
	"NEWS_CACHE_TTL":  "5m",
	"REDIS_URL":       "",
	"AUTH_RATE_LIMIT": 10,
	"TRUSTED_PROXIES": "",
	"LOG_LEVEL":       "info",
}

// Load reads .env (if present), an optional config.yaml in the working
// directory and the process environment, in increasing priority.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return read(v)
}

func read(v *viper.Viper) (*Config, error) {
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	c := &Config{}
	if err := v.Unmarshal(c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		levelHook(),
	))); err != nil {
		return nil, err
	}
	return c, nil
}

var levelType = reflect.TypeOf(zapcore.InfoLevel)

func levelHook() mapstructure.DecodeHookFuncType {
	return func(in reflect.Type, out reflect.Type, val interface{}) (interface{}, error) {
		if in.Kind() == reflect.String && out == levelType {
			l := zapcore.InfoLevel
			if err := l.UnmarshalText([]byte(val.(string))); err != nil {
				return nil, err
			}
			return l, nil
		}
		return val, nil
	}
}
