package container

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yusufsyaifudin/appstore/internal/svc/authsvc"
	"github.com/yusufsyaifudin/appstore/pkg/mailclient"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile = "config.yml"

	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"

	CacheDriverNone   = "none"
	CacheDriverMemory = "memory"
	CacheDriverRedis  = "redis"
)

// ConfigHTTPServer struct for HTTP ConfigTransport configuration
type ConfigHTTPServer struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins"`

	// MaxBodyBytes defaults to room for bodyImages inline images of images.maxBytes plus the text fields.
	MaxBodyBytes int64 `yaml:"maxBodyBytes"`
}

// bodyImages is the icon plus screenshots counted into the default request body limit.
const bodyImages = 10

// ConfigTransport is a configuration for ConfigTransport: HTTP, gRPC or anything
type ConfigTransport struct {
	HTTP ConfigHTTPServer `yaml:"http"`
}

type ConfigGoSqlDb struct {
	Debug bool   `yaml:"debug"`
	DSN   string `yaml:"dsn"` // Data Source Name

	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type ConfigDatabaseResource struct {
	Disable bool   `yaml:"disable"`
	Driver  string `yaml:"driver"` // only postgres for now

	// per driver configuration
	Postgres ConfigGoSqlDb `yaml:"postgres"`
}

// ConfigDatabaseResources redefine config
type ConfigDatabaseResources map[string]ConfigDatabaseResource

type ConfigRedisResource struct {
	Mode       string   `yaml:"mode"` // single, sentinel or cluster
	Address    []string `yaml:"address"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	DB         int      `yaml:"db"`
	MasterName string   `yaml:"masterName"` // sentinel only
}

type ConfigRedisResources map[string]ConfigRedisResource

type ConfigCache struct {
	Driver     string        `yaml:"driver"` // none, memory or redis
	RedisLabel string        `yaml:"redisLabel"`
	MaxBytes   int           `yaml:"maxBytes"` // memory only
	Expiry     time.Duration `yaml:"expiry"`
}

type ConfigServiceAuth struct {
	DBLabel string `yaml:"dbLabel"`
}

type ConfigServiceApp struct {
	DBLabel string      `yaml:"dbLabel"`
	Cache   ConfigCache `yaml:"cache"`
}

type ConfigServiceChangelog struct {
	DBLabel string `yaml:"dbLabel"`
}

type ConfigServiceRating struct {
	DBLabel string `yaml:"dbLabel"`
}

type ConfigServices struct {
	Auth      ConfigServiceAuth      `yaml:"auth"`
	App       ConfigServiceApp       `yaml:"app"`
	Changelog ConfigServiceChangelog `yaml:"changelog"`
	Rating    ConfigServiceRating    `yaml:"rating"`
}

type ConfigAuth struct {
	// JWTSecret falls back to JWT_SECRET environment variable when empty.
	JWTSecret string        `yaml:"jwtSecret"`
	TokenTTL  time.Duration `yaml:"tokenTTL"`

	// EnforceSession nil means true.
	EnforceSession *bool `yaml:"enforceSession"`
	CookieSecure   bool  `yaml:"cookieSecure"`
	BcryptCost     int   `yaml:"bcryptCost"`

	SessionStore      string `yaml:"sessionStore"` // postgres or redis
	SessionRedisLabel string `yaml:"sessionRedisLabel"`
}

type ConfigMail struct {
	Enabled    bool                       `yaml:"enabled"`
	From       string                     `yaml:"from"`
	Credential mailclient.EmailCredential `yaml:"credential"`
}

type ConfigImages struct {
	MaxBytes int `yaml:"maxBytes"`
}

type ConfigDownload struct {
	RatePerMinute int `yaml:"ratePerMinute"`
	Burst         int `yaml:"burst"`

	// TrustedProxyHops zero ignores X-Forwarded-For.
	TrustedProxyHops int `yaml:"trustedProxyHops"`
}

type ConfigTracer struct {
	JaegerEndpoint string `yaml:"jaegerEndpoint"`
}

type ConfigApp struct {
	Name          string `yaml:"name"`
	Version       string `yaml:"version"`
	Environment   string `yaml:"environment"`
	PublicBaseURL string `yaml:"publicBaseURL"`
}

// Config contains application config
type Config struct {
	App               ConfigApp               `yaml:"app"`
	Transport         ConfigTransport         `yaml:"transport"`
	DatabaseResources ConfigDatabaseResources `yaml:"databaseResources"`
	RedisResources    ConfigRedisResources    `yaml:"redisResources"`
	Services          ConfigServices          `yaml:"services"`
	Auth              ConfigAuth              `yaml:"auth"`
	Mail              ConfigMail              `yaml:"mail"`
	Images            ConfigImages            `yaml:"images"`
	Download          ConfigDownload          `yaml:"download"`
	Tracer            ConfigTracer            `yaml:"tracer"`
}

// LoadConfig reads YAML config file and fills the default values.
// Empty fileName means DefaultConfigFile.
func LoadConfig(fileName string) (cfg Config, err error) {
	if strings.TrimSpace(fileName) == "" {
		fileName = DefaultConfigFile
	}

	fileContent, err := os.ReadFile(fileName)
	if err != nil {
		err = fmt.Errorf("error read file config %s: %w", fileName, err)
		return
	}

	cfg, err = ParseConfig(fileContent)
	if err != nil {
		err = fmt.Errorf("error parse file config %s: %w", fileName, err)
		return
	}

	return
}

// ParseConfig decodes YAML content, then applies default values and JWT_SECRET fallback.
func ParseConfig(content []byte) (cfg Config, err error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(false)
	err = dec.Decode(&cfg)
	if err != nil {
		return
	}

	cfg.setDefault(os.Getenv)
	return
}

func (c *Config) setDefault(getenv func(string) string) {
	if c.App.Name == "" {
		c.App.Name = "appstore"
	}

	if c.App.Version == "" {
		c.App.Version = "1.0.0"
	}

	if c.App.Environment == "" {
		c.App.Environment = "development"
	}

	if c.App.PublicBaseURL == "" {
		c.App.PublicBaseURL = "http://localhost:3000"
	}

	if c.Transport.HTTP.Port <= 0 {
		c.Transport.HTTP.Port = 4000
	}

	if c.Images.MaxBytes <= 0 {
		c.Images.MaxBytes = authsvc.DefaultImageMaxBytes
	}

	if c.Transport.HTTP.MaxBodyBytes <= 0 {
		// base64 grows the payload by 4/3
		c.Transport.HTTP.MaxBodyBytes = 1<<20 + int64(c.Images.MaxBytes)*4/3*bodyImages
	}

	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = getenv("JWT_SECRET")
	}

	if c.Auth.EnforceSession == nil {
		enforce := true
		c.Auth.EnforceSession = &enforce
	}

	if c.Auth.SessionStore == "" {
		c.Auth.SessionStore = SessionStorePostgres
	}

	if c.Services.App.Cache.Driver == "" {
		c.Services.App.Cache.Driver = CacheDriverNone
	}

	if c.Services.App.Cache.Expiry <= 0 {
		c.Services.App.Cache.Expiry = time.Minute
	}

	if c.Mail.From == "" {
		c.Mail.From = "no-reply@appstore.local"
	}
}

// Validate checks the values needed before any connection is made.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("auth.jwtSecret is empty and JWT_SECRET is not set")
	}

	switch c.Auth.SessionStore {
	case SessionStorePostgres:
	case SessionStoreRedis:
		if _, ok := c.RedisResources[c.Auth.SessionRedisLabel]; !ok {
			return fmt.Errorf("auth.sessionRedisLabel '%s' is not in redisResources", c.Auth.SessionRedisLabel)
		}
	default:
		return fmt.Errorf("unknown auth.sessionStore '%s'", c.Auth.SessionStore)
	}

	switch c.Services.App.Cache.Driver {
	case CacheDriverNone, CacheDriverMemory:
	case CacheDriverRedis:
		if _, ok := c.RedisResources[c.Services.App.Cache.RedisLabel]; !ok {
			return fmt.Errorf("services.app.cache.redisLabel '%s' is not in redisResources", c.Services.App.Cache.RedisLabel)
		}
	default:
		return fmt.Errorf("unknown services.app.cache.driver '%s'", c.Services.App.Cache.Driver)
	}

	return nil
}
