package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Email     EmailConfig     `mapstructure:"email"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Uploads   UploadsConfig   `mapstructure:"uploads"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
	Admin     AdminConfig     `mapstructure:"admin"`

	SessionSecret string   `mapstructure:"session_secret"`
	FrontendURL   string   `mapstructure:"frontend_url"`
	DefaultSlots  []string `mapstructure:"default_slots"`
}

type ServerConfig struct {
	Port             int           `mapstructure:"port"`
	Mode             string        `mapstructure:"mode"`
	TimeoutSeconds   int           `mapstructure:"timeout_seconds"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	WorkerHealthPort int           `mapstructure:"worker_health_port"`
}

type DatabaseConfig struct {
	// Driver is one of mongo, postgres, memory.
	Driver      string `mapstructure:"driver"`
	MongoURI    string `mapstructure:"mongo_uri"`
	MongoDB     string `mapstructure:"mongo_database"`
	PostgresURL string `mapstructure:"postgres_url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type EmailConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	From         string `mapstructure:"from"`
	SupportEmail string `mapstructure:"support_email"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type UploadsConfig struct {
	Dir         string `mapstructure:"dir"`
	MaxFileSize int64  `mapstructure:"max_file_size"`
}

// JobsConfig drives the scheduled cleanup jobs.
type JobsConfig struct {
	Enabled                bool          `mapstructure:"enabled"`
	AppointmentCleanupSpec string        `mapstructure:"appointment_cleanup_spec"`
	ReminderCleanupSpec    string        `mapstructure:"reminder_cleanup_spec"`
	ReminderTTL            time.Duration `mapstructure:"reminder_ttl"`
	RetryDelay             time.Duration `mapstructure:"retry_delay"`
	DeleteTimeout          time.Duration `mapstructure:"delete_timeout"`
	// Retention maps an appointment status to the minimum age before deletion.
	// Zero deletes regardless of age; a status absent from the map is never deleted.
	Retention map[string]time.Duration `mapstructure:"retention"`
}

type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// envOverrides are the plain environment variables the deployment uses.
type envOverrides struct {
	MongoURI       string `envconfig:"MONGODB_URI"`
	JWTSecret      string `envconfig:"JWT_SECRET"`
	EmailUser      string `envconfig:"EMAIL_USER"`
	EmailPass      string `envconfig:"EMAIL_PASS"`
	SessionSecret  string `envconfig:"SESSION_SECRET"`
	ExpressSecret  string `envconfig:"EXPRESS_SESSION_SECRET"`
	FrontendURL    string `envconfig:"FRONTEND_URL"`
	Port           int    `envconfig:"PORT"`
	DatabaseDriver string `envconfig:"DATABASE_DRIVER"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	RedisURL       string `envconfig:"REDIS_URL"`
	AdminEmail     string `envconfig:"ADMIN_EMAIL"`
	AdminPassword  string `envconfig:"ADMIN_PASSWORD"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

// defaultRetention applies only when the config file has no jobs.retention
// key. It is not a viper default because viper merges nested default keys
// into whatever map the file provides.
func defaultRetention() map[string]time.Duration {
	return map[string]time.Duration{
		"completed": 0,
		"pending":   0,
		"confirmed": 0,
		"cancelled": 24 * time.Hour,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.worker_health_port", 8081)

	v.SetDefault("database.driver", "mongo")
	v.SetDefault("database.mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo_database", "medconnect")

	v.SetDefault("jwt.expiry_hours", 365*24)

	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 587)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 50.0)
	v.SetDefault("rate_limit.burst", 100)

	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.max_file_size", 10<<20)

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.appointment_cleanup_spec", "@daily")
	v.SetDefault("jobs.reminder_cleanup_spec", "@every 1m")
	v.SetDefault("jobs.reminder_ttl", 5*time.Minute)
	v.SetDefault("jobs.retry_delay", 5*time.Minute)
	v.SetDefault("jobs.delete_timeout", 30*time.Second)

	v.SetDefault("frontend_url", "http://localhost:5173")
	v.SetDefault("default_slots", []string{"10:00", "12:00", "14:00", "16:00"})
}

// LoadConfig reads .env, then config.yaml (optional), then the environment.
// path may point at a specific config file; empty searches . and ./config.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("MEDCONNECT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if !v.IsSet("jobs.retention") {
		config.Jobs.Retention = defaultRetention()
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	config.applyEnv(env)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv(env envOverrides) {
	if env.MongoURI != "" {
		c.Database.MongoURI = env.MongoURI
	}
	if env.DatabaseDriver != "" {
		c.Database.Driver = env.DatabaseDriver
	}
	if env.DatabaseURL != "" {
		c.Database.PostgresURL = env.DatabaseURL
	}
	if env.JWTSecret != "" {
		c.JWT.Secret = env.JWTSecret
	}
	if env.EmailUser != "" {
		c.Email.User = env.EmailUser
	}
	if env.EmailPass != "" {
		c.Email.Password = env.EmailPass
	}
	if env.ExpressSecret != "" {
		c.SessionSecret = env.ExpressSecret
	}
	if env.SessionSecret != "" {
		c.SessionSecret = env.SessionSecret
	}
	if env.FrontendURL != "" {
		c.FrontendURL = env.FrontendURL
	}
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.RedisURL != "" {
		c.Redis.URL = env.RedisURL
	}
	if env.AdminEmail != "" {
		c.Admin.Email = env.AdminEmail
	}
	if env.AdminPassword != "" {
		c.Admin.Password = env.AdminPassword
	}
	if env.LogLevel != "" {
		c.Log.Level = env.LogLevel
	}
	if c.Email.From == "" {
		c.Email.From = c.Email.User
	}
	if c.Email.SupportEmail == "" {
		c.Email.SupportEmail = c.Email.User
	}
	if c.SessionSecret == "" {
		c.SessionSecret = c.JWT.Secret
	}
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required (JWT_SECRET)")
	}
	switch c.Database.Driver {
	case "mongo":
		if c.Database.MongoURI == "" {
			return errors.New("mongo uri is required (MONGODB_URI)")
		}
	case "postgres":
		if c.Database.PostgresURL == "" {
			return errors.New("postgres url is required (DATABASE_URL)")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if len(c.DefaultSlots) == 0 {
		return errors.New("default_slots must not be empty")
	}
	return nil
}

// TokenExpiry returns the JWT lifetime.
func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.JWT.ExpiryHours) * time.Hour
}

// RequestTimeout returns the per-request deadline.
func (c *Config) RequestTimeout() time.Duration {
	if c.Server.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Server.TimeoutSeconds) * time.Second
}

// AllowedOrigins splits FrontendURL, which may list several origins
// separated by commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
