package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "COMPLIANCE_"

// DefaultSecretKey is the placeholder signing key; strict mode refuses it.
const DefaultSecretKey = "change-me"

type AuthMode string

const (
	// AuthModeDemo accepts any six-digit code.
	AuthModeDemo AuthMode = "demo"
	// AuthModeStrict checks codes against the stored digest.
	AuthModeStrict AuthMode = "strict"
)

type Config struct {
	Server struct {
		Addr            string        `yaml:"addr"`
		MetricsAddr     string        `yaml:"metrics_addr"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
	} `yaml:"server"`

	Rules struct {
		File string `yaml:"file"` // empty uses the built-in catalog
		S3   struct {
			Bucket string `yaml:"bucket"`
			Key    string `yaml:"key"`
			Region string `yaml:"region"`
		} `yaml:"s3"`
	} `yaml:"rules"`

	Check struct {
		Delay time.Duration `yaml:"delay"`
	} `yaml:"check"`

	Storage struct {
		SQLitePath string `yaml:"sqlite_path"` // empty keeps state in memory
	} `yaml:"storage"`

	Redis struct {
		Addr     string `yaml:"addr"` // empty keeps challenges in memory
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Auth struct {
		Mode        AuthMode      `yaml:"mode"`
		SecretKey   string        `yaml:"secret_key"`
		CodeTTL     time.Duration `yaml:"code_ttl"`
		MaxAttempts int           `yaml:"max_attempts"`
		SendLimit   int           `yaml:"send_limit"`
		SendWindow  time.Duration `yaml:"send_window"`
		SendDelay   time.Duration `yaml:"send_delay"`
		VerifyDelay time.Duration `yaml:"verify_delay"`
		ResendDelay time.Duration `yaml:"resend_delay"`
	} `yaml:"auth"`

	Notifications struct {
		Workers int `yaml:"workers"`
	} `yaml:"notifications"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`
}

// DefaultConfig mirrors the original single-page app: in-memory state, demo
// OTP verification and short simulated delays.
func DefaultConfig() Config {
	var c Config
	c.Server.Addr = ":8080"
	c.Server.MetricsAddr = ":9090"
	c.Server.RequestTimeout = 10 * time.Second
	c.Server.ShutdownTimeout = 30 * time.Second
	c.Rules.S3.Region = "ap-south-1"
	c.Check.Delay = 800 * time.Millisecond
	c.Auth.Mode = AuthModeDemo
	c.Auth.SecretKey = DefaultSecretKey
	c.Auth.CodeTTL = 5 * time.Minute
	c.Auth.MaxAttempts = 5
	c.Auth.SendLimit = 5
	c.Auth.SendWindow = time.Hour
	c.Auth.SendDelay = 1500 * time.Millisecond
	c.Auth.VerifyDelay = 1500 * time.Millisecond
	c.Auth.ResendDelay = time.Second
	c.Notifications.Workers = 3
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	return c
}

// LoadConfig reads path over the defaults and then applies COMPLIANCE_*
// environment overrides. A missing path is an error; an empty path is not.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func applyEnv(c *Config) error {
	strs := map[string]*string{
		"ADDR":            &c.Server.Addr,
		"METRICS_ADDR":    &c.Server.MetricsAddr,
		"RULES_FILE":      &c.Rules.File,
		"RULES_S3_BUCKET": &c.Rules.S3.Bucket,
		"RULES_S3_KEY":    &c.Rules.S3.Key,
		"RULES_S3_REGION": &c.Rules.S3.Region,
		"SQLITE_PATH":     &c.Storage.SQLitePath,
		"REDIS_ADDR":      &c.Redis.Addr,
		"REDIS_PASSWORD":  &c.Redis.Password,
		"SECRET_KEY":      &c.Auth.SecretKey,
		"LOG_FORMAT":      &c.Logging.Format,
		"LOG_LEVEL":       &c.Logging.Level,
	}
	for name, dst := range strs {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(envPrefix + "AUTH_MODE"); v != "" {
		c.Auth.Mode = AuthMode(strings.ToLower(v))
	}
	if v := os.Getenv(envPrefix + "ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}

	durations := map[string]*time.Duration{
		"CHECK_DELAY":  &c.Check.Delay,
		"CODE_TTL":     &c.Auth.CodeTTL,
		"SEND_WINDOW":  &c.Auth.SendWindow,
		"SEND_DELAY":   &c.Auth.SendDelay,
		"VERIFY_DELAY": &c.Auth.VerifyDelay,
		"RESEND_DELAY": &c.Auth.ResendDelay,
	}
	for name, dst := range durations {
		if v := os.Getenv(envPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	ints := map[string]*int{
		"REDIS_DB":     &c.Redis.DB,
		"MAX_ATTEMPTS": &c.Auth.MaxAttempts,
		"SEND_LIMIT":   &c.Auth.SendLimit,
		"WORKERS":      &c.Notifications.Workers,
	}
	for name, dst := range ints {
		if v := os.Getenv(envPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Auth.Mode != AuthModeDemo && c.Auth.Mode != AuthModeStrict {
		errs = append(errs, fmt.Errorf("auth.mode must be %q or %q, got %q", AuthModeDemo, AuthModeStrict, c.Auth.Mode))
	}
	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("auth.secret_key is required"))
	} else if c.Auth.Mode == AuthModeStrict && c.Auth.SecretKey == DefaultSecretKey {
		errs = append(errs, errors.New("auth.secret_key must be changed from the default in strict mode"))
	}
	if c.Auth.CodeTTL <= 0 {
		errs = append(errs, errors.New("auth.code_ttl must be positive"))
	}
	if c.Auth.MaxAttempts <= 0 || c.Auth.SendLimit <= 0 {
		errs = append(errs, errors.New("auth.max_attempts and auth.send_limit must be positive"))
	}
	if c.Auth.SendWindow <= 0 {
		errs = append(errs, errors.New("auth.send_window must be positive"))
	}
	if c.Auth.SendDelay < 0 || c.Auth.VerifyDelay < 0 || c.Auth.ResendDelay < 0 {
		errs = append(errs, errors.New("auth.send_delay, auth.verify_delay and auth.resend_delay must not be negative"))
	}
	if c.Notifications.Workers <= 0 {
		errs = append(errs, errors.New("notifications.workers must be positive"))
	}
	if c.Check.Delay < 0 {
		errs = append(errs, errors.New("check.delay must not be negative"))
	}
	if c.Rules.File != "" && c.Rules.S3.Bucket != "" {
		errs = append(errs, errors.New("rules.file and rules.s3 are mutually exclusive"))
	}
	if (c.Rules.S3.Bucket == "") != (c.Rules.S3.Key == "") {
		errs = append(errs, errors.New("rules.s3 needs both bucket and key"))
	}
	return errors.Join(errs...)
}
