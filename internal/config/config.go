// Package config loads studyplan settings from flags, STUDYPLAN_* environment
// variables, an optional .env file, and an optional studyplan.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "STUDYPLAN"

type Config struct {
	DB      DBConfig      `mapstructure:"db"`
	Log     LogConfig     `mapstructure:"log"`
	Behind  BehindConfig  `mapstructure:"behind"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Buckets BucketsConfig `mapstructure:"buckets"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	// Course is the default course id or name for commands that need one.
	Course string `mapstructure:"course"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File enables JSON logs with rotation. Empty disables file logging.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type BehindConfig struct {
	LateToleranceDays   int `mapstructure:"late_tolerance_days"`
	MaxUnlearnedModules int `mapstructure:"max_unlearned_modules"`
}

type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// BucketsConfig maps each task type to the session its untagged entries go to.
type BucketsConfig struct {
	Learn    string `mapstructure:"learn"`
	Review   string `mapstructure:"review"`
	Practice string `mapstructure:"practice"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration in increasing priority: defaults, studyplan.yaml,
// .env, environment, then any flags in fs that were set. configFile may be
// empty to search the working directory and ~/.studyplan.
func Load(configFile string, fs *pflag.FlagSet) (*Config, error) {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("studyplan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".studyplan"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if fs != nil {
		for key, flag := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", flag, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"db.path":   "db",
	"course":    "course",
	"log.level": "log-level",
}

func setDefaults(v *viper.Viper) {
	dbPath := "studyplan.db"
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".studyplan", "studyplan.db")
	}
	v.SetDefault("db.path", dbPath)
	v.SetDefault("course", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("behind.late_tolerance_days", 0)
	v.SetDefault("behind.max_unlearned_modules", 0)
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("buckets.learn", string(domain.BucketSessionLongue))
	v.SetDefault("buckets.review", string(domain.BucketSessionCourte))
	v.SetDefault("buckets.practice", string(domain.BucketSessionLongue))
	v.SetDefault("metrics.addr", "127.0.0.1:9464")
}

func (c *Config) Validate() error {
	if c.Behind.LateToleranceDays < 0 {
		return &domain.ValidationError{Field: "behind.late_tolerance_days", Message: "must not be negative"}
	}
	if c.Behind.MaxUnlearnedModules < 0 {
		return &domain.ValidationError{Field: "behind.max_unlearned_modules", Message: "must not be negative"}
	}
	if c.Cache.TTL < 0 {
		return &domain.ValidationError{Field: "cache.ttl", Message: "must not be negative"}
	}
	return c.BucketPolicy().Validate()
}

// BucketPolicy builds the routing policy for untagged entries.
func (c *Config) BucketPolicy() scheduler.BucketPolicy {
	p := scheduler.DefaultBucketPolicy()
	set := func(tt domain.TaskType, b string) {
		if b != "" {
			p.ByTaskType[tt] = domain.SessionBucket(b)
		}
	}
	set(domain.TaskLearn, c.Buckets.Learn)
	set(domain.TaskReview, c.Buckets.Review)
	set(domain.TaskPractice, c.Buckets.Practice)
	return p
}

func (c *Config) BehindPolicy() scheduler.BehindPolicy {
	return scheduler.BehindPolicy{
		LateToleranceDays:   c.Behind.LateToleranceDays,
		MaxUnlearnedModules: c.Behind.MaxUnlearnedModules,
	}
}
