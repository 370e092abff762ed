package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// GenerationConfig controls the monthly payment-generation job.
type GenerationConfig struct {
	AutoGenerate bool `mapstructure:"autoGenerate"`
	// DayOfMonth is the earliest day of the month on which the scheduler
	// may run generation for that month.
	DayOfMonth     int `mapstructure:"dayOfMonth"`
	LockTTLSeconds int `mapstructure:"lockTTLSeconds"`
	BatchSize      int `mapstructure:"batchSize"`
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		AutoGenerate:   false,
		DayOfMonth:     1,
		LockTTLSeconds: 600,
		BatchSize:      500,
	}
}

// GenerationConfigHolder exposes the current generation config and hot
// reloads it when the backing file changes.
type GenerationConfigHolder struct {
	current atomic.Value // holds GenerationConfig
}

func NewGenerationConfigHolder() (*GenerationConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/clubledger")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CLUBLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg, err := loadGenerationConfig(v)
	if err != nil {
		return nil, err
	}

	holder := &GenerationConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		next, err := unmarshalGenerationConfig(v)
		if err != nil {
			log.Printf("generation config reload failed: %v", err)
			return
		}
		holder.current.Store(next)
	})

	return holder, nil
}

// Current returns the active generation config.
func (h *GenerationConfigHolder) Current() GenerationConfig {
	if h == nil {
		return DefaultGenerationConfig()
	}
	if cfg, ok := h.current.Load().(GenerationConfig); ok {
		return cfg
	}
	return DefaultGenerationConfig()
}

// loadGenerationConfig seeds defaults before reading so a partial
// billing.yml inherits the missing keys; an absent file yields the
// defaults outright.
func loadGenerationConfig(v *viper.Viper) (GenerationConfig, error) {
	defaults := DefaultGenerationConfig()
	v.SetDefault("generation.autoGenerate", defaults.AutoGenerate)
	v.SetDefault("generation.dayOfMonth", defaults.DayOfMonth)
	v.SetDefault("generation.lockTTLSeconds", defaults.LockTTLSeconds)
	v.SetDefault("generation.batchSize", defaults.BatchSize)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return GenerationConfig{}, err
		}
	}

	return unmarshalGenerationConfig(v)
}

func unmarshalGenerationConfig(v *viper.Viper) (GenerationConfig, error) {
	var cfg GenerationConfig
	if err := v.UnmarshalKey("generation", &cfg); err != nil {
		return GenerationConfig{}, err
	}
	if err := validateGenerationConfig(cfg); err != nil {
		return GenerationConfig{}, err
	}
	return cfg, nil
}

func validateGenerationConfig(cfg GenerationConfig) error {
	if cfg.DayOfMonth < 1 || cfg.DayOfMonth > 28 {
		return errors.New("generation.dayOfMonth must be between 1 and 28")
	}
	if cfg.LockTTLSeconds <= 0 {
		return errors.New("generation.lockTTLSeconds must be positive")
	}
	if cfg.BatchSize <= 0 {
		return errors.New("generation.batchSize must be positive")
	}
	return nil
}
