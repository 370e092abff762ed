package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestPartialBillingFileInheritsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "billing.yml")
	require.NoError(t, os.WriteFile(path, []byte("generation:\n  autoGenerate: true\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(path)

	cfg, err := loadGenerationConfig(v)
	require.NoError(t, err)
	require.True(t, cfg.AutoGenerate)
	require.Equal(t, 1, cfg.DayOfMonth)
	require.Equal(t, 600, cfg.LockTTLSeconds)
	require.Equal(t, 500, cfg.BatchSize)
}

func TestMissingBillingFileYieldsDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath(t.TempDir())

	cfg, err := loadGenerationConfig(v)
	require.NoError(t, err)
	require.Equal(t, DefaultGenerationConfig(), cfg)
}

func TestInvalidGenerationConfigRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "billing.yml")
	require.NoError(t, os.WriteFile(path, []byte("generation:\n  dayOfMonth: 31\n"), 0o644))

	v := viper.New()
	v.SetConfigFile(path)

	_, err := loadGenerationConfig(v)
	require.Error(t, err)
}
