package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix      = "PAIRCHAT"
	envConfigDir   = envPrefix + "_CONFIG_DIR"
	configFileName = "config.yaml"
)

const fileHeader = "# pairchat server configuration. Env vars " + envPrefix + "_<KEY> take precedence.\n"

// Load resolves configuration in the order defaults, config file, environment.
// A missing config file is created from defaults. The returned path is the file
// that was (or would have been) read. Flag overrides are applied by the caller
// with UpdateFrom.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	cfg := Default()
	path := configPath(explicitPath)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	for key, value := range defaultKeys(cfg) {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := readOrCreate(v, path, cfg, logger); err != nil {
		return cfg, path, err
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, path, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, path, nil
}

// defaultKeys lists every config key with its default so AutomaticEnv can
// see keys the file does not mention.
func defaultKeys(cfg Config) map[string]any {
	return map[string]any{
		"addr":                cfg.Addr,
		"admin_addr":          cfg.AdminAddr,
		"log_level":           cfg.LogLevel,
		"log_format":          cfg.LogFormat,
		"database_path":       cfg.DatabasePath,
		"max_line_bytes":      cfg.MaxLineBytes,
		"write_timeout":       cfg.WriteTimeout,
		"msg_rate_per_minute": cfg.MsgRatePerMinute,
		"read_header_timeout": cfg.ReadHeaderTimeout,
		"shutdown_timeout":    cfg.ShutdownTimeout,
	}
}

func readOrCreate(v *viper.Viper, path string, cfg Config, logger *zerolog.Logger) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	// Running without a file is fine; defaults and env still apply.
	if err := writeDefault(path, cfg); err != nil {
		if logger != nil {
			logger.Warn().Err(err).Str("path", path).Msg("config file missing, continuing with defaults")
		}
		return nil
	}
	if logger != nil {
		logger.Info().Str("path", path).Msg("wrote default config file")
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read generated config %s: %w", path, err)
	}
	return nil
}

func configPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if dir := os.Getenv(envConfigDir); dir != "" {
		return filepath.Join(dir, configFileName)
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, configFileName)
	}
	return configFileName
}

func writeDefault(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append([]byte(fileHeader), data...), 0o600)
}
