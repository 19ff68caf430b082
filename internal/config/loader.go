package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment
// variables. If configFile is empty, it searches for cherub.yaml/.yml in
// standard locations. The search requires an explicit YAML extension to
// avoid matching the binary itself (same base name, no extension).
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		viper.SetConfigName("cherub")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CHERUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".cherub"),
		"/etc/cherub",
	}
	return findConfigFileInPaths(paths)
}

func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "cherub"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.http_addr")
	_ = viper.BindEnv("server.log_level")
	_ = viper.BindEnv("policy.path")
	_ = viper.BindEnv("audit.output")
	_ = viper.BindEnv("approval.timeout_seconds")
	_ = viper.BindEnv("approval.max_pending")
	_ = viper.BindEnv("dev_mode")
}

// LoadConfig reads the configuration file, applies environment overrides,
// sets defaults, and validates. Callers should apply any CLI flag
// overrides (e.g. --policy) to the returned Config's Policy.Path before
// resolving the policy file itself.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file loaded, or
// empty if none was found (env-vars-only mode).
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// ResolvePolicyPath implements the policy-path resolution order: an
// explicit path (flag or config file) wins; otherwise
// ./cherub.policy.toml if it exists; otherwise the per-user location
// $HOME/.cherub/policy.toml if it exists; otherwise empty (caller falls
// back to policy.Empty()).
func ResolvePolicyPath(configured string) string {
	if configured != "" {
		return configured
	}
	if _, err := os.Stat("./cherub.policy.toml"); err == nil {
		return "./cherub.policy.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".cherub", "policy.toml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
