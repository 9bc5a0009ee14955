package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/graphminer/errors"
	"github.com/teranos/graphminer/logger"
)

// ConfigFileName is looked up in ~/.graphminer and in the working directory
// and its parents.
const ConfigFileName = "am.toml"

var (
	globalConfig  *Config
	viperInstance *viper.Viper
)

// Source is one configuration file in the cascade
type Source struct {
	Kind  string // "user" or "project"
	Path  string
	Found bool
}

// Load returns the configuration built from defaults, the user file, the
// nearest project file and GRAPHMINER_* variables. The result is cached until
// Reset.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	cfg, err := LoadWithViper(initViper())
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// LoadWithViper decodes an already populated viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile reads one TOML file over the defaults, ignoring the cascade
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}
	return LoadWithViper(v)
}

// GetViper exposes the cascade for key lookups
func GetViper() *viper.Viper {
	return initViper()
}

// Get returns one key in dot notation, e.g. "http.from"
func Get(key string) interface{} {
	return initViper().Get(key)
}

// Reset drops the cached configuration
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix("GRAPHMINER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindSensitiveEnvVars(v)
	SetDefaults(v)

	for _, src := range Sources() {
		if !src.Found {
			continue
		}
		if err := mergeFile(v, src.Path); err != nil {
			logger.Warnw("Skipping unreadable config file", "path", src.Path, "error", err)
		}
	}

	viperInstance = v
	return v
}

// mergeFile layers path over v, below environment variables
func mergeFile(v *viper.Viper, path string) error {
	file := viper.New()
	file.SetConfigFile(path)
	file.SetConfigType("toml")
	if err := file.ReadInConfig(); err != nil {
		return err
	}
	return v.MergeConfigMap(file.AllSettings())
}

// UserConfigPath returns ~/.graphminer/am.toml, or "" without a home directory
func UserConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".graphminer", ConfigFileName)
}

// ProjectConfigPath returns the nearest am.toml at or above the working
// directory, or "".
func ProjectConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Sources lists the cascade files, lowest precedence first. The user file is
// listed even when missing so 'am init' has somewhere to point at.
func Sources() []Source {
	var out []Source
	user := UserConfigPath()
	if user != "" {
		_, err := os.Stat(user)
		out = append(out, Source{Kind: "user", Path: user, Found: err == nil})
	}
	if project := ProjectConfigPath(); project != "" && project != user {
		out = append(out, Source{Kind: "project", Path: project, Found: true})
	}
	return out
}
