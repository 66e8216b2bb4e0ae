package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "/etc/settings-service/config.yaml"

// Duration is a time.Duration that reads and writes Go duration strings in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Features FeatureConfig  `yaml:"features"`
	Hardware HardwareConfig `yaml:"hardware"`
	Cars     CarsConfig     `yaml:"cars"`
	Purge    PurgeConfig    `yaml:"purge"`
	Commands CommandConfig  `yaml:"commands"`
	Timing   TimingConfig   `yaml:"timing"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type StoreConfig struct {
	// Backend is one of redis, file, sqlite, memory.
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type FeatureConfig struct {
	Brand          string `yaml:"brand"`
	MapsEnabled    bool   `yaml:"maps_enabled"`
	RegulatoryPath string `yaml:"regulatory_path"`
}

type HardwareConfig struct {
	// Root is where the TICI/EON marker files and VERSION live.
	Root string `yaml:"root"`
}

type CarsConfig struct {
	// ListPath is a line-delimited candidate file. Empty reads the
	// SupportedCars parameter instead.
	ListPath string `yaml:"list_path"`
}

// VariantDirs holds one purge location per hardware variant.
type VariantDirs struct {
	TICI string `yaml:"tici"`
	EON  string `yaml:"eon"`
}

type PurgeConfig struct {
	Recordings VariantDirs `yaml:"recordings"`
	Logs       VariantDirs `yaml:"logs"`
}

type CommandConfig struct {
	Updater         string   `yaml:"updater"`
	CalibrationTool string   `yaml:"calibration_tool"`
	PurgeRecordings string   `yaml:"purge_recordings"`
	PurgeLogs       string   `yaml:"purge_logs"`
	CommandTimeout  Duration `yaml:"command_timeout"`
}

type TimingConfig struct {
	SoftRestartDelay Duration `yaml:"soft_restart_delay"`
}

func DefaultConfig() *Config {
	return &Config{
		Log:   LogConfig{Level: "info"},
		Redis: RedisConfig{
			Host: "127.0.0.1",
			Port: 6379,
		},
		Store: StoreConfig{
			Backend:    "file",
			Dir:        "/data/params/d",
			SQLitePath: "/data/settings/params.db",
		},
		Server: ServerConfig{
			Enabled: true,
			Listen:  "127.0.0.1:8083",
		},
		Features: FeatureConfig{
			Brand:          "openpilot",
			RegulatoryPath: "/data/openpilot/selfdrive/assets/offroad/fcc.html",
		},
		Hardware: HardwareConfig{Root: "/"},
		Cars:     CarsConfig{},
		Purge:    PurgeConfig{
			Recordings: VariantDirs{
				TICI: "/data/media/0/videos",
				EON:  "/storage/emulated/0/videos",
			},
			Logs: VariantDirs{
				TICI: "/data/media/0/realdata",
				EON:  "/storage/emulated/0/realdata",
			},
		},
		Commands: CommandConfig{
			Updater:         "pkill -1 -f selfdrive.updated",
			CalibrationTool: "sh -c 'cd /data/openpilot/selfdrive && python ntune.py'",
			PurgeRecordings: "sh -c 'cd {dir} && rm -f *.*'",
			PurgeLogs:       "sh -c 'cd {dir} && rm -rf *'",
			CommandTimeout:  Duration(2 * time.Minute),
		},
		Timing:   TimingConfig{SoftRestartDelay: Duration(time.Second)},
	}
}

// Load reads the config at path, writing the defaults there first if it does not exist.
// SETTINGS_* environment variables override file values without being saved.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to save config file: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("SETTINGS_REDIS_HOST"); host != "" {
		cfg.Redis.Host = host
	}
	if port := os.Getenv("SETTINGS_REDIS_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid SETTINGS_REDIS_PORT %q: %w", port, err)
		}
		cfg.Redis.Port = p
	}
	if backend := os.Getenv("SETTINGS_STORE_BACKEND"); backend != "" {
		cfg.Store.Backend = backend
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "redis", "file", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid store backend %q: must be redis, file, sqlite or memory", c.Store.Backend)
	}
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis port %d", c.Redis.Port)
	}
	if c.Timing.SoftRestartDelay < 0 {
		return fmt.Errorf("soft_restart_delay must not be negative")
	}
	return nil
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# settings-service configuration
# store.backend: redis, file, sqlite or memory
# commands may use {dir} for the per-variant purge directory

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
