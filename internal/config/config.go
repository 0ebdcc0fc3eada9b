package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	AppDirName            = "todo-app"
	DefaultConfigFileName = "config.toml"
	DefaultBackend        = "json"
	DefaultTick           = 250 * time.Millisecond
)

type Keymap struct {
	Quit    string `toml:"quit"`
	Up      string `toml:"up"`
	Down    string `toml:"down"`
	Edit    string `toml:"edit"`
	New     string `toml:"new"`
	Toggle  string `toml:"toggle"`
	Delete  string `toml:"delete"`
	Filter  string `toml:"filter"`
	Help    string `toml:"help"`
	Confirm string `toml:"confirm"`
	Deny    string `toml:"deny"`
	Cancel  string `toml:"cancel"`
}

type Config struct {
	DataPath      string `toml:"data_path"`
	Backend       string `toml:"backend"`
	ShowCompleted bool   `toml:"show_completed"`
	TickMS        int    `toml:"tick_ms"`
	LogPath       string `toml:"log_path"`
	LogLevel      string `toml:"log_level"`
	Keys          Keymap `toml:"keys"`
}

// Tick is the spinner frame interval. Keys are delivered as they arrive.
func (c Config) Tick() time.Duration {
	if c.TickMS <= 0 {
		return DefaultTick
	}
	return time.Duration(c.TickMS) * time.Millisecond
}

// ResolveConfigPath honours $TODO_CONFIG, then the user config dir.
func ResolveConfigPath() string {
	if p := strings.TrimSpace(os.Getenv("TODO_CONFIG")); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, AppDirName, DefaultConfigFileName)
}

// DefaultDataDir honours $XDG_DATA_HOME, else ~/.local/share.
func DefaultDataDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, AppDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", AppDirName)
}

// LoadOrCreate reads path, writing the defaults there on first launch.
// Environment overrides are applied after the file.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg.resolve(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg.withDefaults().resolve(), nil
}

// resolve applies environment overrides and picks the data file when none is set.
func (c Config) resolve() Config {
	c = applyEnv(c)
	if c.DataPath == "" {
		c.DataPath = DataFileFor(c.Backend)
	}
	return c
}

func (c Config) withDefaults() Config {
	def := defaultConfig()
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.TickMS <= 0 {
		c.TickMS = def.TickMS
	}
	c.Keys = c.Keys.withDefaults(def.Keys)
	return c
}

func (k Keymap) withDefaults(def Keymap) Keymap {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&k.Quit, def.Quit)
	fill(&k.Up, def.Up)
	fill(&k.Down, def.Down)
	fill(&k.Edit, def.Edit)
	fill(&k.New, def.New)
	fill(&k.Toggle, def.Toggle)
	fill(&k.Delete, def.Delete)
	fill(&k.Filter, def.Filter)
	fill(&k.Help, def.Help)
	fill(&k.Confirm, def.Confirm)
	fill(&k.Deny, def.Deny)
	fill(&k.Cancel, def.Cancel)
	return k
}

func applyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv("TODO_BACKEND")); v != "" {
		cfg.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("TODO_DATA_FILE")); v != "" {
		cfg.DataPath = v
	}
	return cfg
}

// DataFileFor returns the default data file for a backend kind.
func DataFileFor(backend string) string {
	name := "tasks.json"
	switch strings.ToLower(backend) {
	case "lines":
		name = "user_data"
	case "sqlite":
		name = "todo.db"
	}
	return filepath.Join(DefaultDataDir(), name)
}

func write(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig() Config {
	return Config{
		Backend:  DefaultBackend,
		TickMS:   int(DefaultTick / time.Millisecond),
		LogPath:  filepath.Join(DefaultDataDir(), "todo.log"),
		LogLevel: "info",
		Keys: Keymap{
			Quit:    "q",
			Up:      "k",
			Down:    "j",
			Edit:    "enter",
			New:     "n",
			Toggle:  " ",
			Delete:  "d",
			Filter:  "f",
			Help:    "?",
			Confirm: "y",
			Deny:    "n",
			Cancel:  "esc",
		},
	}
}
