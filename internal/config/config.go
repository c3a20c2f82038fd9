// Package config handles loading, defaulting and hot-reloading of
// pagebinder configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/pagebinder/pagebinder/internal/toc"
)

// Config is the full pagebinder configuration.
type Config struct {
	// InputDir is joined onto relative source paths in the schema.
	InputDir string        `mapstructure:"input_dir" yaml:"input_dir"`
	Toc      TocConfig     `mapstructure:"toc" yaml:"toc"`
	Backend  BackendConfig `mapstructure:"backend" yaml:"backend"`
}

// TocConfig controls TOC pagination and appearance.
type TocConfig struct {
	Title         string  `mapstructure:"title" yaml:"title"`
	LinesPerPage  int     `mapstructure:"lines_per_page" yaml:"lines_per_page"`
	Indent        float64 `mapstructure:"indent" yaml:"indent"`
	LineHeight    float64 `mapstructure:"line_height" yaml:"line_height"`
	PageSize      string  `mapstructure:"page_size" yaml:"page_size"`
	FontFamily    string  `mapstructure:"font_family" yaml:"font_family"`
	TitleFontSize float64 `mapstructure:"title_font_size" yaml:"title_font_size"`
	EntryFontSize float64 `mapstructure:"entry_font_size" yaml:"entry_font_size"`
	SubFontSize   float64 `mapstructure:"sub_font_size" yaml:"sub_font_size"`
}

// BackendConfig controls the document backend.
type BackendConfig struct {
	// MaxRetries bounds re-reads of a source document on transient failure.
	MaxRetries uint `mapstructure:"max_retries" yaml:"max_retries"`
	// PageCountWorkers bounds concurrent page-count queries.
	PageCountWorkers int `mapstructure:"page_count_workers" yaml:"page_count_workers"`
}

// Layout converts the TOC configuration into a renderer layout, falling
// back to defaults for unset fields.
func (c *Config) Layout() toc.Layout {
	layout := toc.DefaultLayout()
	if c.Toc.Title != "" {
		layout.Title = c.Toc.Title
	}
	if c.Toc.LinesPerPage > 0 {
		layout.LinesPerPage = c.Toc.LinesPerPage
	}
	if c.Toc.Indent > 0 {
		layout.Indent = c.Toc.Indent
	}
	if c.Toc.LineHeight > 0 {
		layout.LineHeight = c.Toc.LineHeight
	}
	if c.Toc.PageSize != "" {
		layout.PageSize = c.Toc.PageSize
	}
	if c.Toc.FontFamily != "" {
		layout.FontFamily = c.Toc.FontFamily
	}
	if c.Toc.TitleFontSize > 0 {
		layout.TitleFontSize = c.Toc.TitleFontSize
	}
	if c.Toc.EntryFontSize > 0 {
		layout.EntryFontSize = c.Toc.EntryFontSize
	}
	if c.Toc.SubFontSize > 0 {
		layout.SubFontSize = c.Toc.SubFontSize
	}
	return layout
}

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("input_dir", defaults.InputDir)
	viper.SetDefault("toc", defaults.Toc)
	viper.SetDefault("backend", defaults.Backend)

	// Environment variables with PAGEBINDER_ prefix
	viper.SetEnvPrefix("PAGEBINDER")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pagebinder")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.pagebinder")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# pagebinder configuration
# input_dir is joined onto relative source paths from the merge schema.
# TOC fonts use the built-in PDF families: Helvetica, Times, Courier.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
