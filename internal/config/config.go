package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"gridview/internal/selection"
	"gridview/internal/viewport"
)

type SavedConnection struct {
	Name     string `mapstructure:"name" json:"name"`
	Host     string `mapstructure:"host" json:"host,omitempty"`
	Port     string `mapstructure:"port" json:"port,omitempty"`
	User     string `mapstructure:"user" json:"user,omitempty"`
	Password string `mapstructure:"password" json:"password,omitempty"`
	Database string `mapstructure:"database" json:"database,omitempty"`
	URI      string `mapstructure:"uri" json:"uri,omitempty"`
	// SQLite is a database file path; it takes precedence over the
	// Postgres fields.
	SQLite string `mapstructure:"sqlite" json:"sqlite,omitempty"`
}

// GridConfig holds the grid's layout and loading settings.
type GridConfig struct {
	MinColumnWidth              float64 `mapstructure:"min_column_width"`
	MaxColumnWidth              float64 `mapstructure:"max_column_width"`
	FrozenColumns               int     `mapstructure:"frozen_columns"`
	RowHeightSample             int     `mapstructure:"row_height_sample"`
	IncrementalLoadingThreshold float64 `mapstructure:"incremental_loading_threshold"`
	DataFetchSize               float64 `mapstructure:"data_fetch_size"`
	PageSize                    int     `mapstructure:"page_size"`
	SelectionMode               string  `mapstructure:"selection_mode"`
	ScrollBar                   string  `mapstructure:"scrollbar"`
}

type Config struct {
	Connections []SavedConnection `mapstructure:"connections"`
	Grid        GridConfig        `mapstructure:"grid"`

	path string
}

// DefaultPath is GRIDVIEW_CONFIG when set, else ~/.config/gridview/config.json.
func DefaultPath() (string, error) {
	if p := os.Getenv("GRIDVIEW_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gridview", "config.json"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("grid.min_column_width", 4)
	v.SetDefault("grid.max_column_width", 0)
	v.SetDefault("grid.frozen_columns", 0)
	v.SetDefault("grid.row_height_sample", 16)
	v.SetDefault("grid.incremental_loading_threshold", 3)
	v.SetDefault("grid.data_fetch_size", 3)
	v.SetDefault("grid.page_size", 200)
	v.SetDefault("grid.selection_mode", "extended")
	v.SetDefault("grid.scrollbar", "auto")
}

// Load reads the JSON config at path, or DefaultPath when path is empty.
// A missing file yields the defaults. Env var overrides use prefix GRIDVIEW_.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return &Config{}, err
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("json")
	v.SetConfigFile(path)
	v.SetEnvPrefix("GRIDVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return &Config{path: path}, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return &Config{path: path}, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{path: path}
	if err := v.Unmarshal(cfg); err != nil {
		return &Config{path: path}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Grid.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Path is the file the config was loaded from and is saved to.
func (c *Config) Path() string { return c.path }

// Save writes the config back as JSON, creating its directory.
func (c *Config) Save() error {
	if c.path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		c.path = p
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("json")
	v.SetConfigPermissions(0o600)
	v.Set("connections", c.Connections)
	v.Set("grid.min_column_width", c.Grid.MinColumnWidth)
	v.Set("grid.max_column_width", c.Grid.MaxColumnWidth)
	v.Set("grid.frozen_columns", c.Grid.FrozenColumns)
	v.Set("grid.row_height_sample", c.Grid.RowHeightSample)
	v.Set("grid.incremental_loading_threshold", c.Grid.IncrementalLoadingThreshold)
	v.Set("grid.data_fetch_size", c.Grid.DataFetchSize)
	v.Set("grid.page_size", c.Grid.PageSize)
	v.Set("grid.selection_mode", c.Grid.SelectionMode)
	v.Set("grid.scrollbar", c.Grid.ScrollBar)

	if err := v.WriteConfigAs(c.path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	// An existing file keeps its mode on rewrite.
	return os.Chmod(c.path, 0o600)
}

func (c *Config) Add(conn SavedConnection) {
	for i, existing := range c.Connections {
		if existing.Name == conn.Name {
			c.Connections[i] = conn
			return
		}
	}
	c.Connections = append(c.Connections, conn)
}

func (c *Config) Delete(index int) {
	if index < 0 || index >= len(c.Connections) {
		return
	}
	c.Connections = append(c.Connections[:index], c.Connections[index+1:]...)
}

// Validate checks the enumerated settings and ranges.
func (g GridConfig) Validate() error {
	if _, err := g.Mode(); err != nil {
		return err
	}
	if _, err := g.ScrollBarVisibility(); err != nil {
		return err
	}
	if g.MinColumnWidth < 0 || (g.MaxColumnWidth > 0 && g.MaxColumnWidth < g.MinColumnWidth) {
		return fmt.Errorf("grid column widths: min %v max %v", g.MinColumnWidth, g.MaxColumnWidth)
	}
	if g.PageSize <= 0 {
		return fmt.Errorf("grid.page_size must be positive, got %d", g.PageSize)
	}
	return nil
}

func (g GridConfig) Mode() (selection.Mode, error) {
	return selection.ParseMode(g.SelectionMode)
}

func (g GridConfig) ScrollBarVisibility() (viewport.Visibility, error) {
	return viewport.ParseVisibility(g.ScrollBar)
}
