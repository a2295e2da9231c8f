package connection

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
)

// Config is the part of the sumoknife config file that holds connections.
// Keys it does not know about are kept as they are.
type Config struct {
	Connections       map[string]*Connection `yaml:"connections"`
	DefaultConnection string                 `yaml:"default_connection,omitempty"`

	Settings map[string]any `yaml:",inline"`
}

// ConfigPath returns the path to the sumoknife config file.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sumoknife", "config.yaml")
}

// LoadConfig reads the config file at path. A missing file yields an
// empty config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Connections: make(map[string]*Connection)}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Connections == nil {
		cfg.Connections = make(map[string]*Connection)
	}
	for name, c := range cfg.Connections {
		if c == nil {
			c = &Connection{}
			cfg.Connections[name] = c
		}
		c.Name = name
	}
	return cfg, nil
}

// SaveConfig writes cfg to path. The file holds access keys and is only
// readable by its owner.
func SaveConfig(path string, cfg *Config) error {
	if path == "" {
		return os.ErrNotExist
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Names returns the saved connection names in order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Add saves conn under its name, replacing any connection of that name.
func (c *Config) Add(conn *Connection) error {
	if conn.Name == "" {
		return skerrors.MissingSetting("name")
	}
	if err := conn.Validate(); err != nil {
		return err
	}
	if c.Connections == nil {
		c.Connections = make(map[string]*Connection)
	}
	c.Connections[conn.Name] = conn
	return nil
}

// Remove deletes the named connection. It clears the default when that
// was the default.
func (c *Config) Remove(name string) error {
	if _, ok := c.Connections[name]; !ok {
		return skerrors.ConnectionNotFoundError(name, c.Names())
	}
	delete(c.Connections, name)
	if c.DefaultConnection == name {
		c.DefaultConnection = ""
	}
	return nil
}

// Resolve returns the named connection, or the default one when name is
// empty. The connection is validated before it is returned.
func (c *Config) Resolve(name string) (*Connection, error) {
	if name == "" {
		name = c.DefaultConnection
	}
	if name == "" {
		return nil, skerrors.NoConnectionError()
	}

	conn, ok := c.Connections[name]
	if !ok {
		return nil, skerrors.ConnectionNotFoundError(name, c.Names())
	}
	if err := conn.Validate(); err != nil {
		return nil, err
	}
	return conn, nil
}
