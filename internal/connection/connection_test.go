package connection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
)

func TestBaseURL(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"api.us2.sumologic.com", "https://api.us2.sumologic.com"},
		{"https://api.sumologic.com", "https://api.sumologic.com"},
		{"http://api.eu.sumologic.com", "https://api.eu.sumologic.com"},
		{"localhost:8080", "http://localhost:8080"},
		{"https://sumo.local", "http://sumo.local"},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			c := &Connection{Endpoint: tt.endpoint}
			assert.Equal(t, tt.want, c.BaseURL())
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Connection{Name: "prod", AccessID: "id", AccessKey: "key", Endpoint: "api.sumologic.com"}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		edit  func(c *Connection)
		field string
	}{
		{"no endpoint", func(c *Connection) { c.Endpoint = "" }, "connections.prod.endpoint"},
		{"trailing slash", func(c *Connection) { c.Endpoint = "api.sumologic.com/" }, "connections.prod.endpoint"},
		{"no access id", func(c *Connection) { c.AccessID = " " }, "connections.prod.access_id"},
		{"no access key", func(c *Connection) { c.AccessKey = "" }, "connections.prod.access_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.edit(&c)
			err := c.Validate()

			var cfgErr *skerrors.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestStateIsOwnedAndStable(t *testing.T) {
	c := &Connection{Name: "prod"}
	s := c.State()
	require.NotNil(t, s)
	assert.Same(t, s, c.State())
	assert.False(t, s.Ready)

	other := &Connection{Name: "dev"}
	assert.NotSame(t, s, other.State())
}

func TestClientConfig(t *testing.T) {
	c := &Connection{AccessID: "id", AccessKey: "key", Endpoint: "api.sumologic.com"}
	cfg := c.ClientConfig()
	assert.Equal(t, "https://api.sumologic.com", cfg.BaseURL)
	assert.Equal(t, "id", cfg.AccessID)
	assert.Equal(t, "key", cfg.AccessKey)
	assert.Equal(t, "id", c.CacheKey())
}

func TestMasked(t *testing.T) {
	assert.Equal(t, "******cdef", (&Connection{AccessKey: "0123abcdef"}).Masked())
	assert.Equal(t, "***", (&Connection{AccessKey: "abc"}).Masked())
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Connections)

	require.NoError(t, cfg.Add(&Connection{Name: "prod", AccessID: "id1", AccessKey: "k1", Endpoint: "api.sumologic.com"}))
	require.NoError(t, cfg.Add(&Connection{Name: "dev", AccessID: "id2", AccessKey: "k2", Endpoint: "localhost:9000"}))
	cfg.DefaultConnection = "prod"
	require.NoError(t, SaveConfig(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev", "prod"}, loaded.Names())
	assert.Equal(t, "prod", loaded.Connections["prod"].Name)
	assert.Equal(t, "k2", loaded.Connections["dev"].AccessKey)

	conn, err := loaded.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "prod", conn.Name)
}

func TestConfigKeepsOtherSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("results_format: csv\ntimeout: 30s\nconnections:\n  a:\n    access_id: x\n    access_key: y\n    endpoint: api.sumologic.com\n"), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Settings["results_format"])

	require.NoError(t, SaveConfig(path, cfg))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "results_format: csv")
	assert.Contains(t, string(data), "timeout: 30s")
}

func TestResolveErrors(t *testing.T) {
	cfg := &Config{Connections: map[string]*Connection{
		"production": {Name: "production", AccessID: "id", AccessKey: "k", Endpoint: "api.sumologic.com"},
		"broken":     {Name: "broken", AccessID: "id"},
	}}

	_, err := cfg.Resolve("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no connection selected")

	_, err = cfg.Resolve("prodution")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "production")

	_, err = cfg.Resolve("broken")
	var cfgErr *skerrors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestAddAndRemove(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Add(&Connection{AccessID: "id", AccessKey: "k", Endpoint: "e"}), "name required")
	assert.Error(t, cfg.Add(&Connection{Name: "x", Endpoint: "e"}), "invalid connection")

	require.NoError(t, cfg.Add(&Connection{Name: "x", AccessID: "id", AccessKey: "k", Endpoint: "e"}))
	cfg.DefaultConnection = "x"
	require.NoError(t, cfg.Remove("x"))
	assert.Empty(t, cfg.DefaultConnection)
	assert.Error(t, cfg.Remove("x"))
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connections: [unclosed"), 0600))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
