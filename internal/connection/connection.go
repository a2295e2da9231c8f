// Package connection holds the named service accounts sumoknife talks to
// and the config file they are saved in.
package connection

import (
	"context"
	"strings"

	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
	"github.com/jmurray2011/sumoknife/internal/metadata"
	"github.com/jmurray2011/sumoknife/internal/sumo"
)

// Connection identifies one account on one deployment endpoint.
type Connection struct {
	Name      string `yaml:"-"`
	AccessID  string `yaml:"access_id"`
	AccessKey string `yaml:"access_key"`
	Endpoint  string `yaml:"endpoint"`

	state *metadata.State
}

// BaseURL returns the scheme and host requests are sent to. Endpoints
// mentioning "local" are spoken to over plain http.
func (c *Connection) BaseURL() string {
	host := c.Endpoint
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	scheme := "https"
	if strings.Contains(c.Endpoint, "local") {
		scheme = "http"
	}
	return scheme + "://" + host
}

// Validate checks that the connection can be used to build a client.
func (c *Connection) Validate() error {
	switch {
	case strings.TrimSpace(c.Endpoint) == "":
		return skerrors.MissingSetting(c.field("endpoint"))
	case strings.HasSuffix(c.Endpoint, "/"):
		return &skerrors.ConfigurationError{Field: c.field("endpoint"), Message: "must not end with a slash"}
	case strings.TrimSpace(c.AccessID) == "":
		return skerrors.MissingSetting(c.field("access_id"))
	case strings.TrimSpace(c.AccessKey) == "":
		return skerrors.MissingSetting(c.field("access_key"))
	}
	return nil
}

func (c *Connection) field(name string) string {
	if c.Name == "" {
		return name
	}
	return "connections." + c.Name + "." + name
}

// ClientConfig returns the client settings of this connection. Timeout,
// rate limit and transport are left for the caller.
func (c *Connection) ClientConfig() sumo.ClientConfig {
	return sumo.ClientConfig{
		BaseURL:   c.BaseURL(),
		AccessID:  c.AccessID,
		AccessKey: c.AccessKey,
	}
}

// State returns the metadata state owned by this connection.
func (c *Connection) State() *metadata.State {
	if c.state == nil {
		c.state = metadata.NewState()
	}
	return c.state
}

// Activate discards what the connection knew and loads every metadata
// kind again through engine.
func (c *Connection) Activate(ctx context.Context, engine *metadata.Engine) (*metadata.Report, error) {
	return engine.Sync(ctx, c.State())
}

// CacheKey names the connection's directory in the metadata cache.
func (c *Connection) CacheKey() string {
	return c.AccessID
}

// Masked returns the access key with all but its last four characters hidden.
func (c *Connection) Masked() string {
	key := c.AccessKey
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
