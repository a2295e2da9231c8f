package sumo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
	"github.com/jmurray2011/sumoknife/internal/logging"
)

// DefaultTimeout applies to every request made by a Client.
const DefaultTimeout = 15 * time.Second

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is scheme and host, without a trailing slash.
	BaseURL   string
	AccessID  string
	AccessKey string

	// Timeout for individual requests (default: 15s).
	Timeout time.Duration

	// RateLimit in requests per second. Zero disables limiting.
	RateLimit float64

	// Transport allows injecting a custom HTTP transport (for tests).
	Transport http.RoundTripper

	Logger logging.Logger
}

// Client issues authenticated requests against the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        logging.Logger
}

// NewClient validates cfg and returns a ready Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	switch {
	case cfg.BaseURL == "":
		return nil, skerrors.MissingSetting("endpoint")
	case strings.HasSuffix(cfg.BaseURL, "/"):
		return nil, &skerrors.ConfigurationError{Field: "endpoint", Message: "must not end with a slash"}
	case cfg.AccessID == "":
		return nil, skerrors.MissingSetting("access_id")
	case cfg.AccessKey == "":
		return nil, skerrors.MissingSetting("access_key")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NopLogger{}
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &sessionTransport{
				base:      base,
				accessID:  cfg.AccessID,
				accessKey: cfg.AccessKey,
			},
		},
		log: cfg.Logger,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c, nil
}

// sessionTransport sets credentials and content negotiation on every request.
type sessionTransport struct {
	base      http.RoundTripper
	accessID  string
	accessKey string
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth(t.accessID, t.accessKey)
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	return t.base.RoundTrip(r)
}

// Response is a decoded successful answer.
type Response struct {
	StatusCode int

	// Raw is the whole decoded body.
	Raw any

	// Data is Raw[RootKey] when the request named a root key present in the body.
	Data any
}

// Object returns the raw body as an object, or nil.
func (r *Response) Object() Row {
	obj, _ := r.Raw.(map[string]any)
	return obj
}

// Next returns the continuation token of a paginated answer.
func (r *Response) Next() string {
	if obj := r.Object(); obj != nil {
		if next, ok := obj["next"].(string); ok {
			return next
		}
	}
	return ""
}

// String returns a top-level string field of the raw body.
func (r *Response) String(key string) string {
	if obj := r.Object(); obj != nil {
		return AsString(obj[key])
	}
	return ""
}

// Rows returns Data as a list of objects. A single object yields one row.
func (r *Response) Rows() []Row {
	return AsRows(r.Data)
}

// AsRows converts a decoded JSON value into rows, skipping non-objects.
func AsRows(v any) []Row {
	switch data := v.(type) {
	case []any:
		rows := make([]Row, 0, len(data))
		for _, item := range data {
			if obj, ok := item.(map[string]any); ok {
				rows = append(rows, obj)
			}
		}
		return rows
	case []Row:
		return data
	case map[string]any:
		return []Row{data}
	default:
		return nil
	}
}

// Fetch performs the request described by spec.
func (c *Client) Fetch(ctx context.Context, spec Spec) (*Response, error) {
	uri, err := spec.URI()
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	params := spec.Params.withPaging()
	fullURL := c.baseURL + uri

	var body io.Reader
	switch spec.Method {
	case MethodGet, MethodDelete:
		fullURL += "?" + encodeQuery(params)
	case MethodPost, MethodPut:
		payload, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", uri, err)
		}
		body = bytes.NewReader(payload)
	default:
		return nil, &skerrors.ConfigurationError{Field: "method", Message: fmt.Sprintf("unsupported method %d", spec.Method)}
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method.String(), fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	c.log.WithField("method", spec.Method.String()).Debug("request %s", uri)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: spec.Method.String(), URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: "read", URL: fullURL, Err: err}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 600 {
		return nil, parseAPIError(resp.StatusCode, fullURL, raw)
	}

	out := &Response{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&out.Raw); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", uri, err)
		}
	}

	out.Data = out.Raw
	if spec.RootKey != "" {
		if obj := out.Object(); obj != nil {
			if inner, ok := obj[spec.RootKey]; ok {
				out.Data = inner
			}
		}
	}
	return out, nil
}

func encodeQuery(params Params) string {
	values := url.Values{}
	for k, v := range params {
		values.Set(k, AsString(v))
	}
	return values.Encode()
}

// AsString renders a decoded JSON scalar as text.
func AsString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// AsInt64 reads a decoded JSON number. Anything else yields zero.
func AsInt64(v any) int64 {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n
		}
		if f, err := val.Float64(); err == nil {
			return int64(f)
		}
	case float64:
		return int64(val)
	case int:
		return int64(val)
	case int64:
		return val
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	}
	return 0
}
