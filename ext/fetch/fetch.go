// Package fetch registers the `fetch::get` host function: a small
// net/http-based request returning a Rill dict (status, headers, body).
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rill-lang/rill/host"
	"github.com/rill-lang/rill/value"
)

// DefaultTimeout is the request timeout used when a call doesn't
// override it.
const DefaultTimeout = 30 * time.Second

// Client wraps the *http.Client fetch::get issues requests through, so
// a host embedding can point it at a transport with its own proxy,
// TLS, or test-mock configuration.
type Client struct {
	HTTP *http.Client
}

// NewClient builds a Client with DefaultTimeout.
func NewClient() *Client {
	return &Client{HTTP: &http.Client{Timeout: DefaultTimeout}}
}

// Registrations returns the host.Registration set exposed under the
// "fetch" namespace (fetch::get once host.Registry.RegisterNamespaced
// prefixes it).
func (c *Client) Registrations() []host.Registration {
	return []host.Registration{
		{
			Name: "get",
			Params: []value.ParamSpec{
				{Name: "url", Type: "string", Doc: "absolute URL to request"},
				{Name: "headers", Type: "dict", Doc: "extra request headers", DefaultValue: value.NewDict()},
			},
			Fn:          c.get,
			Description: "issues an HTTP GET request, returning a dict with status, headers, and body",
			ReturnType:  "dict",
			TimeoutMs:   int(DefaultTimeout / time.Millisecond),
		},
	}
}

func (c *Client) get(ctx context.Context, h value.Host, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("fetch::get requires a url argument")
	}
	urlStr, ok := args[0].(value.String)
	if !ok {
		return nil, fmt.Errorf("fetch::get url must be a string, got %s", value.InferKind(args[0]))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr.Value, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch::get: building request: %w", err)
	}
	if len(args) > 1 {
		if hdrs, ok := args[1].(*value.Dict); ok {
			for _, k := range hdrs.Keys() {
				v, _ := hdrs.Get(k)
				if sv, ok := v.(value.String); ok {
					req.Header.Set(k, sv.Value)
				}
			}
		}
	}

	h.Emit("host_call", map[string]interface{}{"function": "fetch::get", "url": urlStr.Value})

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch::get: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch::get: reading response: %w", err)
	}

	headerKeys := make([]string, 0, len(resp.Header))
	for k := range resp.Header {
		headerKeys = append(headerKeys, k)
	}
	sort.Strings(headerKeys)

	headers := value.NewDict()
	for _, k := range headerKeys {
		headers = headers.With(strings.ToLower(k), value.String{Value: strings.Join(resp.Header.Values(k), ", ")})
	}

	result := value.NewDict()
	result = result.With("status", value.Number{Value: float64(resp.StatusCode)})
	result = result.With("headers", headers)
	result = result.With("body", value.String{Value: string(body)})
	return result, nil
}
