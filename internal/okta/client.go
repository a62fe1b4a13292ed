// Package okta talks to an Okta-compatible identity provider over its REST
// API: a small paginated HTTP client plus the group/user directory built on
// top of it.
package okta

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrConnection marks a transport-level failure reaching the IdP.
	ErrConnection = errors.New("error connecting to IdP API")
	// ErrAuth marks an IdP error payload or an empty/unparseable body,
	// typically an invalid API key.
	ErrAuth = errors.New("invalid API key")
)

// DefaultTimeout bounds a single request to the IdP. A hung call would
// otherwise stall the whole run.
const DefaultTimeout = 30 * time.Second

// Response is one decoded IdP reply. Header keeps the raw multi-valued
// response headers (case-insensitive access via http.Header) so pagination
// links can be read separately from the body.
type Response struct {
	Header http.Header
	Body   any
}

// Client is a generic client for the IdP REST API. It knows nothing about
// users or groups.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a Client for the given endpoint. The API key must already
// be decrypted.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.http.Timeout = d
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildURL resolves a request URI against the base URL. IdP-issued "next
// page" links are already absolute and are used verbatim.
func (c *Client) buildURL(uri string) string {
	if strings.Contains(uri, c.baseURL) {
		return uri
	}
	return c.baseURL + "/" + strings.TrimLeft(uri, "/")
}

// Request performs one call against the IdP. Any failure comes back as a
// single sentinel (ErrConnection or ErrAuth) with no partial body; callers
// treat it as "no data available".
func (c *Client) Request(ctx context.Context, uri, method string, body []byte) (*Response, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	rq, err := http.NewRequestWithContext(ctx, method, c.buildURL(uri), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	rq.Header.Set("Accept", "application/json")
	rq.Header.Set("Content-Type", "application/json")
	rq.Header.Set("Authorization", "SSWS "+c.apiKey)

	rs, err := c.http.Do(rq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer rs.Body.Close()

	raw, err := io.ReadAll(rs.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if len(raw) == 0 {
		return nil, ErrAuth
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, ErrAuth
	}
	if obj, ok := decoded.(map[string]any); ok {
		if code, ok := obj["errorCode"]; ok && code != nil {
			return nil, ErrAuth
		}
	}

	return &Response{Header: rs.Header, Body: decoded}, nil
}

var linkEntry = regexp.MustCompile(`<(.*?)>;\s*rel="(.*?)"`)

// ParseLinkHeader parses RFC5988-style `<url>; rel="name"` header values
// into a rel => url map. Malformed entries are silently dropped.
func ParseLinkHeader(values []string) map[string]string {
	links := map[string]string{}
	for _, part := range values {
		if m := linkEntry.FindStringSubmatch(part); m != nil {
			links[m[2]] = html.UnescapeString(m[1])
		}
	}
	return links
}
