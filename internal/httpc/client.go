// Package httpc is a small client for the posecoach REST API.
package httpc

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teslashibe/go-posecoach/pkg/profile"
	"github.com/teslashibe/go-posecoach/pkg/protocol"
)

// Default timeouts for HTTP operations.
const (
	DefaultTimeout         = 10 * time.Second
	DefaultConnectTimeout  = 5 * time.Second
	DefaultKeepAlive       = 30 * time.Second
	DefaultIdleConnTimeout = 90 * time.Second
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("posecoach api: %d %s", e.Status, e.Message)
}

// Client talks to one posecoach server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL (e.g. http://localhost:8080).
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   DefaultConnectTimeout,
					KeepAlive: DefaultKeepAlive,
				}).DialContext,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     DefaultIdleConnTimeout,
			},
		},
	}
}

// Profile fetches a reference profile by ID.
func (c *Client) Profile(ctx context.Context, id string) (*profile.Profile, error) {
	var d protocol.ProfileData
	if err := c.getJSON(ctx, "/api/profiles/"+url.PathEscape(id), &d); err != nil {
		return nil, err
	}

	p := &profile.Profile{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Angles:       d.Angles,
		Weights:      d.Weights,
		ToleranceDeg: d.ToleranceDeg,
		BuiltIn:      d.BuiltIn,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&body)
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
