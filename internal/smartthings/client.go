package smartthings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/config"
)

// maxErrorBodyBytes caps how much of an error response body is retained.
const maxErrorBodyBytes = 2048

// Client accesses the SmartThings cloud REST API.
//
// Every call carries the configured bearer token and a fixed timeout.
// Calls are independent: there is no retry or circuit breaking here, the
// bridge's poll loop and availability publishing absorb transient failures.
type Client struct {
	base  string
	token string
	http  *http.Client
}

// NewClient creates a SmartThings API client from config.
func NewClient(cfg config.SmartThingsConfig) *Client {
	return &Client{
		base:  cfg.APIBase,
		token: cfg.Token,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// ListDevices returns all devices visible to the configured token.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var list deviceList
	if err := c.get(ctx, "/devices", &list); err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return list.Items, nil
}

// DeviceStatus returns the full component status document for a device.
//
// The document is returned as a raw nested map; attribute extraction is
// the bridge's job, and unexpected shapes must not fail the call.
func (c *Client) DeviceStatus(ctx context.Context, deviceID string) (map[string]any, error) {
	var status map[string]any
	path := "/devices/" + url.PathEscape(deviceID) + "/status"
	if err := c.get(ctx, path, &status); err != nil {
		return nil, fmt.Errorf("fetching status for device %s: %w", deviceID, err)
	}
	return status, nil
}

// SendCommands submits a command envelope to a device.
func (c *Client) SendCommands(ctx context.Context, deviceID string, envelope CommandEnvelope) error {
	path := "/devices/" + url.PathEscape(deviceID) + "/commands"
	if err := c.post(ctx, path, envelope); err != nil {
		return fmt.Errorf("sending commands to device %s: %w", deviceID, err)
	}
	return nil
}

// get performs an authenticated GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// post performs an authenticated POST with a JSON body.
func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp)
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
}
