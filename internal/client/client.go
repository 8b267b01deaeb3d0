// Package client provides an HTTP client for the SmartThings REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultBaseURL is the SmartThings API endpoint.
const DefaultBaseURL = "https://api.smartthings.com/v1"

// tvCapabilities is the set of capability IDs that mark a device as TV-like.
var tvCapabilities = map[string]bool{
	"switch":           true,
	"audioVolume":      true,
	"mediaInputSource": true,
	"tvChannel":        true,
}

// Client is an HTTP client for the SmartThings API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a new API client against the production SmartThings endpoint.
func New(token string, logger *slog.Logger) *Client {
	return NewWithBaseURL(DefaultBaseURL, token, logger)
}

// NewWithBaseURL creates a new API client with an explicit base URL.
func NewWithBaseURL(baseURL, token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CapabilityRef identifies one capability exposed by a device component.
type CapabilityRef struct {
	ID      string `json:"id"`
	Version int    `json:"version,omitempty"`
}

// Component is a named grouping of capabilities within a device.
type Component struct {
	ID           string          `json:"id"`
	Capabilities []CapabilityRef `json:"capabilities"`
}

// Device represents one registered SmartThings device.
type Device struct {
	DeviceID       string      `json:"deviceId"`
	Name           string      `json:"name"`
	Label          string      `json:"label,omitempty"`
	DeviceTypeName string      `json:"deviceTypeName,omitempty"`
	Components     []Component `json:"components"`
}

// DevicesResponse is the response from the devices collection endpoint.
type DevicesResponse struct {
	Items []Device `json:"items"`
}

// AttributeValue is one attribute reading within a capability status.
type AttributeValue struct {
	Value     interface{} `json:"value"`
	Unit      string      `json:"unit,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// DeviceStatus maps component -> capability -> attribute -> value.
type DeviceStatus struct {
	Components map[string]map[string]map[string]AttributeValue `json:"components"`
}

// Command is one capability command addressed to a device component.
type Command struct {
	Component  string        `json:"component"`
	Capability string        `json:"capability"`
	Command    string        `json:"command"`
	Arguments  []interface{} `json:"arguments,omitempty"`
}

// commandRequest is the body posted to the device commands endpoint.
type commandRequest struct {
	Commands []Command `json:"commands"`
}

// ErrorResponse is an API error envelope.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListDevices lists all registered devices.
//
// Failures are absorbed: any transport or API error is logged and an empty
// slice is returned, so callers cannot distinguish "no devices" from "query
// failed". Use Ping when the failure itself matters.
func (c *Client) ListDevices(ctx context.Context) []Device {
	var resp DevicesResponse
	if err := c.get(ctx, "/devices", &resp); err != nil {
		c.logger.Error("failed to list devices", "error", err)
		return nil
	}
	return resp.Items
}

// ListTVDevices lists all devices classified as TV-like.
func (c *Client) ListTVDevices(ctx context.Context) []Device {
	return FilterTVDevices(c.ListDevices(ctx))
}

// GetDevice gets a single device by ID. Returns nil on any failure.
func (c *Client) GetDevice(ctx context.Context, id string) *Device {
	var resp Device
	if err := c.get(ctx, "/devices/"+id, &resp); err != nil {
		c.logger.Error("failed to get device", "device_id", id, "error", err)
		return nil
	}
	return &resp
}

// GetDeviceStatus gets the status of a device. Returns nil on any failure.
func (c *Client) GetDeviceStatus(ctx context.Context, id string) *DeviceStatus {
	var resp DeviceStatus
	if err := c.get(ctx, "/devices/"+id+"/status", &resp); err != nil {
		c.logger.Error("failed to get device status", "device_id", id, "error", err)
		return nil
	}
	return &resp
}

// SendCommand posts a command batch to a device. Unlike the read operations,
// failures propagate to the caller: a command that silently fails must not be
// reported as success. The raw API response is returned for rendering.
func (c *Client) SendCommand(ctx context.Context, id string, commands []Command) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.post(ctx, "/devices/"+id+"/commands", commandRequest{Commands: commands}, &resp); err != nil {
		c.logger.Error("failed to send command", "device_id", id, "error", err)
		return nil, err
	}
	return resp, nil
}

// Ping verifies the API is reachable with the configured token. It queries
// the devices collection and, unlike ListDevices, propagates the failure.
func (c *Client) Ping(ctx context.Context) error {
	var resp DevicesResponse
	return c.get(ctx, "/devices", &resp)
}

// FilterTVDevices returns the devices that qualify as TV-like: any capability
// of the first component intersects {switch, audioVolume, mediaInputSource,
// tvChannel}. Only components[0] is inspected; devices whose TV capabilities
// live in a secondary component are not detected.
func FilterTVDevices(devices []Device) []Device {
	var tvs []Device
	for _, device := range devices {
		if len(device.Components) == 0 {
			continue
		}
		for _, capability := range device.Components[0].Capabilities {
			if tvCapabilities[capability.ID] {
				tvs = append(tvs, device)
				break
			}
		}
	}
	return tvs
}

// get performs a GET request and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post performs a POST request with a JSON body and decodes the JSON response.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do performs an HTTP request with the fixed auth and content-type headers.
func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
