package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// handleDeviceResource handles reading a device record.
func (s *Server) handleDeviceResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	// Extract device_id from URI: smartthings://device/{device_id}
	uri := request.Params.URI
	parts := strings.Split(uri, "/")
	if len(parts) < 3 {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}
	deviceID := parts[len(parts)-1]

	if s.client == nil {
		return nil, fmt.Errorf("client not initialized")
	}

	device := s.client.GetDevice(ctx, deviceID)
	if device == nil {
		return nil, fmt.Errorf("device not found: %s", deviceID)
	}

	data, err := json.MarshalIndent(device, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render device: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// handleStatusResource handles reading a device's current status.
func (s *Server) handleStatusResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	// Extract device_id from URI: smartthings://device/{device_id}/status
	uri := request.Params.URI
	parts := strings.Split(uri, "/")
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid resource URI: %s", uri)
	}
	deviceID := parts[len(parts)-2]

	if s.client == nil {
		return nil, fmt.Errorf("client not initialized")
	}

	status := s.client.GetDeviceStatus(ctx, deviceID)
	if status == nil {
		return nil, fmt.Errorf("status not available for device: %s", deviceID)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
