// Package mcp provides the MCP server implementation.
package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rmrfslashbin/smartthings-mcp/internal/client"
)

// uninitializedMessage is returned for every tool call made before the
// SmartThings client has been constructed.
const uninitializedMessage = "SmartThings client not initialized. Please check your access token."

// toolHandler executes one tool against the already-extracted argument map.
type toolHandler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// toolDef binds a tool's advertised schema to its handler so the catalog has
// a single source of truth.
type toolDef struct {
	tool    mcp.Tool
	handler toolHandler
}

// Server wraps the MCP server with the SmartThings API client.
type Server struct {
	mcp       *server.MCPServer
	client    *client.Client
	history   *sql.DB
	logger    *slog.Logger
	version   string
	gitCommit string
	buildTime string
	catalog   map[string]toolDef
}

// NewServer creates a new MCP server instance. The client is a constructor
// dependency; passing nil leaves the server in its uninitialized state where
// every tool call short-circuits to a fixed error message. history may be nil
// to disable command recording.
func NewServer(apiClient *client.Client, history *sql.DB, version, gitCommit, buildTime string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		client:    apiClient,
		history:   history,
		logger:    logger,
		version:   version,
		gitCommit: gitCommit,
		buildTime: buildTime,
	}

	// Create MCP server
	s.mcp = server.NewMCPServer(
		"smartthings-mcp",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)

	// Register tools
	s.registerTools()

	// Register resources
	s.registerResources()

	return s
}

// registerTools builds the tool catalog and registers it with the MCP server.
// All registration goes through the catalog table so the advertised schema and
// the dispatched handler cannot drift apart.
func (s *Server) registerTools() {
	defs := []toolDef{
		{
			tool: mcp.NewTool("list_devices",
				mcp.WithDescription("List all SmartThings devices registered to the account. Returns the raw device records including components and capabilities as JSON."),
			),
			handler: s.handleListDevices,
		},
		{
			tool: mcp.NewTool("list_tv_devices",
				mcp.WithDescription("List all TV devices in SmartThings. A device counts as a TV when its main component exposes any of the switch, audioVolume, mediaInputSource, or tvChannel capabilities."),
			),
			handler: s.handleListTVDevices,
		},
		{
			tool: mcp.NewTool("get_device_info",
				mcp.WithDescription("Get detailed information about a specific device including its components and capabilities."),
				mcp.WithString("device_id",
					mcp.Description("The device ID"),
					mcp.Required(),
				),
			),
			handler: s.handleGetDeviceInfo,
		},
		{
			tool: mcp.NewTool("get_device_status",
				mcp.WithDescription("Get the current status of a device: every attribute value of every capability, grouped by component."),
				mcp.WithString("device_id",
					mcp.Description("The device ID"),
					mcp.Required(),
				),
			),
			handler: s.handleGetDeviceStatus,
		},
		{
			tool: mcp.NewTool("turn_tv_on_off",
				mcp.WithDescription("Turn a Samsung TV on or off."),
				mcp.WithString("device_id",
					mcp.Description("The TV device ID"),
					mcp.Required(),
				),
				mcp.WithString("action",
					mcp.Description("Turn the TV on or off"),
					mcp.Enum("on", "off"),
					mcp.Required(),
				),
			),
			handler: s.handleTurnTVOnOff,
		},
		{
			tool: mcp.NewTool("change_tv_volume",
				mcp.WithDescription("Change a Samsung TV's volume level."),
				mcp.WithString("device_id",
					mcp.Description("The TV device ID"),
					mcp.Required(),
				),
				mcp.WithNumber("volume",
					mcp.Description("Volume level (0-100)"),
					mcp.Min(0),
					mcp.Max(100),
					mcp.Required(),
				),
			),
			handler: s.handleChangeTVVolume,
		},
		{
			tool: mcp.NewTool("mute_tv",
				mcp.WithDescription("Mute or unmute a Samsung TV."),
				mcp.WithString("device_id",
					mcp.Description("The TV device ID"),
					mcp.Required(),
				),
				mcp.WithBoolean("mute",
					mcp.Description("True to mute, false to unmute"),
					mcp.Required(),
				),
			),
			handler: s.handleMuteTV,
		},
		{
			tool: mcp.NewTool("change_tv_channel",
				mcp.WithDescription("Change a Samsung TV's channel."),
				mcp.WithString("device_id",
					mcp.Description("The TV device ID"),
					mcp.Required(),
				),
				mcp.WithString("channel",
					mcp.Description("Channel number or name"),
					mcp.Required(),
				),
			),
			handler: s.handleChangeTVChannel,
		},
		{
			tool: mcp.NewTool("change_tv_input",
				mcp.WithDescription("Change a Samsung TV's input source."),
				mcp.WithString("device_id",
					mcp.Description("The TV device ID"),
					mcp.Required(),
				),
				mcp.WithString("input_source",
					mcp.Description("Input source (e.g., 'HDMI1', 'HDMI2', 'USB')"),
					mcp.Required(),
				),
			),
			handler: s.handleChangeTVInput,
		},
		{
			tool: mcp.NewTool("get_command_history",
				mcp.WithDescription("Show recently sent device commands from the local command-history store. Only available when the server was started with a history database."),
				mcp.WithString("device_id",
					mcp.Description("Filter history to a single device"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Maximum entries to return (default: 20)"),
				),
			),
			handler: s.handleGetCommandHistory,
		},
	}

	s.catalog = make(map[string]toolDef, len(defs))
	for _, def := range defs {
		s.catalog[def.tool.Name] = def
		s.mcp.AddTool(def.tool, s.dispatcher(def.tool.Name))
	}
}

// dispatcher adapts a catalog entry to the mcp-go handler signature.
func (s *Server) dispatcher(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.CallTool(ctx, name, request.GetArguments()), nil
	}
}

// CallTool resolves a tool name through the catalog and executes it. Every
// failure mode is rendered as content: a nil client yields the fixed
// uninitialized message, an unknown name an informational message, and any
// handler error a single "Error executing <tool>" error-content item. No
// error ever crosses the protocol boundary unrendered.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) *mcp.CallToolResult {
	if s.client == nil {
		return mcp.NewToolResultText(uninitializedMessage)
	}

	def, ok := s.catalog[name]
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("Unknown tool: %s", name))
	}

	s.logger.Debug("dispatching tool call", "tool", name)

	result, err := def.handler(ctx, args)
	if err != nil {
		s.logger.Error("tool call failed", "tool", name, "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("Error executing %s: %v", name, err))
	}
	return result
}

// registerResources registers MCP resource templates.
func (s *Server) registerResources() {
	// Resource template: device record
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"smartthings://device/{device_id}",
			"Device record with components and capabilities",
		),
		s.handleDeviceResource,
	)

	// Resource template: device status
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"smartthings://device/{device_id}/status",
			"Current attribute values for every device capability",
		),
		s.handleStatusResource,
	)
}

// Serve starts the MCP server with stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server with stdio transport")
	return server.ServeStdio(s.mcp)
}
