package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rmrfslashbin/smartthings-mcp/internal/client"
	"github.com/rmrfslashbin/smartthings-mcp/internal/db"
)

// decodeArgs unmarshals the argument map into a typed struct.
func decodeArgs(args map[string]interface{}, target interface{}) error {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}
	if err := json.Unmarshal(argsJSON, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// jsonResult renders a value as an indented JSON text content item.
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// handleListDevices handles the list_devices tool.
func (s *Server) handleListDevices(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	devices := s.client.ListDevices(ctx)
	if devices == nil {
		devices = []client.Device{}
	}
	return jsonResult(devices)
}

// handleListTVDevices handles the list_tv_devices tool.
func (s *Server) handleListTVDevices(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error) {
	tvs := s.client.ListTVDevices(ctx)
	if tvs == nil {
		tvs = []client.Device{}
	}
	return jsonResult(tvs)
}

// handleGetDeviceInfo handles the get_device_info tool.
func (s *Server) handleGetDeviceInfo(ctx context.Context, rawArgs map[string]interface{}) (*mcp.CallToolResult, error) {
	var args struct {
		DeviceID string `json:"device_id"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}
	if args.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}

	device := s.client.GetDevice(ctx, args.DeviceID)
	if device == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Device %s not found", args.DeviceID)), nil
	}
	return jsonResult(device)
}

// handleGetDeviceStatus handles the get_device_status tool.
func (s *Server) handleGetDeviceStatus(ctx context.Context, rawArgs map[string]interface{}) (*mcp.CallToolResult, error) {
	var args struct {
		DeviceID string `json:"device_id"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}
	if args.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}

	status := s.client.GetDeviceStatus(ctx, args.DeviceID)
	if status == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Could not get status for device %s", args.DeviceID)), nil
	}
	return jsonResult(status)
}

// handleTurnTVOnOff handles the turn_tv_on_off tool.
func (s *Server) handleTurnTVOnOff(ctx context.Context, rawArgs map[string]interface{}) (*mcp.CallToolResult, error) {
	var args struct {
		DeviceID string `json:"device_id"`
		Action   string `json:"action"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}
	if args.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	if args.Action != "on" && args.Action != "off" {
		return nil, fmt.Errorf("invalid action %q (must be \"on\" or \"off\")", args.Action)
	}

	result, err := s.sendCommand(ctx, args.DeviceID, client.Command{
		Component:  "main",
		Capability: "switch",
		Command:    args.Action,
	})
	if err != nil {
		return nil, err
	}
	return commandResult(fmt.Sprintf("TV turned %s.", args.Action), result)
}

// handleChangeTVVolume handles the change_tv_volume tool.
func (s *Server) handleChangeTVVolume(ctx context.Context, rawArgs map[string]interface{}) (*mcp.CallToolResult, error) {
	var args struct {
		DeviceID string `json:"device_id"`
		Volume   *int   `json:"volume"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}
	if args.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	if args.Volume == nil {
		return nil, fmt.Errorf("volume is required")
	}
	// Enforce the declared schema bounds before any command is built.
	if *args.Volume < 0 || *args.Volume > 100 {
		return nil, fmt.Errorf("volume %d is out of range (0-100)", *args.Volume)
	}

	result, err := s.sendCommand(ctx, args.DeviceID, client.Command{
		Component:  "main",
		Capability: "audioVolume",
		Command:    "setVolume",
		Arguments:  []interface{}{*args.Volume},
	})
	if err != nil {
		return nil, err
	}
	return commandResult(fmt.Sprintf("Volume set to %d.", *args.Volume), result)
}

// handleMuteTV handles the mute_tv tool.
func (s *Server) handleMuteTV(ctx context.Context, rawArgs map[string]interface{}) (*mcp.CallToolResult, error) {
	var args struct {
		DeviceID string `json:"device_id"`
		Mute     *bool  `json:"mute"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}
	if args.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	if args.Mute == nil {
		return nil, fmt.Errorf("mute is required")
	}

	verb := "unmute"
	confirmation := "TV unmuted."
	if *args.Mute {
		verb = "mute"
		confirmation = "TV muted."
	}

	result, err := s.sendCommand(ctx, args.DeviceID, client.Command{
		Component:  "main",
		Capability: "audioVolume",
		Command:    verb,
	})
	if err != nil {
		return nil, err
	}
	return commandResult(confirmation, result)
}

// handleChangeTVChannel handles the change_tv_channel tool.
func (s *Server) handleChangeTVChannel(ctx context.Context, rawArgs map[string]interface{}) (*mcp.CallToolResult, error) {
	var args struct {
		DeviceID string `json:"device_id"`
		Channel  string `json:"channel"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}
	if args.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	if args.Channel == "" {
		return nil, fmt.Errorf("channel is required")
	}

	result, err := s.sendCommand(ctx, args.DeviceID, client.Command{
		Component:  "main",
		Capability: "tvChannel",
		Command:    "setTvChannel",
		Arguments:  []interface{}{args.Channel},
	})
	if err != nil {
		return nil, err
	}
	return commandResult(fmt.Sprintf("Channel changed to %s.", args.Channel), result)
}

// handleChangeTVInput handles the change_tv_input tool.
func (s *Server) handleChangeTVInput(ctx context.Context, rawArgs map[string]interface{}) (*mcp.CallToolResult, error) {
	var args struct {
		DeviceID    string `json:"device_id"`
		InputSource string `json:"input_source"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}
	if args.DeviceID == "" {
		return nil, fmt.Errorf("device_id is required")
	}
	if args.InputSource == "" {
		return nil, fmt.Errorf("input_source is required")
	}

	result, err := s.sendCommand(ctx, args.DeviceID, client.Command{
		Component:  "main",
		Capability: "mediaInputSource",
		Command:    "setInputSource",
		Arguments:  []interface{}{args.InputSource},
	})
	if err != nil {
		return nil, err
	}
	return commandResult(fmt.Sprintf("Input changed to %s.", args.InputSource), result)
}

// handleGetCommandHistory handles the get_command_history tool.
func (s *Server) handleGetCommandHistory(ctx context.Context, rawArgs map[string]interface{}) (*mcp.CallToolResult, error) {
	if s.history == nil {
		return mcp.NewToolResultText("Command history is not enabled. Start the server with --history-db to record commands."), nil
	}

	var args struct {
		DeviceID string `json:"device_id"`
		Limit    *int   `json:"limit"`
	}
	if err := decodeArgs(rawArgs, &args); err != nil {
		return nil, err
	}

	limit := 20
	if args.Limit != nil && *args.Limit > 0 {
		limit = *args.Limit
	}

	entries, err := db.ListHistory(s.history, args.DeviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read command history: %w", err)
	}

	if len(entries) == 0 {
		return mcp.NewToolResultText("No commands recorded yet"), nil
	}

	var sb strings.Builder
	sb.WriteString("# Command History\n\n")
	sb.WriteString(fmt.Sprintf("Showing %d entr%s\n\n", len(entries), iesOrY(len(entries))))
	sb.WriteString("| Time | Device | Capability | Command | Arguments | Result |\n")
	sb.WriteString("|------|--------|------------|---------|-----------|--------|\n")
	for _, e := range entries {
		outcome := "ok"
		if !e.Success {
			outcome = e.Error
		}
		arguments := e.Arguments
		if arguments == "" {
			arguments = "-"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.DeviceID, e.Capability, e.Command, arguments, outcome))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// sendCommand sends one command to a device and records it in the history
// store when one is configured. Send failures propagate; recording failures
// are logged only.
func (s *Server) sendCommand(ctx context.Context, deviceID string, cmd client.Command) (json.RawMessage, error) {
	result, err := s.client.SendCommand(ctx, deviceID, []client.Command{cmd})

	if s.history != nil {
		entry := db.CommandEntry{
			DeviceID:   deviceID,
			Component:  cmd.Component,
			Capability: cmd.Capability,
			Command:    cmd.Command,
			Success:    err == nil,
		}
		if len(cmd.Arguments) > 0 {
			if argsJSON, marshalErr := json.Marshal(cmd.Arguments); marshalErr == nil {
				entry.Arguments = string(argsJSON)
			}
		}
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.Response = string(result)
		}
		if recordErr := db.RecordCommand(s.history, entry); recordErr != nil {
			s.logger.Warn("failed to record command history", "device_id", deviceID, "error", recordErr)
		}
	}

	return result, err
}

// commandResult renders a confirmation string alongside the raw API response.
func commandResult(confirmation string, raw json.RawMessage) (*mcp.CallToolResult, error) {
	var buf strings.Builder
	buf.WriteString(confirmation)
	buf.WriteString(" Result: ")

	var indented strings.Builder
	var v interface{}
	if err := json.Unmarshal(raw, &v); err == nil {
		if data, err := json.MarshalIndent(v, "", "  "); err == nil {
			indented.Write(data)
		}
	}
	if indented.Len() > 0 {
		buf.WriteString(indented.String())
	} else {
		buf.Write(raw)
	}

	return mcp.NewToolResultText(buf.String()), nil
}

// iesOrY returns the plural suffix for "entry".
func iesOrY(count int) string {
	if count == 1 {
		return "y"
	}
	return "ies"
}
