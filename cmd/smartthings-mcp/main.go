// smartthings-mcp is an MCP server for the Samsung SmartThings device cloud.
//
// It exposes device listing, status queries, and TV remote-control commands
// (power, volume, mute, channel, input source) through the Model Context
// Protocol (MCP).
package main

import (
	"fmt"
	"os"

	"github.com/rmrfslashbin/smartthings-mcp/internal/cmd"
)

// Build information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	// Set version info for commands to use
	cmd.SetVersionInfo(version, gitCommit, buildTime)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
