package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmrfslashbin/smartthings-mcp/internal/client"
	"github.com/rmrfslashbin/smartthings-mcp/internal/db"
	"github.com/rmrfslashbin/smartthings-mcp/internal/mcp"
)

var (
	accessToken string
	historyPath string
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the MCP server and listen for requests via stdio.

The server connects to the SmartThings cloud API to query and command devices.

Environment Variables:
  SMARTTHINGS_ACCESS_TOKEN - SmartThings personal access token (required)
  SMARTTHINGS_HISTORY_DB   - Path to the command-history SQLite file (optional)
  SMARTTHINGS_LOG_LEVEL    - Log level (debug, info, warn, error)
  SMARTTHINGS_LOG_FORMAT   - Log format (json, text)
  SMARTTHINGS_LOG_OUTPUT   - Log output (stderr, /path/to/file, /path/to/dir/)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		// Pick up a local .env if present; real env always wins
		if err := godotenv.Load(); err == nil {
			logger.Debug("loaded .env file")
		}

		token := viper.GetString("api.token")
		if token == "" {
			return fmt.Errorf("SMARTTHINGS_ACCESS_TOKEN is required")
		}

		logger.Info("starting MCP server",
			"version", version,
			"commit", gitCommit,
		)

		// Create API client
		apiClient := client.New(token, logger)

		// Probe the API before serving anything. ListDevices absorbs
		// failures, so the probe uses Ping, which does not.
		if err := apiClient.Ping(cmd.Context()); err != nil {
			logger.Error("failed to connect to SmartThings", "error", err)
			return fmt.Errorf("failed to connect to SmartThings: %w", err)
		}

		devices := apiClient.ListDevices(cmd.Context())
		logger.Info("connected to SmartThings", "devices", len(devices))

		// Open the command-history store when configured
		var history *sql.DB
		if path := viper.GetString("history.path"); path != "" {
			var err error
			history, err = db.InitDatabase(path)
			if err != nil {
				return fmt.Errorf("failed to open history database: %w", err)
			}
			defer history.Close()
			logger.Info("command history enabled", "path", path)
		}

		// Create MCP server
		mcpServer := mcp.NewServer(apiClient, history, version, gitCommit, buildTime, logger)

		logger.Info("MCP server ready, listening on stdio")

		// Serve (blocks until shutdown)
		return mcpServer.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Serve-specific flags
	serveCmd.Flags().StringVar(&accessToken, "token", "", "SmartThings personal access token")
	serveCmd.Flags().StringVar(&historyPath, "history-db", "", "path to the command-history SQLite file")

	// Bind flags to viper
	viper.BindPFlag("api.token", serveCmd.Flags().Lookup("token"))
	viper.BindPFlag("history.path", serveCmd.Flags().Lookup("history-db"))

	// Bind documented environment variables
	viper.BindEnv("api.token", "SMARTTHINGS_ACCESS_TOKEN")
	viper.BindEnv("history.path", "SMARTTHINGS_HISTORY_DB")
}
