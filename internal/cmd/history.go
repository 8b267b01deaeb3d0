package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rmrfslashbin/smartthings-mcp/internal/db"
)

var (
	historyDevice string
	historyLimit  int
)

// historyCmd prints recorded device commands from the history store.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded device commands",
	Long: `Print the most recent commands sent to devices, newest first.

Requires a command-history database, configured the same way as for serve
(--history-db flag or SMARTTHINGS_HISTORY_DB).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("history-db")
		if path == "" {
			path = viper.GetString("history.path")
		}
		if path == "" {
			return fmt.Errorf("no history database configured (set --history-db or SMARTTHINGS_HISTORY_DB)")
		}

		database, err := db.InitDatabase(path)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer database.Close()

		entries, err := db.ListHistory(database, historyDevice, historyLimit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No commands recorded yet")
			return nil
		}

		for _, e := range entries {
			outcome := "ok"
			if !e.Success {
				outcome = "FAILED: " + e.Error
			}
			line := fmt.Sprintf("%s  %s  %s.%s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.DeviceID, e.Capability, e.Command)
			if e.Arguments != "" {
				line += " " + e.Arguments
			}
			fmt.Printf("%s  [%s]\n", line, outcome)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDevice, "device", "", "filter history to a single device ID")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum entries to show")
	historyCmd.Flags().String("history-db", "", "path to the command-history SQLite file")
}
