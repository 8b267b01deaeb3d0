package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rmrfslashbin/smartthings-mcp/internal/client"
)

var (
	devicesToken  string
	devicesFormat string
	devicesStatus bool
)

// deviceReport is the structured output of the devices command.
type deviceReport struct {
	Devices   []client.Device `json:"devices" yaml:"devices"`
	TVDevices []client.Device `json:"tv_devices" yaml:"tv_devices"`
}

// devicesCmd verifies the SmartThings connection and lists devices.
// Useful for finding device IDs before wiring up an MCP client.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List SmartThings devices and verify the connection",
	Long: `Connect to the SmartThings API, list all registered devices, and highlight
the TV-like ones. Use this to verify your access token and to find the
device IDs needed by the MCP tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		if err := godotenv.Load(); err == nil {
			logger.Debug("loaded .env file")
		}

		token := devicesToken
		if token == "" {
			token = viper.GetString("api.token")
		}
		if token == "" {
			return fmt.Errorf("SMARTTHINGS_ACCESS_TOKEN is required")
		}

		apiClient := client.New(token, logger)

		if err := apiClient.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("failed to connect to SmartThings: %w", err)
		}

		devices := apiClient.ListDevices(cmd.Context())
		tvs := client.FilterTVDevices(devices)
		if devices == nil {
			devices = []client.Device{}
		}
		if tvs == nil {
			tvs = []client.Device{}
		}

		switch devicesFormat {
		case "json":
			report := deviceReport{Devices: devices, TVDevices: tvs}
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}
			fmt.Println(string(data))
			return nil
		case "yaml":
			report := deviceReport{Devices: devices, TVDevices: tvs}
			data, err := yaml.Marshal(report)
			if err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}
			fmt.Print(string(data))
			return nil
		case "text":
			// fallthrough to the human-readable listing below
		default:
			return fmt.Errorf("invalid format: %s (must be text, json, or yaml)", devicesFormat)
		}

		fmt.Printf("Connected to SmartThings. Found %d device(s).\n\n", len(devices))
		if len(devices) == 0 {
			fmt.Println("No devices found. Make sure your devices are added to the SmartThings app.")
			return nil
		}

		fmt.Println("All devices:")
		for i, device := range devices {
			fmt.Printf("%d. %s\n", i+1, deviceLabel(device))
			fmt.Printf("   ID: %s\n", device.DeviceID)
			if device.DeviceTypeName != "" {
				fmt.Printf("   Type: %s\n", device.DeviceTypeName)
			}
			if caps := capabilitySummary(device); caps != "" {
				fmt.Printf("   Capabilities: %s\n", caps)
			}
		}

		fmt.Printf("\nTV devices: %d\n", len(tvs))
		for i, tv := range tvs {
			fmt.Printf("%d. %s (ID: %s)\n", i+1, deviceLabel(tv), tv.DeviceID)
			if devicesStatus {
				printTVStatus(cmd, apiClient, tv.DeviceID)
			}
		}

		return nil
	},
}

// deviceLabel prefers the user-assigned label over the generic device name.
func deviceLabel(device client.Device) string {
	if device.Label != "" {
		return device.Label
	}
	if device.Name != "" {
		return device.Name
	}
	return "Unknown"
}

// capabilitySummary renders up to five capability IDs of the first component.
func capabilitySummary(device client.Device) string {
	if len(device.Components) == 0 {
		return ""
	}
	caps := device.Components[0].Capabilities
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, c.ID)
	}
	if len(names) > 5 {
		return fmt.Sprintf("%s ... and %d more", strings.Join(names[:5], ", "), len(names)-5)
	}
	return strings.Join(names, ", ")
}

// printTVStatus fetches and prints power/volume/mute for a TV's main component.
func printTVStatus(cmd *cobra.Command, apiClient *client.Client, deviceID string) {
	status := apiClient.GetDeviceStatus(cmd.Context(), deviceID)
	if status == nil {
		fmt.Println("   Could not retrieve device status")
		return
	}

	main, ok := status.Components["main"]
	if !ok {
		fmt.Println("   No main component in status")
		return
	}

	if sw, ok := main["switch"]; ok {
		if attr, ok := sw["switch"]; ok {
			fmt.Printf("   Power: %v\n", attr.Value)
		}
	}
	if vol, ok := main["audioVolume"]; ok {
		volume := "unknown"
		mute := "unknown"
		if attr, ok := vol["volume"]; ok {
			volume = fmt.Sprint(attr.Value)
		}
		if attr, ok := vol["mute"]; ok {
			mute = fmt.Sprint(attr.Value)
		}
		fmt.Printf("   Volume: %s, Muted: %s\n", volume, mute)
	}
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().StringVar(&devicesToken, "token", "", "SmartThings personal access token")
	devicesCmd.Flags().StringVar(&devicesFormat, "format", "text", "output format (text, json, yaml)")
	devicesCmd.Flags().BoolVar(&devicesStatus, "status", false, "fetch power/volume status for each TV")
}
