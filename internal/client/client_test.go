package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew(t *testing.T) {
	c := New("test-token", testLogger())

	if c.baseURL != DefaultBaseURL {
		t.Errorf("New() baseURL = %s, want %s", c.baseURL, DefaultBaseURL)
	}
	if c.token != "test-token" {
		t.Errorf("New() token = %s, want test-token", c.token)
	}
}

func TestNewWithBaseURL(t *testing.T) {
	c := NewWithBaseURL("http://example.com", "test-token", testLogger())

	if c.baseURL != "http://example.com" {
		t.Errorf("NewWithBaseURL() baseURL = %s, want http://example.com", c.baseURL)
	}
}

func TestListDevices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %s, want Bearer test-token", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %s, want application/json", got)
		}

		json.NewEncoder(w).Encode(DevicesResponse{
			Items: []Device{
				{DeviceID: "tv-1", Name: "Samsung TV"},
				{DeviceID: "bulb-1", Name: "Hue Bulb"},
			},
		})
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	devices := c.ListDevices(context.Background())

	if len(devices) != 2 {
		t.Errorf("ListDevices() count = %d, want 2", len(devices))
	}
	if devices[0].DeviceID != "tv-1" {
		t.Errorf("ListDevices() first device = %s, want tv-1", devices[0].DeviceID)
	}
}

func TestListDevices_AbsorbsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	devices := c.ListDevices(context.Background())

	if len(devices) != 0 {
		t.Errorf("ListDevices() on API error = %d devices, want 0", len(devices))
	}
}

func TestGetDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices/tv-1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Device{DeviceID: "tv-1", Name: "Samsung TV"})
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	device := c.GetDevice(context.Background(), "tv-1")

	if device == nil {
		t.Fatal("GetDevice() returned nil")
	}
	if device.DeviceID != "tv-1" {
		t.Errorf("GetDevice() ID = %s, want tv-1", device.DeviceID)
	}
}

func TestGetDevice_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "NotFoundError", "message": "device not found"},
		})
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	device := c.GetDevice(context.Background(), "nope")

	if device != nil {
		t.Errorf("GetDevice() on 404 = %+v, want nil", device)
	}
}

func TestGetDeviceStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices/tv-1/status" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"components":{"main":{"switch":{"switch":{"value":"on"}},"audioVolume":{"volume":{"value":15,"unit":"%"}}}}}`))
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	status := c.GetDeviceStatus(context.Background(), "tv-1")

	if status == nil {
		t.Fatal("GetDeviceStatus() returned nil")
	}
	power := status.Components["main"]["switch"]["switch"].Value
	if power != "on" {
		t.Errorf("GetDeviceStatus() power = %v, want on", power)
	}
}

func TestGetDeviceStatus_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	if status := c.GetDeviceStatus(context.Background(), "tv-1"); status != nil {
		t.Errorf("GetDeviceStatus() on API error = %+v, want nil", status)
	}
}

func TestSendCommand(t *testing.T) {
	var gotBody map[string][]map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/devices/tv-1/commands" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.Write([]byte(`{"results":[{"id":"abc","status":"ACCEPTED"}]}`))
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	result, err := c.SendCommand(context.Background(), "tv-1", []Command{
		{Component: "main", Capability: "switch", Command: "on"},
	})

	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}
	if len(result) == 0 {
		t.Error("SendCommand() returned empty response")
	}

	commands := gotBody["commands"]
	if len(commands) != 1 {
		t.Fatalf("posted %d commands, want 1", len(commands))
	}
	cmd := commands[0]
	if cmd["component"] != "main" || cmd["capability"] != "switch" || cmd["command"] != "on" {
		t.Errorf("posted command = %v", cmd)
	}
	if _, ok := cmd["arguments"]; ok {
		t.Error("arguments should be omitted for commands without arguments")
	}
}

func TestSendCommand_WithArguments(t *testing.T) {
	var gotBody map[string][]map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	_, err := c.SendCommand(context.Background(), "tv-1", []Command{
		{Component: "main", Capability: "audioVolume", Command: "setVolume", Arguments: []interface{}{42}},
	})
	if err != nil {
		t.Fatalf("SendCommand() error = %v", err)
	}

	args, ok := gotBody["commands"][0]["arguments"].([]interface{})
	if !ok || len(args) != 1 {
		t.Fatalf("posted arguments = %v, want [42]", gotBody["commands"][0]["arguments"])
	}
	if args[0] != float64(42) {
		t.Errorf("posted argument = %v, want 42", args[0])
	}
}

func TestSendCommand_PropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "UnexpectedError", "message": "device offline"},
		})
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	_, err := c.SendCommand(context.Background(), "tv-1", []Command{
		{Component: "main", Capability: "switch", Command: "on"},
	})

	if err == nil {
		t.Fatal("SendCommand() should return error on API error")
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(DevicesResponse{})
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "test-token", testLogger())
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestPing_PropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	c := NewWithBaseURL(server.URL, "bad-token", testLogger())
	if err := c.Ping(context.Background()); err == nil {
		t.Error("Ping() should return error, unlike ListDevices")
	}
}

func TestFilterTVDevices(t *testing.T) {
	tests := []struct {
		name   string
		device Device
		wantTV bool
	}{
		{
			name: "switch capability",
			device: Device{DeviceID: "d1", Components: []Component{
				{ID: "main", Capabilities: []CapabilityRef{{ID: "switch"}}},
			}},
			wantTV: true,
		},
		{
			name: "audioVolume capability",
			device: Device{DeviceID: "d2", Components: []Component{
				{ID: "main", Capabilities: []CapabilityRef{{ID: "refresh"}, {ID: "audioVolume"}}},
			}},
			wantTV: true,
		},
		{
			name: "tvChannel capability",
			device: Device{DeviceID: "d3", Components: []Component{
				{ID: "main", Capabilities: []CapabilityRef{{ID: "tvChannel"}}},
			}},
			wantTV: true,
		},
		{
			name: "mediaInputSource capability",
			device: Device{DeviceID: "d4", Components: []Component{
				{ID: "main", Capabilities: []CapabilityRef{{ID: "mediaInputSource"}}},
			}},
			wantTV: true,
		},
		{
			name: "no TV capabilities",
			device: Device{DeviceID: "d5", Components: []Component{
				{ID: "main", Capabilities: []CapabilityRef{{ID: "temperatureMeasurement"}, {ID: "battery"}}},
			}},
			wantTV: false,
		},
		{
			name: "TV capability only in second component",
			device: Device{DeviceID: "d6", Components: []Component{
				{ID: "main", Capabilities: []CapabilityRef{{ID: "refresh"}}},
				{ID: "screen", Capabilities: []CapabilityRef{{ID: "switch"}}},
			}},
			wantTV: false,
		},
		{
			name:   "no components",
			device: Device{DeviceID: "d7"},
			wantTV: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterTVDevices([]Device{tt.device})
			if tv := len(got) > 0; tv != tt.wantTV {
				t.Errorf("FilterTVDevices() = %v, want %v", tv, tt.wantTV)
			}
		})
	}
}

func TestFilterTVDevices_KeepsOrder(t *testing.T) {
	devices := []Device{
		{DeviceID: "tv-1", Components: []Component{{ID: "main", Capabilities: []CapabilityRef{{ID: "switch"}}}}},
		{DeviceID: "sensor", Components: []Component{{ID: "main", Capabilities: []CapabilityRef{{ID: "battery"}}}}},
		{DeviceID: "tv-2", Components: []Component{{ID: "main", Capabilities: []CapabilityRef{{ID: "tvChannel"}}}}},
	}

	got := FilterTVDevices(devices)
	if len(got) != 2 {
		t.Fatalf("FilterTVDevices() count = %d, want 2", len(got))
	}
	if got[0].DeviceID != "tv-1" || got[1].DeviceID != "tv-2" {
		t.Errorf("FilterTVDevices() order = %s, %s", got[0].DeviceID, got[1].DeviceID)
	}
}
