package smartthings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartthings-community/smartthings-mqtt-bridge/internal/infrastructure/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.SmartThingsConfig{
		Token:          "test-token",
		APIBase:        srv.URL,
		TimeoutSeconds: 5,
	})
}

func TestListDevices(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices" {
			t.Errorf("path = %q, want /devices", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		_, _ = w.Write([]byte(`{"items":[
			{"deviceId":"dev-1","label":"Hall Light","name":"switch-1"},
			{"deviceId":"dev-2","name":"sensor-2"}
		]}`))
	})

	devices, err := client.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("ListDevices() returned %d devices, want 2", len(devices))
	}
	if devices[0].DeviceID != "dev-1" || devices[0].Label != "Hall Light" {
		t.Errorf("unexpected first device: %+v", devices[0])
	}
}

func TestDeviceStatus(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/devices/dev-1/status" {
			t.Errorf("path = %q, want /devices/dev-1/status", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"components":{"main":{"switch":{"switch":{"value":"on"}}}}}`))
	})

	status, err := client.DeviceStatus(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("DeviceStatus() error = %v", err)
	}
	if _, ok := status["components"]; !ok {
		t.Errorf("DeviceStatus() missing components key: %v", status)
	}
}

func TestSendCommands(t *testing.T) {
	var received CommandEnvelope
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/devices/dev-1/commands" {
			t.Errorf("path = %q, want /devices/dev-1/commands", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	envelope := CommandEnvelope{Commands: []Command{
		{Component: "main", Capability: "switch", Command: "on"},
	}}
	if err := client.SendCommands(context.Background(), "dev-1", envelope); err != nil {
		t.Fatalf("SendCommands() error = %v", err)
	}
	if len(received.Commands) != 1 || received.Commands[0].Command != "on" {
		t.Errorf("server received %+v, want the on command", received)
	}
}

func TestAPIErrorCarriesStatusAndBody(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	})

	_, err := client.ListDevices(context.Background())
	if err == nil {
		t.Fatal("ListDevices() error = nil, want APIError")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Status = %d, want 401", apiErr.Status)
	}
	if apiErr.Body != `{"error":"invalid token"}` {
		t.Errorf("Body = %q, want error body", apiErr.Body)
	}
}

func TestDeviceDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		device Device
		want   string
	}{
		{"label wins", Device{DeviceID: "d1", Label: "Hall", Name: "sw"}, "Hall"},
		{"name fallback", Device{DeviceID: "d1", Name: "sw"}, "sw"},
		{"id fallback", Device{DeviceID: "d1"}, "d1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
