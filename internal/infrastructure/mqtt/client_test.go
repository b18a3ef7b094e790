package mqtt

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
)

// testConfig returns a valid MQTT configuration for testing.
// Broker tests require a running Mosquitto broker at 127.0.0.1:1883.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "hostmon-test",
		},
		QoS:         1,
		TopicPrefix: "hostmon-test",
	}
}

// skipIfNoBroker skips the test when nothing listens on the test broker port.
func skipIfNoBroker(t *testing.T) {
	t.Helper()
	conn, err := net.DialTimeout("tcp", "127.0.0.1:1883", 200*time.Millisecond)
	if err != nil {
		t.Skip("MQTT broker not available, skipping")
	}
	conn.Close()
}

// openAndWait opens a session and waits for the connect callback.
func openAndWait(t *testing.T, client *Client) {
	t.Helper()
	connected := make(chan struct{}, 1)
	client.SetOnConnect(func() {
		select {
		case connected <- struct{}{}:
		default:
		}
	})
	if err := client.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for connect callback")
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestOpen(t *testing.T) {
	skipIfNoBroker(t)

	client := New(testConfig(), Options{RetryInterval: time.Second})
	openAndWait(t, client)
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}
}

func TestOpen_UnreachableBrokerNeverConnects(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999

	client := New(cfg, Options{RetryInterval: 100 * time.Millisecond})
	connected := make(chan struct{}, 1)
	client.SetOnConnect(func() { connected <- struct{}{} })

	if err := client.Open(); err != nil {
		t.Fatalf("Open() error = %v, want nil (connect is asynchronous)", err)
	}
	defer client.Close()

	select {
	case <-connected:
		t.Fatal("connect callback fired for unreachable broker")
	case <-time.After(300 * time.Millisecond):
	}

	if client.IsConnected() {
		t.Error("IsConnected() = true for unreachable broker")
	}
}

func TestClose(t *testing.T) {
	skipIfNoBroker(t)

	client := New(testConfig(), Options{StatusTopic: "hostmon-test/close/status"})
	openAndWait(t, client)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close(), want false")
	}
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}
}

func TestCloseNeverOpened(t *testing.T) {
	client := New(testConfig(), Options{})
	if err := client.Close(); err != nil {
		t.Errorf("Close() on unopened client error = %v, want nil", err)
	}
}

func TestStatusQoS(t *testing.T) {
	tests := []struct {
		qos  int
		want byte
	}{
		{qos: 0, want: 0},
		{qos: 2, want: 2},
		{qos: 7, want: 1},
	}
	for _, tt := range tests {
		cfg := testConfig()
		cfg.QoS = tt.qos
		if got := New(cfg, Options{}).statusQoS(); got != tt.want {
			t.Errorf("statusQoS() with qos %d = %d, want %d", tt.qos, got, tt.want)
		}
	}
}

func TestClientID_Generated(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = ""

	id := New(cfg, Options{}).ClientID()
	if !strings.HasPrefix(id, "hostmon-") || len(id) != len("hostmon-")+8 {
		t.Errorf("ClientID() = %q, want hostmon-<8 chars>", id)
	}
	if other := New(cfg, Options{}).ClientID(); other == id {
		t.Errorf("generated client IDs should differ, both %q", id)
	}
}

func TestClientID_Configured(t *testing.T) {
	if id := New(testConfig(), Options{}).ClientID(); id != "hostmon-test" {
		t.Errorf("ClientID() = %q, want hostmon-test", id)
	}
}

// =============================================================================
// HealthCheck Tests
// =============================================================================

func TestHealthCheckNotConnected(t *testing.T) {
	client := New(testConfig(), Options{})

	err := client.HealthCheck(context.Background())
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestHealthCheckCancelled(t *testing.T) {
	client := New(testConfig(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() expected error for cancelled context")
	}
}

func TestHealthCheck(t *testing.T) {
	skipIfNoBroker(t)

	client := New(testConfig(), Options{})
	openAndWait(t, client)
	defer client.Close()

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v, want nil", err)
	}
}

// =============================================================================
// Publish Tests
// =============================================================================

func TestPublish(t *testing.T) {
	skipIfNoBroker(t)

	client := New(testConfig(), Options{})
	openAndWait(t, client)
	defer client.Close()

	topics := Topics{Prefix: "hostmon-test", Host: "unit"}
	if err := client.Publish(topics.Value("cpu_load"), []byte("12.5"), 1, false); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
	if err := client.Publish(topics.Grouped(), []byte("1,2"), 1, false); err != nil {
		t.Errorf("Publish() error = %v", err)
	}
}

func TestPublishEmptyTopic(t *testing.T) {
	client := New(testConfig(), Options{})

	err := client.Publish("", []byte("test"), 1, false)
	if !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	client := New(testConfig(), Options{})

	err := client.Publish("test/topic", []byte("test"), 3, false)
	if !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishLargePayload(t *testing.T) {
	client := New(testConfig(), Options{})

	err := client.Publish("test/topic", make([]byte, maxPayloadSize+1), 1, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	client := New(testConfig(), Options{})

	err := client.Publish("test/topic", []byte("test"), 1, false)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestStaleCallbacksIgnored(t *testing.T) {
	client := New(testConfig(), Options{})

	called := false
	client.SetOnDisconnect(func(error) { called = true })
	client.SetOnConnect(func() { called = true })

	// No live session: any generation is stale.
	client.handleConnect(42)
	client.handleDisconnect(42, errors.New("gone"))

	if called {
		t.Error("callbacks fired for a stale session")
	}
	if client.IsConnectedState() {
		t.Error("stale connect changed connection state")
	}
}

// =============================================================================
// Options Tests
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Auth.Username = "monitor"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg, "id-1", 3*time.Second)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want ssl://127.0.0.1:1883", opts.Servers)
	}
	if opts.ClientID != "id-1" {
		t.Errorf("ClientID = %q, want id-1", opts.ClientID)
	}
	if opts.Username != "monitor" || opts.Password != "secret" {
		t.Error("credentials not passed through")
	}
	if opts.AutoReconnect {
		t.Error("AutoReconnect = true, want false")
	}
	if !opts.ConnectRetry || opts.ConnectRetryInterval != 3*time.Second {
		t.Errorf("ConnectRetry = %v interval %v, want true 3s", opts.ConnectRetry, opts.ConnectRetryInterval)
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig = nil with TLS enabled")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig(), "id", time.Second)
	configureLWT(opts, "hosts/pi4/status", 1)

	if !opts.WillEnabled || opts.WillTopic != "hosts/pi4/status" {
		t.Errorf("Will = %v %q, want enabled on hosts/pi4/status", opts.WillEnabled, opts.WillTopic)
	}
	if string(opts.WillPayload) != payloadOffline || !opts.WillRetained || opts.WillQos != 1 {
		t.Errorf("WillPayload = %q retained %v qos %d", opts.WillPayload, opts.WillRetained, opts.WillQos)
	}

	none := buildClientOptions(testConfig(), "id", time.Second)
	configureLWT(none, "", 1)
	if none.WillEnabled {
		t.Error("Will enabled with empty status topic")
	}
}

// =============================================================================
// Topics Tests
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := Topics{Prefix: "rpi-MQTT-monitor", Host: "pi4"}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Value", topics.Value("cpu_load"), "rpi-MQTT-monitor/pi4/cpu_load"},
		{"Grouped", topics.Grouped(), "rpi-MQTT-monitor/pi4"},
		{"Discovery", topics.Discovery("memory"), "homeassistant/sensor/rpi-MQTT-monitor/pi4_memory/config"},
		{"UniqueID", topics.UniqueID("swap"), "pi4_swap"},
		{"Status", topics.Status(), "rpi-MQTT-monitor/pi4/status"},
		{
			"Discovery custom prefix",
			Topics{Prefix: "p", Host: "h", DiscoveryPrefix: "ha"}.Discovery("voltage"),
			"ha/sensor/p/h_voltage/config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}
