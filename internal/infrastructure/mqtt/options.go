package mqtt

import (
	"crypto/tls"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout bounds a single TCP/CONNECT handshake inside paho.
	defaultConnectTimeout = 10 * time.Second

	// defaultStatusTimeout bounds the offline status publish during Close.
	defaultStatusTimeout = 2 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12

	// Availability payloads on the status topic.
	payloadOnline  = "online"
	payloadOffline = "offline"
)

// clientID returns the configured client id or a generated one.
func clientID(cfg config.MQTTConfig) string {
	if cfg.Broker.ClientID != "" {
		return cfg.Broker.ClientID
	}
	return "hostmon-" + uuid.NewString()[:8]
}

// buildClientOptions creates paho MQTT options from config.
//
// Reconnection policy belongs to the caller: paho's auto-reconnect is
// disabled, and ConnectRetry keeps the initial CONNECT retrying every
// retryInterval until the caller gives up and calls Close.
func buildClientOptions(cfg config.MQTTConfig, id string, retryInterval time.Duration) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	scheme := "tcp"
	if cfg.Broker.TLS {
		scheme = "ssl"
	}
	opts.AddBroker(fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port))

	opts.SetClientID(id)

	// Credentials are passed through untouched
	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	opts.SetCleanSession(true)

	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(true)
	if retryInterval > 0 {
		opts.SetConnectRetryInterval(retryInterval)
	}

	opts.SetConnectTimeout(defaultConnectTimeout)
	opts.SetKeepAlive(defaultKeepAlive)

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}

// configureLWT makes the broker publish "offline" (retained) on the status
// topic if the session drops without a clean close.
func configureLWT(opts *pahomqtt.ClientOptions, statusTopic string, qos byte) {
	if statusTopic == "" {
		return
	}
	opts.SetWill(statusTopic, payloadOffline, qos, true)
}
