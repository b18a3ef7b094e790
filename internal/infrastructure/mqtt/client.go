package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-logic-hostmon/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang as the broker session for the host monitor.
//
// Unlike a self-healing client, it never reconnects on its own: Open starts a
// session, connection events are forwarded to the callbacks registered with
// SetOnConnect/SetOnDisconnect, and the owner decides when to Open again.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Callbacks fire on paho's goroutines, not the caller's.
type Client struct {
	cfg           config.MQTTConfig
	clientID      string
	statusTopic   string
	retryInterval time.Duration

	// client is replaced on every Open; generation lets stale callbacks
	// from a closed session be ignored.
	client     pahomqtt.Client
	generation uint64
	clientMu   sync.Mutex

	connected bool
	connMu    sync.RWMutex

	onConnect    func()
	onDisconnect func(err error)
	callbackMu   sync.RWMutex

	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Options tunes a Client beyond the YAML config.
type Options struct {
	// StatusTopic receives "online" on connect and carries the "offline" LWT.
	// Empty disables availability publishing.
	StatusTopic string

	// RetryInterval is how often paho retries the initial CONNECT while a
	// session is opening.
	RetryInterval time.Duration
}

// New creates a Client without connecting.
func New(cfg config.MQTTConfig, opts Options) *Client {
	return &Client{
		cfg:           cfg,
		clientID:      clientID(cfg),
		statusTopic:   opts.StatusTopic,
		retryInterval: opts.RetryInterval,
	}
}

// ClientID returns the MQTT client identifier in use.
func (c *Client) ClientID() string {
	return c.clientID
}

// Open starts a new broker session and returns without waiting for it.
//
// The connect outcome is reported asynchronously through the on-connect
// callback; paho keeps retrying the CONNECT until it succeeds or Close is
// called. Any previous session is discarded first.
func (c *Client) Open() error {
	c.clientMu.Lock()
	defer c.clientMu.Unlock()

	if c.client != nil {
		c.client.Disconnect(defaultDisconnectQuiesce)
	}

	c.generation++
	gen := c.generation

	opts := buildClientOptions(c.cfg, c.clientID, c.retryInterval)
	configureLWT(opts, c.statusTopic, c.statusQoS())

	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect(gen)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(gen, err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()

	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			if logger := c.getLogger(); logger != nil {
				logger.Warn("MQTT connect attempt ended", "error", fmt.Errorf("%w: %w", ErrConnectionFailed, err))
			}
		}
	}()

	return nil
}

// statusQoS is the QoS for availability messages, taken from mqtt.qos.
func (c *Client) statusQoS() byte {
	if c.cfg.QoS < 0 || c.cfg.QoS > maxQoS {
		return 1
	}
	return byte(c.cfg.QoS)
}

// current reports whether gen is the live session and returns its client.
func (c *Client) current(gen uint64) (pahomqtt.Client, bool) {
	c.clientMu.Lock()
	defer c.clientMu.Unlock()
	return c.client, gen == c.generation && c.client != nil
}

// handleConnect is called when the connection is established.
func (c *Client) handleConnect(gen uint64) {
	client, ok := c.current(gen)
	if !ok {
		return
	}

	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	if c.statusTopic != "" {
		client.Publish(c.statusTopic, c.statusQoS(), true, payloadOnline)
	}

	c.callbackMu.RLock()
	callback := c.onConnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback()
	}
}

// handleDisconnect is called when the connection is lost.
func (c *Client) handleDisconnect(gen uint64, err error) {
	if _, ok := c.current(gen); !ok {
		return
	}

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.callbackMu.RLock()
	callback := c.onDisconnect
	c.callbackMu.RUnlock()
	if callback != nil {
		callback(err)
	}
}

// Close sends a clean DISCONNECT and stops the session's background I/O.
//
// A graceful "offline" status is published first when connected, so
// subscribers can tell a clean stop from the LWT. Calling Close on a closed
// or never-opened client is a no-op.
func (c *Client) Close() error {
	c.clientMu.Lock()
	client := c.client
	c.client = nil
	c.generation++
	c.clientMu.Unlock()

	if client == nil {
		return nil
	}

	if c.IsConnectedState() && client.IsConnected() && c.statusTopic != "" {
		token := client.Publish(c.statusTopic, c.statusQoS(), true, payloadOffline)
		token.WaitTimeout(defaultStatusTimeout)
	}

	client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck verifies the MQTT connection is alive.
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state as seen by both the
// callbacks and paho itself.
func (c *Client) IsConnected() bool {
	c.clientMu.Lock()
	client := c.client
	c.clientMu.Unlock()

	return c.IsConnectedState() && client != nil && client.IsConnected()
}

// IsConnectedState returns the last state reported by the callbacks.
func (c *Client) IsConnectedState() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected
}

// SetOnConnect sets a callback to be invoked when a session connects.
func (c *Client) SetOnConnect(callback func()) {
	c.callbackMu.Lock()
	c.onConnect = callback
	c.callbackMu.Unlock()
}

// SetOnDisconnect sets a callback to be invoked when the session is lost.
// The error parameter describes why the connection was lost.
func (c *Client) SetOnDisconnect(callback func(err error)) {
	c.callbackMu.Lock()
	c.onDisconnect = callback
	c.callbackMu.Unlock()
}

// SetLogger sets a logger for connection diagnostics.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}
