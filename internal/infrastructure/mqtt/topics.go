package mqtt

import "fmt"

// DefaultDiscoveryPrefix is the Home Assistant discovery root.
const DefaultDiscoveryPrefix = "homeassistant"

// Topics builds the topic layout for one monitored host.
// Every topic is a deterministic function of (prefix, host, metric).
//
//	topics := mqtt.Topics{Prefix: "rpi-MQTT-monitor", Host: "pi4"}
//	topics.Value("cpu_load")
//	// Returns: "rpi-MQTT-monitor/pi4/cpu_load"
type Topics struct {
	Prefix          string
	Host            string
	DiscoveryPrefix string
}

// Value returns the per-metric value topic.
//
// Example: rpi-MQTT-monitor/pi4/cpu_load
func (t Topics) Value(metric string) string {
	return fmt.Sprintf("%s/%s/%s", t.Prefix, t.Host, metric)
}

// Grouped returns the topic carrying the comma-joined value list.
//
// Example: rpi-MQTT-monitor/pi4
func (t Topics) Grouped() string {
	return fmt.Sprintf("%s/%s", t.Prefix, t.Host)
}

// Discovery returns the Home Assistant sensor config topic for a metric.
//
// Example: homeassistant/sensor/rpi-MQTT-monitor/pi4_cpu_load/config
func (t Topics) Discovery(metric string) string {
	prefix := t.DiscoveryPrefix
	if prefix == "" {
		prefix = DefaultDiscoveryPrefix
	}
	return fmt.Sprintf("%s/sensor/%s/%s/config", prefix, t.Prefix, t.UniqueID(metric))
}

// UniqueID returns the discovery unique_id for a metric.
//
// Example: pi4_cpu_load
func (t Topics) UniqueID(metric string) string {
	return fmt.Sprintf("%s_%s", t.Host, metric)
}

// Status returns the availability topic (LWT target).
//
// Example: rpi-MQTT-monitor/pi4/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/%s/status", t.Prefix, t.Host)
}
