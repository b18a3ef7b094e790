// Package mqtt provides the broker session used by the host monitor.
//
// This package manages:
//   - Opening a session to the broker (paho keeps retrying the CONNECT)
//   - Forwarding connect / connection-lost events to the owner
//   - Message publishing with QoS and retain flags
//   - Last Will and Testament on the host status topic
//   - The topic layout for values, grouped values and discovery configs
//
// Reconnection is not automatic. The connection manager in
// internal/connection owns the attempt budget and backoff, and calls Open
// again after a disconnect.
//
// # Usage
//
//	client := mqtt.New(cfg.MQTT, mqtt.Options{StatusTopic: topics.Status()})
//	client.SetOnConnect(func() { log.Info("connected") })
//	if err := client.Open(); err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err := client.Publish(topics.Value("cpu_load"), []byte("12.5"), 1, false)
package mqtt
