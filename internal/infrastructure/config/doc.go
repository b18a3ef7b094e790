// Package config handles loading and validating host monitor configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Broker credentials should be set via HOSTMON_MQTT_USERNAME / HOSTMON_MQTT_PASSWORD
//   - The config file should have restricted permissions (0600)
//
// Performance Characteristics:
//   - Configuration is loaded once at startup
//   - Metric enable flags are never mutated after load
//
// Usage:
//
//	cfg, err := config.Load("configs/hostmon.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.MQTT.TopicPrefix)
package config
