// Package publisher runs one reporting cycle: gather a value for every
// enabled metric, optionally announce discovery configs, and publish the
// values either as one grouped message or one message per metric.
//
// Framing:
//
//	grouped     {prefix}/{host}             "2,50"  QoS 1
//	per-metric  {prefix}/{host}/{metric}    "2"     QoS 1, retained
//	discovery   homeassistant/sensor/{prefix}/{host}_{metric}/config  JSON, QoS 0, retained
//
// Every individual publish (discovery or value) is followed by the
// configured sleep to respect broker rate limits. The grouped message is a
// single publish with no spacing.
//
// A failing reader yields an absent sample; a failing publish is logged and
// the cycle moves on. Nothing is retried within a cycle.
package publisher
