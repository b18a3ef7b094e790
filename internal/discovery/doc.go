// Package discovery produces Home Assistant MQTT discovery messages and
// decides when a new round of them is due.
//
// The Throttle is a single timestamp: a round is due when discovery is
// enabled and strictly more than the interval has passed since the last
// round. A fresh Throttle is always due, so a cold start announces once.
package discovery
