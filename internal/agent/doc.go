// Package agent drives the reporting loop: connect, stagger, then publish a
// cycle every loop interval until the context is cancelled.
//
// The loop is single-threaded. Connection events arrive on the transport's
// goroutines and are folded into the connection manager's state; the loop
// only reads that state between cycles.
package agent
