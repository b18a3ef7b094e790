package connection

import "errors"

// ErrConnectionExhausted is returned when the attempt budget runs out
// before the broker session comes up. It is fatal to the agent.
var ErrConnectionExhausted = errors.New("connection: retry budget exhausted")
