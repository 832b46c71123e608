// Package timeouts defines the timeout constants shared by commands and
// stores.
package timeouts

import "time"

// Ping caps the first round trip to a freshly opened database.
const Ping = 5 * time.Second

// Shutdown limits how long a command waits for telemetry to flush on exit.
const Shutdown = 5 * time.Second
