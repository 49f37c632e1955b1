package server

import "time"

const (
	readTimeout  = 10 * time.Second
	writeTimeout = 65 * time.Second
	idleTimeout  = 90 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
