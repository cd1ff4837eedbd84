package pluginruntime

import "time"

// Limits bounds one plugin runtime's resource consumption, sourced from
// config.Plugins at ApplicationManager construction time.
type Limits struct {
	MaxMemoryMB     int
	MaxExecutionMs  int
	MaxGoroutines   int
	IdleTimeout     time.Duration
	HeartbeatPeriod time.Duration
}
