package monitor

import "time"

type Status struct {
	Gateway    bool      `json:"gateway"`
	LatencyMS  int64     `json:"latency_ms"`
	Buffer     bool      `json:"buffer"`
	BufferSize int       `json:"buffer_size"`
	Sessions   int       `json:"sessions"`
	Uptime     string    `json:"uptime"`
	LastCheck  time.Time `json:"last_check"`
}
