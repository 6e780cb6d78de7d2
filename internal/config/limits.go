package config

import "time"

// WebSocket connection limits and constraints
const (
	// Capacity thresholds used for health status
	MaxRoomsPerInstance = 1000
	MaxTotalConnections = 10000

	// Timeouts
	WriteTimeout = 10 * time.Second
	PingInterval = 30 * time.Second
	PongTimeout  = 90 * time.Second // 3x ping interval for network delay tolerance

	// Channel buffers
	ClientSendBufferSize = 256
	HubInboundBufferSize = 256

	// Shutdown
	ShutdownTimeout = 5 * time.Second
)
