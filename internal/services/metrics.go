package services

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/SelinIlya/planning-poker/internal/config"
)

// Metrics tracks gateway performance and resource usage
type Metrics struct {
	// Connection metrics
	activeConnections int64
	totalConnections  int64
	activeRooms       int64

	// Message metrics
	messagesReceived int64
	messagesSent     int64
	lastMessageTime  int64 // Unix timestamp

	// Error metrics
	connectionErrors  int64
	broadcastErrors   int64
	authDrops         int64
	malformedCommands int64

	startTime time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),
	}
}

// Connection tracking
func (m *Metrics) IncrementConnections() {
	atomic.AddInt64(&m.activeConnections, 1)
	atomic.AddInt64(&m.totalConnections, 1)
}

func (m *Metrics) DecrementConnections() {
	atomic.AddInt64(&m.activeConnections, -1)
}

// Room tracking. The room map itself is confined to the hub goroutine, so
// the live count is mirrored here atomically for the HTTP handlers.
func (m *Metrics) IncrementRooms() {
	atomic.AddInt64(&m.activeRooms, 1)
}

func (m *Metrics) DecrementRooms() {
	atomic.AddInt64(&m.activeRooms, -1)
}

// Message tracking
func (m *Metrics) IncrementMessagesReceived() {
	atomic.AddInt64(&m.messagesReceived, 1)
	atomic.StoreInt64(&m.lastMessageTime, time.Now().Unix())
}

func (m *Metrics) IncrementMessagesSent() {
	atomic.AddInt64(&m.messagesSent, 1)
}

// Error tracking
func (m *Metrics) IncrementConnectionErrors() {
	atomic.AddInt64(&m.connectionErrors, 1)
}

func (m *Metrics) IncrementBroadcastErrors() {
	atomic.AddInt64(&m.broadcastErrors, 1)
}

func (m *Metrics) IncrementAuthDrops() {
	atomic.AddInt64(&m.authDrops, 1)
}

func (m *Metrics) IncrementMalformedCommands() {
	atomic.AddInt64(&m.malformedCommands, 1)
}

// MetricsSnapshot represents a point-in-time view of metrics
type MetricsSnapshot struct {
	ActiveConnections int64 `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	ActiveRooms       int64 `json:"active_rooms"`

	MessagesReceived  int64   `json:"messages_received"`
	MessagesSent      int64   `json:"messages_sent"`
	MessagesPerSecond float64 `json:"messages_per_second"`
	LastMessageTime   string  `json:"last_message_time"`

	ConnectionErrors  int64 `json:"connection_errors"`
	BroadcastErrors   int64 `json:"broadcast_errors"`
	AuthDrops         int64 `json:"auth_drops"`
	MalformedCommands int64 `json:"malformed_commands"`

	UptimeSeconds int64  `json:"uptime_seconds"`
	MemoryUsageMB uint64 `json:"memory_usage_mb"`
	NumGoroutines int    `json:"num_goroutines"`

	HealthStatus string `json:"health_status"`
}

// Snapshot returns a point-in-time view of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	uptime := time.Since(m.startTime)
	messagesPerSec := float64(atomic.LoadInt64(&m.messagesReceived)) / uptime.Seconds()

	lastMsgTime := atomic.LoadInt64(&m.lastMessageTime)
	lastMsgTimeStr := "never"
	if lastMsgTime > 0 {
		lastMsgTimeStr = time.Unix(lastMsgTime, 0).Format(time.RFC3339)
	}

	return MetricsSnapshot{
		ActiveConnections: atomic.LoadInt64(&m.activeConnections),
		TotalConnections:  atomic.LoadInt64(&m.totalConnections),
		ActiveRooms:       atomic.LoadInt64(&m.activeRooms),
		MessagesReceived:  atomic.LoadInt64(&m.messagesReceived),
		MessagesSent:      atomic.LoadInt64(&m.messagesSent),
		MessagesPerSecond: messagesPerSec,
		LastMessageTime:   lastMsgTimeStr,
		ConnectionErrors:  atomic.LoadInt64(&m.connectionErrors),
		BroadcastErrors:   atomic.LoadInt64(&m.broadcastErrors),
		AuthDrops:         atomic.LoadInt64(&m.authDrops),
		MalformedCommands: atomic.LoadInt64(&m.malformedCommands),
		UptimeSeconds:     int64(uptime.Seconds()),
		MemoryUsageMB:     memStats.Alloc / 1024 / 1024,
		NumGoroutines:     runtime.NumGoroutine(),
		HealthStatus:      m.healthStatus(),
	}
}

// healthStatus determines overall system health against capacity thresholds
func (m *Metrics) healthStatus() string {
	activeConns := atomic.LoadInt64(&m.activeConnections)
	activeRooms := atomic.LoadInt64(&m.activeRooms)
	errors := atomic.LoadInt64(&m.connectionErrors) + atomic.LoadInt64(&m.broadcastErrors)

	// Critical: over 90% capacity
	if activeConns > config.MaxTotalConnections*9/10 || activeRooms > config.MaxRoomsPerInstance*9/10 {
		return "critical"
	}

	// Warning: over 80% capacity or accumulating errors
	if activeConns > config.MaxTotalConnections*8/10 || activeRooms > config.MaxRoomsPerInstance*8/10 || errors > 100 {
		return "warning"
	}

	return "healthy"
}
