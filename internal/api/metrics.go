package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics is the /metrics response body.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	Users         int              `json:"users"`
	Audit         AuditMetrics     `json:"audit"`
	MQTT          SinkMetrics      `json:"mqtt"`
	InfluxDB      TelemetryMetrics `json:"influxdb"`
	Database      DatabaseMetrics  `json:"database"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// AuditMetrics reports the audit writer queue.
type AuditMetrics struct {
	Configured bool  `json:"configured"`
	Pending    int   `json:"pending"`
	Dropped    int64 `json:"dropped"`
}

// SinkMetrics reports an optional event sink.
type SinkMetrics struct {
	Configured bool `json:"configured"`
	Connected  bool `json:"connected"`
}

// TelemetryMetrics reports the InfluxDB sink and its write counters.
type TelemetryMetrics struct {
	SinkMetrics
	Queued int64 `json:"queued"`
	Failed int64 `json:"failed"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

const bytesPerMB = 1024 * 1024

// handleMetrics returns process, store, and sink statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / bytesPerMB,
			MemoryTotalMB: float64(memStats.TotalAlloc) / bytesPerMB,
			NumGC:         memStats.NumGC,
		},
	}

	if s.auditWriter != nil {
		metrics.Audit = AuditMetrics{
			Configured: true,
			Pending:    s.auditWriter.Pending(),
			Dropped:    s.auditWriter.Dropped(),
		}
	}

	if count, err := s.store.Count(r.Context()); err == nil {
		metrics.Users = count
	} else {
		s.logger.Warn("metrics user count failed", "error", err)
	}

	if s.events != nil {
		metrics.MQTT = SinkMetrics{Configured: true, Connected: s.events.IsConnected()}
	}
	if s.telemetry != nil {
		st := s.telemetry.Stats()
		metrics.InfluxDB = TelemetryMetrics{
			SinkMetrics: SinkMetrics{Configured: true, Connected: s.telemetry.IsConnected()},
			Queued:      st.Queued,
			Failed:      st.Failed,
		}
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
