package influxdb

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/nerrad567/gatehouse-core/internal/infrastructure/config"
)

const (
	pingTimeout = 5 * time.Second

	fallbackBatchSize = 100

	// fallbackFlushSeconds applies when flush_interval is unset.
	fallbackFlushSeconds = 10

	// serviceTag is attached to every point so several Gatehouse
	// instances can share one bucket.
	serviceTag = "gatehouse"
)

// Stats counts points handed to the write API and batches the server
// rejected.
type Stats struct {
	Queued int64 `json:"queued"`
	Failed int64 `json:"failed"`
}

// Client records auth_events points in one InfluxDB bucket.
//
// Points are batched by the underlying write API; nothing here blocks a
// request. The zero value and a nil *Client behave as a closed client.
type Client struct {
	client   influxdb2.Client
	writeAPI api.WriteAPI

	open   atomic.Bool
	queued atomic.Int64
	failed atomic.Int64

	mu      sync.RWMutex
	onError func(err error)
}

// writeOptions maps the telemetry config onto client options. Points carry
// second precision; finer timestamps add nothing to login counts.
func writeOptions(cfg config.InfluxDBConfig) *influxdb2.Options {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = fallbackBatchSize
	}
	flush := cfg.FlushInterval
	if flush <= 0 {
		flush = fallbackFlushSeconds
	}

	// #nosec G115 -- both values are positive here
	return influxdb2.DefaultOptions().
		SetBatchSize(uint(batch)).
		SetFlushInterval(uint(time.Duration(flush) * time.Second / time.Millisecond)).
		SetPrecision(time.Second).
		AddDefaultTag("service", serviceTag)
}

// Connect pings cfg.URL and opens a batched writer for cfg.Org and
// cfg.Bucket. It returns ErrDisabled when telemetry is switched off.
func Connect(ctx context.Context, cfg config.InfluxDBConfig) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}

	raw := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, writeOptions(cfg))
	if err := ping(ctx, raw); err != nil {
		raw.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c := &Client{client: raw, writeAPI: raw.WriteAPI(cfg.Org, cfg.Bucket)}
	c.open.Store(true)
	go c.drainErrors(c.writeAPI.Errors())
	return c, nil
}

func ping(ctx context.Context, raw influxdb2.Client) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	healthy, err := raw.Ping(ctx)
	switch {
	case err != nil:
		return fmt.Errorf("ping: %w", err)
	case !healthy:
		return fmt.Errorf("ping: server not ready")
	}
	return nil
}

// drainErrors runs until the write API closes its error channel.
func (c *Client) drainErrors(errs <-chan error) {
	for err := range errs {
		c.failed.Add(1)

		c.mu.RLock()
		report := c.onError
		c.mu.RUnlock()
		if report != nil {
			report(fmt.Errorf("%w: %w", ErrWriteFailed, err))
		}
	}
}

// Close flushes buffered points once and releases the client. Later calls
// and calls on nil are no-ops.
func (c *Client) Close() error {
	if c == nil || !c.open.CompareAndSwap(true, false) {
		return nil
	}
	c.writeAPI.Flush()
	c.client.Close()
	return nil
}

// HealthCheck pings the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := ping(ctx, c.client); err != nil {
		return fmt.Errorf("influxdb health check: %w", err)
	}
	return nil
}

// IsConnected reports whether the client is open. It does not ping.
func (c *Client) IsConnected() bool {
	return c != nil && c.open.Load()
}

// SetOnError registers the callback for rejected batches.
func (c *Client) SetOnError(report func(err error)) {
	c.mu.Lock()
	c.onError = report
	c.mu.Unlock()
}

// Flush blocks until buffered points are sent.
func (c *Client) Flush() {
	if c.IsConnected() {
		c.writeAPI.Flush()
	}
}

// Stats returns the write counters. Safe on nil.
func (c *Client) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	return Stats{Queued: c.queued.Load(), Failed: c.failed.Load()}
}
