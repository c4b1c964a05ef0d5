// Package influxdb records login telemetry in InfluxDB.
//
// Each account event (registration, login, failed login, role change,
// deletion) becomes one point in the auth_events measurement, tagged with
// the event kind, outcome, role, and device label:
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteAuthEvent(influxdb.AuthEventPoint{Kind: "login", Role: "admin", Success: true})
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Every point carries a service=gatehouse tag. Rejected
// batches arrive asynchronously through SetOnError and are counted in Stats.
// The telemetry path never fails an API request.
package influxdb
