// Package api implements the Gatehouse HTTP API.
//
// It exposes registration and login to anonymous callers and the account
// administration endpoints (user listing, deletion, role change, session
// and audit listing) to holders of an admin bearer token.
//
// # Request flow
//
// Every request passes through request ID, logging, recovery, CORS, and
// body-size middleware. Protected routes add authMiddleware, which verifies
// the bearer token and stores its claims in the request context, and
// requireRole, which rejects callers outside the permitted roles with 403
// before the handler runs.
//
// # Side effects of account events
//
// After a successful response is decided, each account event is queued for
// the audit trail and, when configured, published to MQTT and written to
// InfluxDB. None of these can fail the request.
//
// # Errors
//
// Error responses share one body shape:
//
//	{"error": "insufficient role", "code": "forbidden"}
package api
