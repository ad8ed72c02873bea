// Package api exposes the HTTP REST API and WebSocket feed for the
// Hospilock backend.
//
// It serves account registration and signin, lock registration and
// assignment, command dispatch, and the audit log, plus a WebSocket
// event feed for admin dashboards.
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple
// goroutines.
package api
