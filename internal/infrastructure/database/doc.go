// Package database bootstraps the Redis connections backing the Hospilock API.
//
// The store is split across two logical Redis databases: accounts and lock
// records in one, the append-only audit log in the other. Open verifies both
// with a ping before the server starts taking requests; there is no lazy
// reconnect logic beyond what the client library provides.
package database
