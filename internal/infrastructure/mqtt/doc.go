// Package mqtt publishes confirmed lock state changes to an optional
// broker for building dashboards and wall panels.
//
// The client is publish-only. Connection loss is tolerated: publishes
// fail fast with ErrNotConnected and the paho library reconnects in
// the background, so a broker outage never blocks lock commands.
package mqtt
