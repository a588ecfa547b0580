// Package persistence keeps bearer-ctl connection history across restarts.
//
// The state file is JSON and lists the peer addresses a controller has
// connected to, with first/last seen times and connect/disconnect
// counters, plus the last peer used. Nothing about the node itself is
// stored: its profile, MTU and GATT handles are discovered again on every
// connection.
package persistence
