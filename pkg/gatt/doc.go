// Package gatt connects bearer sessions to real GATT links using
// github.com/go-ble/ble.
//
// Link implements bearer.Link on top of a go-ble client. Service discovery
// results are kept in a ProfileCache keyed by peer address so that a
// reconnect to a node whose GATT database did not change skips discovery.
// Watch applies the session's cache decision when the link drops: a node
// that was provisioning, or one that was reset, is rediscovered from scratch
// on the next connection.
package gatt
