// Package connection manages the connect and reconnect cycle for a mesh
// node reached over GATT.
//
// BLE connection attempts fail routinely (the peer is advertising on another
// channel, the controller is busy, the supervision timeout fires during
// discovery), so every attempt is retried a bounded number of times:
//
//  1. First attempt immediately
//  2. Retry after the initial delay (default 200 ms)
//  3. Each further retry multiplies the delay, capped at the maximum
//  4. Give up after the configured number of attempts
//
// Errors wrapped with Permanent are never retried; a peer that exposes no
// mesh service will not grow one on the next attempt.
//
// # Reconnection
//
// After a successful connect the Manager waits for NotifyConnectionLost.
// With auto-reconnect enabled it then runs the same retry cycle in the
// background, repeating rounds with backoff until it connects, hits a
// permanent error or is closed.
//
// # Jitter
//
//	actual_delay = base_delay + random(0, base_delay * jitter)
package connection
