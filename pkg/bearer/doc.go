// Package bearer implements the Bluetooth Mesh GATT bearer: the transport
// session between a host mesh stack and a single mesh node reached over a
// GATT connection.
//
// A node exposes exactly one of two GATT service topologies during its
// lifetime:
//   - Mesh Provisioning Service (0x1827) before it joins a network
//   - Mesh Proxy Service (0x1828) once it is provisioned
//
// A Session discovers which profile the peer exposes, negotiates the ATT MTU,
// enables notifications on the profile's Data Out characteristic and then
// carries mesh PDUs in both directions.
//
// # Session Lifecycle
//
//	IDLE ──Establish──> DISCOVERING ──select──> BOUND ──notify──> READY
//	  ^                     │                    │                  │
//	  └────── reset ────────┴────────────────────┴──────────────────┘
//
// Disconnects and service invalidations reset the session to IDLE from any
// state: the profile is cleared, the MTU falls back to 23 and in-flight link
// operations are cancelled.
//
// # Framing
//
// Outbound PDUs are split into segments of at most MTU-3 bytes and written
// with write-without-response to the Data In characteristic. The segments of
// one PDU are never interleaved with another PDU. Inbound notifications are
// forwarded upward unchanged, one notification per delivery; reassembly
// belongs to the mesh stack.
//
// # GATT Cache
//
// HandleDisconnected reports whether the caller should drop cached GATT
// metadata for the peer. A node that was provisioning is about to switch to
// the Proxy topology, so the cache is always dropped in that case. Callers can
// force the same outcome with RequireCacheClear, for example after sending a
// node reset.
package bearer
