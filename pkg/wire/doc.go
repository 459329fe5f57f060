// Package wire defines the CBOR records bluest-go exchanges with the
// outside world.
//
// Two record types are defined:
//   - Notification: one raw characteristic notification as received from
//     the BLE stack, used for captures and replay
//   - Record: one decoded feature update, as published to sinks
//
// # CBOR Integer Keys
//
// All maps use integer keys for compactness. Encoding is deterministic so
// the same record always produces the same bytes.
//
// # JSON
//
// Record also carries JSON tags. Sinks that talk to browsers or message
// brokers publish the JSON form.
package wire
