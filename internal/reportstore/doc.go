// Package reportstore keeps the latest pipeline outcome of every request
// served by the node.
//
// # Characteristics
//
//   - Ephemeral: outcomes live in memory and are lost on restart.
//   - Thread-safe: backed by sync.Map, so workers storing outcomes for
//     different requests never contend on a global lock.
//   - Latest only: storing an outcome replaces the previous one for the same
//     request. The number of runs is still counted.
//
// Persistent or shared storage would need another Store implementation.
package reportstore
