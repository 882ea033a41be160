// Package memory provides the in-memory code table of the discount service.
//
// The table is the single authoritative copy of code state while the process
// runs; snapshots on disk are checkpoints of it.
//
// Features:
//
//   - Sharded Storage: codes distributed across cmap shards for parallelism
//   - Insert-if-absent: generation retries on collision without a global lock
//   - Exactly-once redemption: per-key compare-and-swap from unused to used
//
// Thread Safety:
//
// All operations are thread-safe through per-shard locking.
package memory
