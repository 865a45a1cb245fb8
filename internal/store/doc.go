// Package store provides a SQLite-backed ledger of generation runs.
//
// Each run records the options it was started with, its final counts, and
// one row per output file with the file's domain-separated SHA-256 digest.
// The verify command reads a run back and checks that regenerating it
// reproduces the same bytes.
//
// # Ordering
//
// Runs carry a logical seq assigned on insert; "latest run" means highest
// seq, never wall time. Output queries use
// ORDER BY fixture COLLATE BINARY, family COLLATE BINARY so results are
// identical across platforms.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
