// Package store provides the SQLite-backed generation cache for polyconst.
//
// The cache records:
//   - Runs: one row per `polyconst gen` invocation, with its file counts
//   - Outputs: one row per generated file, keyed by path, holding the
//     input hash that produced it and the hash of what was written
//
// A file is up to date when its input hash matches the recorded one and
// the file on disk still hashes to the recorded output hash. Hand edits
// to a generated file therefore trigger regeneration.
//
// # Logical Time
//
// Runs are ordered by seq INTEGER, assigned from the highest existing seq.
// No column stores wall-clock time. Queries order by seq ASC, id ASC
// COLLATE BINARY.
//
// # Versioning
//
// The schema version lives in PRAGMA user_version. The cache holds nothing
// that cannot be regenerated, so a database from another schema version is
// dropped and recreated rather than migrated.
//
// Connections run in WAL mode with synchronous=NORMAL, a 5 second busy
// timeout and foreign keys enforced.
//
// Hashes are computed by internal/ir/hash.go (SHA-256 with domain separation).
package store
