// Package segstore persists subtitle segments in SQLite and enforces the
// segment invariants at the write boundary.
//
// Invariants held by every committed row: end time strictly exceeds start
// time, confidence scores stay within [0, 1], (interview, index) pairs are
// unique with upsert semantics, start times never decrease with index, and
// translation writes cannot touch timing because timings live only on the
// segments table. Violations are rejected whole with ErrConstraint; partial
// application never happens.
package segstore
