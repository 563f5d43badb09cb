// Package models defines the core domain models for the discus manager.
//
// The following models are used throughout the service:
//   - Athlete: one competitor with five raw throw entries
//   - StartRow: one row of an imported start list
//   - ResultRow: one ranked line of a category's results
//   - FinalistEntry: one athlete qualified for the final round
//
// Athletes are identified by an ID derived from name and house at creation.
// Two entries with the same name and house share an ID; this mirrors the
// start lists schools actually hand over and is deliberately not deduplicated
// (the importer warns about collisions instead of fixing them).
//
// Throw entries are kept as raw text everywhere: an empty string or "-" is a
// foul or an unattempted throw, anything else is parsed on demand by the
// scoring package. Keeping the raw text is what makes export/import
// round-trips lossless.
package models
