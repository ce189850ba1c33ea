// Package language normalizes ISO 639 language identifiers.
//
// Target languages arrive from config, CLI flags, and the language classifier
// in mixed 2-letter, 3-letter, and word forms; this package maps them onto a
// canonical 2-letter code so the preserve-vs-translate comparison and the
// per-language storage keys agree.
package language
