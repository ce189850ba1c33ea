// Package services holds the error taxonomy and context plumbing shared by the
// pipeline stages.
//
// Stage code wraps failures with Wrap so the CLI can classify them, and carries
// interview, stage, language, and correlation identifiers through context so
// loggers can tag every line consistently.
package services
