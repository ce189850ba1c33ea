// Package pipeline wires transcripts, the boundary detector, the segment
// store, the translation coordinator, and the subtitle renderers into the
// stage operations the CLI exposes.
package pipeline
