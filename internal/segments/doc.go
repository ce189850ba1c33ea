// Package segments holds the subtitle segment model, the boundary detector
// that groups timestamped words into display-ready segments, and the timing
// validator that reports gaps, overlaps, and quality metrics.
//
// Everything here is a pure function over its inputs: the detector and
// validator never touch storage and never mutate their arguments. Persistence
// lives in segstore.
package segments
