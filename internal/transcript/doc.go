// Package transcript loads interview transcription output into the word and
// text inputs the boundary detector consumes. The file provider understands
// WhisperX-style alignment JSON.
package transcript
