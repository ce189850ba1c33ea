// Package srt renders segments to SubRip text and parses it back.
//
// Rendering and parsing are exact inverses for invariant-satisfying segment
// lists, which is what keeps exported files trustworthy as a re-import source.
// WebVTT output is derived from SRT purely by delimiter substitution so both
// formats always carry identical timings.
package srt
