// Package translate coordinates multilingual subtitle production. For every
// segment it decides between preserving the original text verbatim (the
// segment is already in the target language) and sending it to an external
// translator in ordered batches, then writes the per-language text back to
// storage without ever modifying segment timing.
package translate
