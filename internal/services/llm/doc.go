// Package llm provides the OpenRouter-backed translation and language
// detection providers. All requests demand JSON-only responses and retry on
// rate limiting and transient server failures with capped exponential
// backoff.
package llm
