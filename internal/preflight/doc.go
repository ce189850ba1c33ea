// Package preflight validates the runtime environment before pipeline work
// starts: directory permissions and translation API reachability.
package preflight
