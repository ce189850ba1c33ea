// Package config loads, validates, and normalizes subsync configuration.
//
// Configuration is a single TOML file resolved from an explicit path, the
// default location under ~/.config/subsync, or a project-local subsync.toml.
// Defaults apply when the file is absent so the CLI works out of the box.
package config
