// Package testsupport provides shared fixtures for package tests: temp-dir
// configs and pre-opened segment stores with cleanup registered.
package testsupport
