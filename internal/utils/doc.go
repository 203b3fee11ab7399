// Package utils hosts configuration loading, logger construction, and
// command-context helpers shared across ghoo commands.
package utils
