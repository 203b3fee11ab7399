// Package execshell centralizes shell command execution for ghoo.
//
// The ShellExecutor wraps a CommandRunner with structured logging and typed
// failures so callers interact with git and the GitHub CLI through a uniform
// surface.
package execshell
