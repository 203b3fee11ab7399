// Package workflow implements the label-backed issue state machine: the
// states and transitions of the planning/approval lifecycle, transition
// validation, and the engine that applies transitions to GitHub issues.
package workflow
