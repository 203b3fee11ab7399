// Package issues creates and inspects the managed issue hierarchy: epics,
// tasks, and sub-tasks with scaffolded bodies, parent gating, and native
// sub-issue linking with a body-reference fallback.
package issues
