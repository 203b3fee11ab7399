// Package editing manipulates issue bodies: replacing the body wholesale,
// adding and updating sections, and managing todo checklists. Closed issues
// are rejected.
package editing
