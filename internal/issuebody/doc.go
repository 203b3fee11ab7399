// Package issuebody models the markdown structure ghoo maintains inside
// GitHub issue bodies: a preamble, level-two sections with todo checklists,
// and a trailing Log section recording workflow transitions.
package issuebody
