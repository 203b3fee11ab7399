// Package gitrepo parses git remote URLs so commands can resolve the
// GitHub repository backing the current working tree.
package gitrepo
