// Package cli assembles the ghoo command tree: configuration loading,
// logging, repository resolution, and every workflow command.
package cli
