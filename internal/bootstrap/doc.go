// Package bootstrap prepares a repository for the managed workflow: it
// creates the status and type labels and scaffolds the ghoo.yaml
// configuration file.
package bootstrap
