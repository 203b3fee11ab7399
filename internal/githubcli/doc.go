// Package githubcli exposes typed GitHub operations executed through the
// GitHub CLI. REST endpoints are reached via `gh api` and sub-issue
// relationships via `gh api graphql`; transient failures are retried with
// exponential backoff.
package githubcli
