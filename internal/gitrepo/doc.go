// Package gitrepo provides repository-level git operations and remote URL parsing.
package gitrepo
