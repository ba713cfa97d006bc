// Package execshell provides typed wrappers for executing git, GitHub CLI, and auxiliary commands with logging.
package execshell
