// Package cli assembles the repokeeper command tree: one subcommand per audit
// (worktree state, remote drift, GitHub account comparisons, CI run health,
// and Python toolchain checks), a shared viper-backed configuration document,
// and zap logging initialized before any command runs.
package cli
