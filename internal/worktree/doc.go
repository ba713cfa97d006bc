// Package worktree reports uncommitted and unpushed work across a clone folder.
package worktree
