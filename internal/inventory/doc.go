// Package inventory reports clone folders that are not git repositories and
// repositories whose history is short enough to look abandoned.
package inventory
