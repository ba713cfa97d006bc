// Package syncer fetches, pulls, and pushes every repository in a clone folder.
package syncer
