// Package hosted compares local clones against their GitHub counterparts:
// forks of other users, owner repositories with no local clone, and clones
// of archived repositories.
package hosted
