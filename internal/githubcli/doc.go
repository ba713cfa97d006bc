// Package githubcli wraps GitHub CLI operations used to audit hosted repositories.
package githubcli
