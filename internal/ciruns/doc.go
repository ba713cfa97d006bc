// Package ciruns audits and cleans up GitHub Actions workflow runs for local clones.
package ciruns
