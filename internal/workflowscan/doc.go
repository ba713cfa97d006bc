// Package workflowscan inspects GitHub Actions workflow files for
// python-version pins below 3.14.
package workflowscan
