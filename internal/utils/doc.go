// Package utils hosts shared configuration loading, logging, and context helpers for repokeeper commands.
package utils
