// Package cloneprotocol classifies local clones by the scheme of their origin remote URL.
package cloneprotocol
