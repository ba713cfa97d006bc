// Package pyenv inspects the Python tooling of local repositories: virtual
// environment interpreter versions and lingering Poetry projects.
package pyenv
