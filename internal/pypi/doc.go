// Package pypi reports which PyPI projects owned by a user declare support
// for Python 3.14, and the newest release that does.
package pypi
