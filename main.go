package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/matthewdeanmartin/repokeeper/cmd/cli"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

const (
	exitErrorTemplateConstant         = "%v\n"
	exitCodeFailureConstant           = 1
	exitCodeMissingExecutableConstant = 127
)

// main executes the repokeeper command-line application and maps sentinel errors to exit codes.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		os.Exit(0)
	}

	if errors.Is(executionError, exec.ErrNotFound) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(exitCodeMissingExecutableConstant)
	}

	if errors.Is(executionError, shared.ErrFindingsDetected) || errors.Is(executionError, shared.ErrScanCompletedWithErrors) {
		os.Exit(exitCodeFailureConstant)
	}

	fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	os.Exit(exitCodeFailureConstant)
}
