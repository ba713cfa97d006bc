package pyenv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
)

const (
	venvDirectoryNameConstant   = ".venv"
	unixInterpreterPathConstant = "bin/python"
	windowsInterpreterPath      = "Scripts/python.exe"
	versionFlagConstant         = "--version"
	interpreterProbeTimeout     = 5 * time.Second
)

// ProgramExecutor runs arbitrary executables, used to probe venv interpreters.
type ProgramExecutor interface {
	ExecuteProgram(executionContext context.Context, programName string, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// InterpreterProber reads the Python version string out of a repository's .venv.
type InterpreterProber struct {
	executor ProgramExecutor
}

// NewInterpreterProber constructs a prober backed by the provided executor.
func NewInterpreterProber(executor ProgramExecutor) *InterpreterProber {
	return &InterpreterProber{executor: executor}
}

// HasVirtualEnvironment reports whether the repository carries a .venv entry.
func (prober *InterpreterProber) HasVirtualEnvironment(repositoryPath string) bool {
	_, statError := os.Stat(filepath.Join(repositoryPath, venvDirectoryNameConstant))
	return statError == nil
}

// ProbeVersion runs the venv's interpreter with --version under a five second
// timeout. The empty string means no working interpreter was found.
func (prober *InterpreterProber) ProbeVersion(executionContext context.Context, repositoryPath string) string {
	venvPath := filepath.Join(repositoryPath, venvDirectoryNameConstant)
	interpreterPath := filepath.Join(venvPath, filepath.FromSlash(windowsInterpreterPath))
	if _, statError := os.Stat(interpreterPath); statError != nil {
		interpreterPath = filepath.Join(venvPath, filepath.FromSlash(unixInterpreterPathConstant))
		if _, statError := os.Stat(interpreterPath); statError != nil {
			return ""
		}
	}

	probeContext, cancelProbe := context.WithTimeout(executionContext, interpreterProbeTimeout)
	defer cancelProbe()

	executionResult, executionError := prober.executor.ExecuteProgram(probeContext, interpreterPath, execshell.CommandDetails{
		Arguments: []string{versionFlagConstant},
	})
	if executionError != nil {
		return ""
	}

	versionOutput := strings.TrimSpace(executionResult.StandardOutput)
	if len(versionOutput) == 0 {
		versionOutput = strings.TrimSpace(executionResult.StandardError)
	}
	return versionOutput
}
