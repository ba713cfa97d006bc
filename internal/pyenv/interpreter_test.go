package pyenv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/pyenv"
)

type stubProgramExecutor struct {
	result         execshell.ExecutionResult
	executionError error
	programNames   []string
}

func (executor *stubProgramExecutor) ExecuteProgram(executionContext context.Context, programName string, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.programNames = append(executor.programNames, programName)
	return executor.result, executor.executionError
}

func createVenvInterpreter(testInstance *testing.T, repositoryPath string, relativeInterpreterPath string) {
	testInstance.Helper()
	interpreterPath := filepath.Join(repositoryPath, ".venv", filepath.FromSlash(relativeInterpreterPath))
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(interpreterPath), 0o755))
	require.NoError(testInstance, os.WriteFile(interpreterPath, []byte{}, 0o755))
}

func TestProbeVersionReadsInterpreterOutput(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createVenvInterpreter(testInstance, repositoryPath, "bin/python")

	executor := &stubProgramExecutor{result: execshell.ExecutionResult{StandardOutput: "Python 3.14.0\n"}}
	prober := pyenv.NewInterpreterProber(executor)

	require.True(testInstance, prober.HasVirtualEnvironment(repositoryPath))
	require.Equal(testInstance, "Python 3.14.0", prober.ProbeVersion(context.Background(), repositoryPath))
	require.Equal(testInstance, []string{filepath.Join(repositoryPath, ".venv", "bin", "python")}, executor.programNames)
}

func TestProbeVersionPrefersWindowsLayoutWhenPresent(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createVenvInterpreter(testInstance, repositoryPath, "Scripts/python.exe")
	createVenvInterpreter(testInstance, repositoryPath, "bin/python")

	executor := &stubProgramExecutor{result: execshell.ExecutionResult{StandardOutput: "Python 3.12.0"}}
	prober := pyenv.NewInterpreterProber(executor)

	require.Equal(testInstance, "Python 3.12.0", prober.ProbeVersion(context.Background(), repositoryPath))
	require.Equal(testInstance, []string{filepath.Join(repositoryPath, ".venv", "Scripts", "python.exe")}, executor.programNames)
}

func TestProbeVersionFallsBackToStandardError(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createVenvInterpreter(testInstance, repositoryPath, "bin/python")

	executor := &stubProgramExecutor{result: execshell.ExecutionResult{StandardError: "Python 2.7.18\n"}}
	prober := pyenv.NewInterpreterProber(executor)

	require.Equal(testInstance, "Python 2.7.18", prober.ProbeVersion(context.Background(), repositoryPath))
}

func TestProbeVersionAnswersEmptyWithoutInterpreter(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".venv"), 0o755))

	executor := &stubProgramExecutor{}
	prober := pyenv.NewInterpreterProber(executor)

	require.Empty(testInstance, prober.ProbeVersion(context.Background(), repositoryPath))
	require.Empty(testInstance, executor.programNames)
}

func TestProbeVersionAnswersEmptyOnExecutionFailure(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	createVenvInterpreter(testInstance, repositoryPath, "bin/python")

	executor := &stubProgramExecutor{executionError: errors.New("interpreter crashed")}
	prober := pyenv.NewInterpreterProber(executor)

	require.Empty(testInstance, prober.ProbeVersion(context.Background(), repositoryPath))
}
