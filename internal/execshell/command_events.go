package execshell

// CommandEventObserver is notified as shell commands start, finish, or fail to launch.
type CommandEventObserver interface {
	// CommandStarted fires immediately before the command runs.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires after the command ran, regardless of exit status.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the command could not be run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver is installed when no observer is registered.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
