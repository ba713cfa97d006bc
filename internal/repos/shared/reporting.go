package shared

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
)

const (
	commandStartedTemplateConstant = "⚙️  %s\n"
	commandFailedTemplateConstant  = "⚠️  %s exited with code %d\n"
	commandErrorTemplateConstant   = "💥 %s: %v\n"
	commandWordSeparatorConstant   = " "
)

// Reporter emits formatted scan findings to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil || writer == io.Discard {
		writer = os.Stdout
	}
	return writerReporter{writer: writer}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	if reporter.writer == nil {
		return
	}
	fmt.Fprintf(reporter.writer, format, args...)
}

// CommandReportingObserver narrates shell command execution through a Reporter.
// Successful completions stay quiet; only command starts and failures are reported.
type CommandReportingObserver struct {
	reporter Reporter
}

// NewCommandReportingObserver constructs an observer backed by the provided reporter.
func NewCommandReportingObserver(reporter Reporter) *CommandReportingObserver {
	return &CommandReportingObserver{reporter: reporter}
}

// CommandStarted announces the command about to run.
func (observer *CommandReportingObserver) CommandStarted(command execshell.ShellCommand) {
	observer.reporter.Printf(commandStartedTemplateConstant, describeShellCommand(command))
}

// CommandCompleted reports commands that exited with a nonzero status.
func (observer *CommandReportingObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		return
	}
	observer.reporter.Printf(commandFailedTemplateConstant, describeShellCommand(command), result.ExitCode)
}

// CommandExecutionFailed reports commands that never produced an execution result.
func (observer *CommandReportingObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	observer.reporter.Printf(commandErrorTemplateConstant, describeShellCommand(command), failure)
}

func describeShellCommand(command execshell.ShellCommand) string {
	commandWords := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.TrimSpace(strings.Join(commandWords, commandWordSeparatorConstant))
}
