package execshell

// CommandEventObserver receives lifecycle notifications for each git or gh
// invocation the executor dispatches. Tests install recording observers to
// assert on the exact gh invocations a command produced.
type CommandEventObserver interface {
	// CommandStarted fires before the git or gh process is spawned.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the process exits and supplies the captured result.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed reports failures that prevented the process from producing a result.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver discards all command events. It is the default so
// the zap lifecycle events remain the only mandatory observability channel.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
