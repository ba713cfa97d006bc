// Package dependencies resolves optional collaborator overrides to their defaults.
package dependencies

import (
	"go.uber.org/zap"

	"github.com/matthewdeanmartin/repokeeper/internal/execshell"
	"github.com/matthewdeanmartin/repokeeper/internal/githubcli"
	"github.com/matthewdeanmartin/repokeeper/internal/gitrepo"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/discovery"
	"github.com/matthewdeanmartin/repokeeper/internal/repos/shared"
)

// ResolveRepositoryDiscoverer returns the provided discoverer or a filesystem-backed default.
func ResolveRepositoryDiscoverer(existing shared.RepositoryDiscoverer, logger *zap.Logger) shared.RepositoryDiscoverer {
	if existing != nil {
		return existing
	}
	return discovery.NewFilesystemRepositoryDiscoverer(logger)
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
func ResolveGitExecutor(existing shared.GitExecutor, logger *zap.Logger, observer execshell.CommandEventObserver) (shared.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, creationError
	}
	if observer != nil {
		shellExecutor.SetCommandEventObserver(observer)
	}
	return shellExecutor, nil
}

// ResolveGitRepositoryManager returns the provided repository manager or constructs one from the executor.
func ResolveGitRepositoryManager(existing shared.GitRepositoryManager, executor shared.GitExecutor) (shared.GitRepositoryManager, error) {
	if existing != nil {
		return existing, nil
	}
	return gitrepo.NewRepositoryManager(executor)
}

// ResolveHostedRepositoryClient returns the provided client or creates a GitHub CLI-backed implementation.
func ResolveHostedRepositoryClient(existing shared.HostedRepositoryClient, executor shared.GitExecutor) (shared.HostedRepositoryClient, error) {
	if existing != nil {
		return existing, nil
	}
	return githubcli.NewClient(executor)
}
